package httpapi

import (
	"net/http"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const workshopsPath = "/registration/api/v1/workshops"

// WorkshopsHandler /registration/api/v1/workshops
type WorkshopsHandler struct {
	svc    *service.WorkshopService
	logger *zap.Logger
}

func NewWorkshopsHandler(svc *service.WorkshopService, logger *zap.Logger) *WorkshopsHandler {
	return &WorkshopsHandler{svc: svc, logger: logger}
}

func (h *WorkshopsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == workshopsPath || r.URL.Path == workshopsPath+"/" {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	id := idFromPath(r.URL.Path, workshopsPath+"/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.Get(w, r, id)
	case http.MethodPut:
		h.Update(w, r, id)
	case http.MethodDelete:
		h.Delete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *WorkshopsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListWorkshops(r.Context(), parseInt(r.URL.Query().Get("session"), 0))
	if err != nil {
		writeError(w, h.logger, "ListWorkshops", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

func (h *WorkshopsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.svc.GetWorkshop(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "GetWorkshop", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *WorkshopsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.WorkshopRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.CreateWorkshop(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "CreateWorkshop", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(item))
}

func (h *WorkshopsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req service.WorkshopRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	req.WorkshopID = id
	item, err := h.svc.UpdateWorkshop(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "UpdateWorkshop", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *WorkshopsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteWorkshop(r.Context(), callerFromReq(r), id); err != nil {
		writeError(w, h.logger, "DeleteWorkshop", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"workshop_id": id}))
}
