package httpapi

import (
	"net/http"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const locationsPath = "/registration/api/v1/locations"

// LocationsHandler /registration/api/v1/locations
type LocationsHandler struct {
	svc    *service.LocationService
	logger *zap.Logger
}

func NewLocationsHandler(svc *service.LocationService, logger *zap.Logger) *LocationsHandler {
	return &LocationsHandler{svc: svc, logger: logger}
}

func (h *LocationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == locationsPath || r.URL.Path == locationsPath+"/" {
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

	id := idFromPath(r.URL.Path, locationsPath+"/")
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

func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListLocations(r.Context(), parseInt(r.URL.Query().Get("session"), 0))
	if err != nil {
		writeError(w, h.logger, "ListLocations", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

func (h *LocationsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "GetLocation", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLocationRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.CreateLocation(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "CreateLocation", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(item))
}

func (h *LocationsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req service.UpdateLocationRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	req.LocationID = id
	item, err := h.svc.UpdateLocation(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "UpdateLocation", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteLocation(r.Context(), callerFromReq(r), id); err != nil {
		writeError(w, h.logger, "DeleteLocation", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"location_id": id}))
}
