package httpapi

import (
	"errors"
	"io"
	"net/http"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const (
	agendaPath = "/fact-admin/api/v1/agenda"
	// uploaded workbooks are small; anything larger is not an agenda
	maxUploadBytes = 10 << 20
)

// AgendaHandler /fact-admin/api/v1/agenda
type AgendaHandler struct {
	svc    *service.AgendaService
	logger *zap.Logger
}

func NewAgendaHandler(svc *service.AgendaService, logger *zap.Logger) *AgendaHandler {
	return &AgendaHandler{svc: svc, logger: logger}
}

func (h *AgendaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == agendaPath || r.URL.Path == agendaPath+"/" {
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

	id := idFromPath(r.URL.Path, agendaPath+"/")
	switch {
	case id == "":
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	case id == "bulk" && r.Method == http.MethodPost:
		h.BulkUpload(w, r)
	case id == "bulk":
		methodNotAllowed(w)
	case r.Method == http.MethodDelete:
		h.Delete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *AgendaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAgendaItems(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListAgendaItems", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

func (h *AgendaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAgendaItemRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.CreateAgendaItem(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "CreateAgendaItem", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(item))
}

func (h *AgendaHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteAgendaItem(r.Context(), callerFromReq(r), id); err != nil {
		writeError(w, h.logger, "DeleteAgendaItem", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"agenda_item_id": id}))
}

// BulkUpload reads the multipart field "agenda".
func (h *AgendaHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("agenda")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeJSON(w, http.StatusBadRequest, Fail("agenda file is required"))
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail("invalid agenda file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read agenda file"))
		return
	}
	items, err := h.svc.BulkUpload(r.Context(), callerFromReq(r), data)
	if err != nil {
		writeError(w, h.logger, "BulkUpload", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(items))
}
