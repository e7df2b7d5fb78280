package httpapi

import (
	"net/http"
	"strings"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const (
	schoolsPath                  = "/registration/api/v1/schools"
	delegatesPath                = "/registration/api/v1/delegates"
	facilitatorsPath             = "/registration/api/v1/facilitators"
	facilitatorRegistrationsPath = "/fact-admin/api/v1/facilitator-registrations"
)

// SchoolsHandler /registration/api/v1/schools
type SchoolsHandler struct {
	svc    *service.SchoolService
	logger *zap.Logger
}

func NewSchoolsHandler(svc *service.SchoolService, logger *zap.Logger) *SchoolsHandler {
	return &SchoolsHandler{svc: svc, logger: logger}
}

func (h *SchoolsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items, err := h.svc.ListSchools(r.Context())
	if err != nil {
		writeError(w, h.logger, "ListSchools", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// DelegatesHandler /registration/api/v1/delegates, /delegates/me and /delegates/me/workshops
type DelegatesHandler struct {
	svc    *service.DelegateService
	logger *zap.Logger
}

func NewDelegatesHandler(svc *service.DelegateService, logger *zap.Logger) *DelegatesHandler {
	return &DelegatesHandler{svc: svc, logger: logger}
}

func (h *DelegatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, delegatesPath), "/") {
	case "":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Create(w, r)
	case "/me":
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodPut:
			h.Update(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			methodNotAllowed(w)
		}
	case "/me/workshops":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.RegisterWorkshops(w, r)
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

func (h *DelegatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.DelegateRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.CreateDelegate(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "CreateDelegate", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(item))
}

func (h *DelegatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetMyDelegate(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "GetMyDelegate", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *DelegatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.DelegateRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.UpdateMyDelegate(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "UpdateMyDelegate", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *DelegatesHandler) RegisterWorkshops(w http.ResponseWriter, r *http.Request) {
	var req service.WorkshopSelection
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.RegisterWorkshops(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "RegisterWorkshops", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *DelegatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.DeleteMyDelegate(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "DeleteMyDelegate", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// FacilitatorsHandler /registration/api/v1/facilitators and /facilitators/me
type FacilitatorsHandler struct {
	svc    *service.FacilitatorService
	logger *zap.Logger
}

func NewFacilitatorsHandler(svc *service.FacilitatorService, logger *zap.Logger) *FacilitatorsHandler {
	return &FacilitatorsHandler{svc: svc, logger: logger}
}

func (h *FacilitatorsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, facilitatorsPath), "/") {
	case "":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Create(w, r)
	case "/me":
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodPut:
			h.Update(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			methodNotAllowed(w)
		}
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

func (h *FacilitatorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.FacilitatorRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.CreateFacilitator(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "CreateFacilitator", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(item))
}

func (h *FacilitatorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.GetMyFacilitator(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "GetMyFacilitator", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *FacilitatorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.FacilitatorRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	item, err := h.svc.UpdateMyFacilitator(r.Context(), callerFromReq(r), req)
	if err != nil {
		writeError(w, h.logger, "UpdateMyFacilitator", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *FacilitatorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.DeleteMyFacilitator(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "DeleteMyFacilitator", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

// FacilitatorRegistrationsHandler /fact-admin/api/v1/facilitator-registrations
type FacilitatorRegistrationsHandler struct {
	svc    *service.FacilitatorService
	logger *zap.Logger
}

func NewFacilitatorRegistrationsHandler(svc *service.FacilitatorService, logger *zap.Logger) *FacilitatorRegistrationsHandler {
	return &FacilitatorRegistrationsHandler{svc: svc, logger: logger}
}

func (h *FacilitatorRegistrationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := h.svc.ListFacilitatorRegistrations(r.Context(), callerFromReq(r))
		if err != nil {
			writeError(w, h.logger, "ListFacilitatorRegistrations", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(items))
	case http.MethodPost:
		var req service.FacilitatorRegistrationRequest
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
			return
		}
		item, err := h.svc.CreateFacilitatorRegistration(r.Context(), callerFromReq(r), req)
		if err != nil {
			writeError(w, h.logger, "CreateFacilitatorRegistration", err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(item))
	default:
		methodNotAllowed(w)
	}
}
