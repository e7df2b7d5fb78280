package httpapi

import (
	"net/http"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const verificationsPath = "/registration/api/v1/verifications/"

// VerificationHandler /registration/api/v1/verifications/{request,verify}
type VerificationHandler struct {
	svc    *service.VerificationService
	logger *zap.Logger
}

func NewVerificationHandler(svc *service.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{svc: svc, logger: logger}
}

func (h *VerificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := idFromPath(r.URL.Path, verificationsPath)
	if action != "request" && action != "verify" {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if action == "request" {
		var req service.RequestVerificationRequest
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
			return
		}
		if err := h.svc.RequestVerification(r.Context(), req); err != nil {
			writeError(w, h.logger, "RequestVerification", err)
			return
		}
		writeJSON(w, http.StatusAccepted, Ok(map[string]string{"status": "sent"}))
		return
	}

	var req service.VerifyRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
		return
	}
	if err := h.svc.Verify(r.Context(), req); err != nil {
		writeError(w, h.logger, "Verify", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]bool{"verified": true}))
}
