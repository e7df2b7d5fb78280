package httpapi

import (
	"net/http"
	"strings"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const (
	flagsPath         = "/fact-admin/api/v1/flags"
	notificationsPath = "/fact-admin/api/v1/notifications"
)

// FlagsHandler /fact-admin/api/v1/flags
type FlagsHandler struct {
	svc    *service.FlagService
	logger *zap.Logger
}

func NewFlagsHandler(svc *service.FlagService, logger *zap.Logger) *FlagsHandler {
	return &FlagsHandler{svc: svc, logger: logger}
}

func (h *FlagsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == flagsPath || r.URL.Path == flagsPath+"/" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		flags, err := h.svc.ListFlags(r.Context())
		if err != nil {
			writeError(w, h.logger, "ListFlags", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(flags))
		return
	}

	label := idFromPath(r.URL.Path, flagsPath+"/")
	if label == "" {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		flag, err := h.svc.GetFlag(r.Context(), label)
		if err != nil {
			writeError(w, h.logger, "GetFlag", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(flag))
	case http.MethodPut:
		var payload struct {
			Value *bool `json:"value"`
		}
		if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
			return
		}
		flag, err := h.svc.SetFlag(r.Context(), callerFromReq(r), label, payload.Value)
		if err != nil {
			writeError(w, h.logger, "SetFlag", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(flag))
	default:
		methodNotAllowed(w)
	}
}

// NotificationsHandler /fact-admin/api/v1/notifications
type NotificationsHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewNotificationsHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{svc: svc, logger: logger}
}

func (h *NotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSuffix(r.URL.Path, "/") != notificationsPath {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		items, err := h.svc.ListNotifications(r.Context())
		if err != nil {
			writeError(w, h.logger, "ListNotifications", err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(items))
	case http.MethodPost:
		var req service.CreateNotificationRequest
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid JSON"))
			return
		}
		n, err := h.svc.CreateNotification(r.Context(), callerFromReq(r), req)
		if err != nil {
			writeError(w, h.logger, "CreateNotification", err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(n))
	default:
		methodNotAllowed(w)
	}
}
