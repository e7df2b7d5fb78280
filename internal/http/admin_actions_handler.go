package httpapi

import (
	"net/http"

	"fact-registration/internal/service"

	"go.uber.org/zap"
)

const actionsPath = "/fact-admin/api/v1/actions/"

// AdminActionsHandler /fact-admin/api/v1/actions/*. sheets and summary are
// nil without a database, reports without Redis.
type AdminActionsHandler struct {
	assign  *service.LocationAssignmentService
	sheets  *service.RegistrationUpdateService
	summary *service.SummaryService
	reports *service.ReportService
	logger  *zap.Logger
}

func NewAdminActionsHandler(
	assign *service.LocationAssignmentService,
	sheets *service.RegistrationUpdateService,
	summary *service.SummaryService,
	reports *service.ReportService,
	logger *zap.Logger,
) *AdminActionsHandler {
	return &AdminActionsHandler{assign: assign, sheets: sheets, summary: summary, reports: reports, logger: logger}
}

func (h *AdminActionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := idFromPath(r.URL.Path, actionsPath)
	if !h.available(action) {
		writeJSON(w, http.StatusServiceUnavailable, Fail(action+" is not configured"))
		return
	}
	switch {
	case action == "match-locations" && r.Method == http.MethodPost:
		h.MatchLocations(w, r)
	case action == "send-update" && r.Method == http.MethodPost:
		h.SendUpdate(w, r)
	case action == "location-sheet" && r.Method == http.MethodGet:
		h.LocationSheet(w, r)
	case action == "delegate-sheet" && r.Method == http.MethodGet:
		h.DelegateSheet(w, r)
	case action == "summary" && r.Method == http.MethodGet:
		h.Summary(w, r)
	case action == "reports" && r.Method == http.MethodGet:
		h.Reports(w, r)
	case action == "match-locations", action == "send-update", action == "location-sheet",
		action == "delegate-sheet", action == "summary", action == "reports":
		methodNotAllowed(w)
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

func (h *AdminActionsHandler) available(action string) bool {
	switch action {
	case "send-update", "location-sheet", "delegate-sheet":
		return h.sheets != nil
	case "summary":
		return h.summary != nil
	case "reports":
		return h.reports != nil
	}
	return true
}

// MatchLocations runs the room assignment and returns the run report.
func (h *AdminActionsHandler) MatchLocations(w http.ResponseWriter, r *http.Request) {
	report, err := h.assign.Run(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "MatchLocations", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(report))
}

func (h *AdminActionsHandler) SendUpdate(w http.ResponseWriter, r *http.Request) {
	if err := h.sheets.SendUpdate(r.Context(), callerFromReq(r)); err != nil {
		writeError(w, h.logger, "SendUpdate", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "sent"}))
}

func (h *AdminActionsHandler) LocationSheet(w http.ResponseWriter, r *http.Request) {
	data, err := h.sheets.LocationSheet(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "LocationSheet", err)
		return
	}
	writeWorkbook(w, "location_sheet.xlsx", data)
}

func (h *AdminActionsHandler) DelegateSheet(w http.ResponseWriter, r *http.Request) {
	data, err := h.sheets.DelegateSheet(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "DelegateSheet", err)
		return
	}
	writeWorkbook(w, service.DelegateWorkbookName, data)
}

func (h *AdminActionsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.summary.Summary(r.Context(), callerFromReq(r))
	if err != nil {
		writeError(w, h.logger, "Summary", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(s))
}

func (h *AdminActionsHandler) Reports(w http.ResponseWriter, r *http.Request) {
	count := int64(parseInt(r.URL.Query().Get("count"), 20))
	items, err := h.reports.RecentReports(r.Context(), callerFromReq(r), count)
	if err != nil {
		writeError(w, h.logger, "Reports", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}
