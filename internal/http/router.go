package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps http.ServeMux; every route is a prefix handled by one handler.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handlers groups everything the router serves. Nil handlers are not registered.
type Handlers struct {
	Locations     *LocationsHandler
	Workshops     *WorkshopsHandler
	Actions       *AdminActionsHandler
	Flags         *FlagsHandler
	Notifications *NotificationsHandler
	Agenda        *AgendaHandler
	Verifications *VerificationHandler

	Schools                  *SchoolsHandler
	Delegates                *DelegatesHandler
	Facilitators             *FacilitatorsHandler
	FacilitatorRegistrations *FacilitatorRegistrationsHandler
}

// RegisterRoutes mounts the registration and admin APIs.
func (r *Router) RegisterRoutes(h Handlers) {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})

	if h.Locations != nil {
		r.HandleHandler(locationsPath, h.Locations)
		r.HandleHandler(locationsPath+"/", h.Locations)
	}
	if h.Workshops != nil {
		r.HandleHandler(workshopsPath, h.Workshops)
		r.HandleHandler(workshopsPath+"/", h.Workshops)
	}
	if h.Actions != nil {
		r.HandleHandler(actionsPath, h.Actions)
	}
	if h.Flags != nil {
		r.HandleHandler(flagsPath, h.Flags)
		r.HandleHandler(flagsPath+"/", h.Flags)
	}
	if h.Notifications != nil {
		r.HandleHandler(notificationsPath, h.Notifications)
	}
	if h.Agenda != nil {
		r.HandleHandler(agendaPath, h.Agenda)
		r.HandleHandler(agendaPath+"/", h.Agenda)
	}
	if h.Verifications != nil {
		r.HandleHandler(verificationsPath, h.Verifications)
	}
	if h.Schools != nil {
		r.HandleHandler(schoolsPath, h.Schools)
	}
	if h.Delegates != nil {
		r.HandleHandler(delegatesPath, h.Delegates)
		r.HandleHandler(delegatesPath+"/", h.Delegates)
	}
	if h.Facilitators != nil {
		r.HandleHandler(facilitatorsPath, h.Facilitators)
		r.HandleHandler(facilitatorsPath+"/", h.Facilitators)
	}
	if h.FacilitatorRegistrations != nil {
		r.HandleHandler(facilitatorRegistrationsPath, h.FacilitatorRegistrations)
	}
}
