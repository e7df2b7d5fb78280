package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fact-registration/internal/assignment"
	"fact-registration/internal/domain"
	"fact-registration/internal/export"
	"fact-registration/internal/notify"
	"fact-registration/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssignmentWorkbookName attachment name of the run report workbook.
const AssignmentWorkbookName = "workshop_locations.xlsx"

// LocationAssignmentService runs the room assignment engine against stored
// workshops and locations and reports the outcome.
type LocationAssignmentService struct {
	workshops  repository.WorkshopsRepository
	locations  repository.LocationsRepository
	notifier   notify.Notifier
	recipients []string
	eventName  string
	logger     *zap.Logger
}

func NewLocationAssignmentService(
	workshops repository.WorkshopsRepository,
	locations repository.LocationsRepository,
	notifier notify.Notifier,
	recipients []string,
	eventName string,
	logger *zap.Logger,
) *LocationAssignmentService {
	return &LocationAssignmentService{
		workshops:  workshops,
		locations:  locations,
		notifier:   notifier,
		recipients: recipients,
		eventName:  eventName,
		logger:     logger,
	}
}

// SessionReport one session's outcome.
type SessionReport struct {
	Session  int    `json:"session"`
	OK       bool   `json:"ok"`
	Assigned int    `json:"assigned"`
	Error    string `json:"error,omitempty"`
}

// AssignedWorkshop one row of the run report.
type AssignedWorkshop struct {
	WorkshopID        string `json:"workshop_id"`
	Title             string `json:"title"`
	Session           int    `json:"session"`
	LocationID        string `json:"location_id"`
	Building          string `json:"building"`
	RoomNum           string `json:"room_num"`
	Capacity          int    `json:"capacity"`
	RegistrationCount int    `json:"registration_count"`
	CarriedOver       bool   `json:"carried_over"`
}

// RunReport result of one assignment run.
type RunReport struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	Sessions    []SessionReport    `json:"sessions"`
	Assignments []AssignedWorkshop `json:"assignments"`
	Notified    bool               `json:"notified"`
	NotifyError string             `json:"notify_error,omitempty"`
	Workbook    []byte             `json:"-"`
}

// Failed reports whether any session could not be placed.
func (r *RunReport) Failed() bool {
	for _, s := range r.Sessions {
		if !s.OK {
			return true
		}
	}
	return false
}

// Run clears every workshop location, writes the sessions that could be
// placed, and sends the report. A notification failure is recorded on the
// report and does not undo the stored assignments.
func (s *LocationAssignmentService) Run(ctx context.Context, caller domain.Caller) (*RunReport, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	report := &RunReport{RunID: uuid.NewString(), StartedAt: time.Now()}
	log := s.logger.With(zap.String("run_id", report.RunID), zap.String("user_id", caller.UserID))

	demand, err := s.workshops.ListWorkshopDemand(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workshops: %w", err)
	}
	locs, err := s.locations.ListLocations(ctx, repository.LocationsFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	in := buildInput(demand, locs)
	res, err := assignment.Assign(in)
	if err != nil {
		log.Error("assignment input rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	writes := make([]repository.LocationAssignment, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		writes = append(writes, repository.LocationAssignment{WorkshopID: a.WorkshopID, LocationID: a.RoomID})
	}
	if err := s.workshops.ReplaceLocations(ctx, writes); err != nil {
		log.Error("failed to store workshop locations", zap.Error(err))
		return nil, fmt.Errorf("failed to store workshop locations: %w", err)
	}

	for _, so := range res.Sessions {
		sr := SessionReport{Session: so.Session, OK: so.OK, Assigned: so.Assigned}
		if so.Err != nil {
			sr.Error = so.Err.Error()
			log.Warn("session could not be placed",
				zap.Int("session", so.Session),
				zap.String("pool", string(so.Err.Pool)),
				zap.String("workshop_id", so.Err.WorkshopID),
				zap.Error(so.Err),
			)
		}
		report.Sessions = append(report.Sessions, sr)
	}
	report.Assignments = assignedRows(demand, locs, res)

	log.Info("workshop locations assigned",
		zap.Int("workshops", len(demand)),
		zap.Int("locations", len(locs)),
		zap.Int("assigned", len(report.Assignments)),
		zap.Int("failed_sessions", len(res.Failed())),
	)

	rows := make([]export.AssignmentRow, 0, len(report.Assignments))
	for _, a := range report.Assignments {
		rows = append(rows, export.AssignmentRow{
			Title:             a.Title,
			Session:           a.Session,
			Building:          a.Building,
			RoomNum:           a.RoomNum,
			Capacity:          a.Capacity,
			RegistrationCount: a.RegistrationCount,
			CarriedOver:       a.CarriedOver,
		})
	}
	wb, err := export.LocationAssignmentSheet(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build location workbook: %w", err)
	}
	report.Workbook = wb

	s.send(ctx, log, report)
	return report, nil
}

func (s *LocationAssignmentService) send(ctx context.Context, log *zap.Logger, report *RunReport) {
	if s.notifier == nil {
		return
	}
	msg := &notify.Message{
		Subject: s.eventName + " Automated Workshop Location Update",
		Body:    reportBody(report),
		To:      s.recipients,
		Attachments: []notify.Attachment{{
			Name:        AssignmentWorkbookName,
			ContentType: export.ContentType,
			Data:        report.Workbook,
		}},
		Kind:    "location_assignment",
		Payload: report,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		log.Error("failed to send location report", zap.Error(err))
		report.NotifyError = err.Error()
		return
	}
	report.Notified = true
}

func reportBody(report *RunReport) string {
	var b strings.Builder
	b.WriteString("Workshop location data attached.\n")
	for _, s := range report.Sessions {
		if s.OK {
			fmt.Fprintf(&b, "Session %d: %d workshops placed.\n", s.Session, s.Assigned)
			continue
		}
		fmt.Fprintf(&b, "Session %d: no location update occurred (%s).\n", s.Session, s.Error)
	}
	return b.String()
}

func buildInput(demand []*domain.WorkshopDemand, locs []*domain.Location) assignment.Input {
	in := assignment.Input{
		Workshops: make([]assignment.Workshop, 0, len(demand)),
		Rooms:     make([]assignment.Room, 0, len(locs)),
	}
	for _, d := range demand {
		w := assignment.Workshop{
			ID:                d.WorkshopID,
			Session:           d.Session,
			RegistrationCount: d.RegistrationCount,
			MoveableSeats:     d.MoveableSeats,
			FacilitatorID:     d.FacilitatorID,
		}
		if d.PreferredCapacity.Valid {
			pc := int(d.PreferredCapacity.Int64)
			w.PreferredCapacity = &pc
		}
		in.Workshops = append(in.Workshops, w)
	}
	for _, l := range locs {
		in.Rooms = append(in.Rooms, assignment.Room{
			ID:            l.LocationID,
			Capacity:      l.Capacity,
			Session:       l.Session,
			MoveableSeats: l.MoveableSeats,
		})
	}
	return in
}

// assignedRows lists placed workshops in demand order (session, title).
func assignedRows(demand []*domain.WorkshopDemand, locs []*domain.Location, res *assignment.Result) []AssignedWorkshop {
	byID := make(map[string]*domain.Location, len(locs))
	for _, l := range locs {
		byID[l.LocationID] = l
	}
	placed := make(map[string]assignment.Assignment, len(res.Assignments))
	for _, a := range res.Assignments {
		placed[a.WorkshopID] = a
	}

	out := make([]AssignedWorkshop, 0, len(res.Assignments))
	for _, d := range demand {
		a, ok := placed[d.WorkshopID]
		if !ok {
			continue
		}
		row := AssignedWorkshop{
			WorkshopID:        d.WorkshopID,
			Title:             d.Title,
			Session:           d.Session,
			LocationID:        a.RoomID,
			RegistrationCount: d.RegistrationCount,
			CarriedOver:       a.Aliased,
		}
		if l := byID[a.RoomID]; l != nil {
			row.Building = l.Building
			row.RoomNum = l.RoomNum
			row.Capacity = l.Capacity
		}
		out = append(out, row)
	}
	return out
}
