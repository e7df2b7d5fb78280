package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// WorkshopService workshop CRUD; reads carry location and live registration count
type WorkshopService struct {
	workshops repository.WorkshopsRepository
	locations repository.LocationsRepository
	logger    *zap.Logger
}

func NewWorkshopService(workshops repository.WorkshopsRepository, locations repository.LocationsRepository, logger *zap.Logger) *WorkshopService {
	return &WorkshopService{workshops: workshops, locations: locations, logger: logger}
}

// WorkshopItem API shape of a workshop
type WorkshopItem struct {
	WorkshopID        string        `json:"workshop_id"`
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Facilitators      string        `json:"facilitators"`
	Session           int           `json:"session"`
	LocationID        *string       `json:"location_id"`
	Location          *LocationItem `json:"location,omitempty"`
	PreferredCapacity *int          `json:"preferred_capacity"`
	MoveableSeats     bool          `json:"moveable_seats"`
	FacilitatorID     string        `json:"facilitator_id,omitempty"`
	RegistrationCount int           `json:"registration_count"`
}

func toWorkshopItem(d *domain.WorkshopDemand, locs map[string]*domain.Location) *WorkshopItem {
	item := &WorkshopItem{
		WorkshopID:        d.WorkshopID,
		Title:             d.Title,
		Description:       d.Description,
		Facilitators:      d.Facilitators,
		Session:           d.Session,
		MoveableSeats:     d.MoveableSeats,
		FacilitatorID:     d.FacilitatorID,
		RegistrationCount: d.RegistrationCount,
	}
	if d.LocationID.Valid {
		id := d.LocationID.String
		item.LocationID = &id
		item.Location = toLocationItem(locs[id])
	}
	if d.PreferredCapacity.Valid {
		pc := int(d.PreferredCapacity.Int64)
		item.PreferredCapacity = &pc
	}
	return item
}

// WorkshopRequest create body; on update nil fields keep their value
type WorkshopRequest struct {
	WorkshopID        string  `json:"-"`
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	Facilitators      *string `json:"facilitators"`
	Session           *int    `json:"session"`
	LocationID        *string `json:"location_id"`
	PreferredCapacity *int    `json:"preferred_capacity"`
	MoveableSeats     *bool   `json:"moveable_seats"`
}

func (req WorkshopRequest) applyTo(w *domain.Workshop) {
	if req.Title != nil {
		w.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.Facilitators != nil {
		w.Facilitators = *req.Facilitators
	}
	if req.Session != nil {
		w.Session = *req.Session
	}
	if req.LocationID != nil {
		w.LocationID = sql.NullString{String: *req.LocationID, Valid: *req.LocationID != ""}
	}
	if req.PreferredCapacity != nil {
		w.PreferredCapacity = sql.NullInt64{Int64: int64(*req.PreferredCapacity), Valid: true}
	}
	if req.MoveableSeats != nil {
		w.MoveableSeats = *req.MoveableSeats
	}
}

func (s *WorkshopService) validate(ctx context.Context, w *domain.Workshop) error {
	if w.Title == "" {
		return invalid("title is required")
	}
	if !domain.ValidSession(w.Session) {
		return invalid("session must be 1, 2, or 3")
	}
	if w.PreferredCapacity.Valid && w.PreferredCapacity.Int64 < 0 {
		return invalid("preferred_capacity can not be negative")
	}
	if w.LocationID.Valid {
		if _, err := s.locations.GetLocation(ctx, w.LocationID.String); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("location %s does not exist", w.LocationID.String)
			}
			return err
		}
	}
	return nil
}

func (s *WorkshopService) locationIndex(ctx context.Context) (map[string]*domain.Location, error) {
	locs, err := s.locations.ListLocations(ctx, repository.LocationsFilter{})
	if err != nil {
		return nil, err
	}
	idx := make(map[string]*domain.Location, len(locs))
	for _, l := range locs {
		idx[l.LocationID] = l
	}
	return idx, nil
}

// ListWorkshops all workshops, or one session's when session != 0.
func (s *WorkshopService) ListWorkshops(ctx context.Context, session int) ([]*WorkshopItem, error) {
	if session != 0 && !domain.ValidSession(session) {
		return nil, invalid("session must be 1, 2, or 3")
	}
	demand, err := s.workshops.ListWorkshopDemand(ctx)
	if err != nil {
		return nil, err
	}
	locs, err := s.locationIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*WorkshopItem, 0, len(demand))
	for _, d := range demand {
		if session != 0 && d.Session != session {
			continue
		}
		out = append(out, toWorkshopItem(d, locs))
	}
	return out, nil
}

func (s *WorkshopService) GetWorkshop(ctx context.Context, workshopID string) (*WorkshopItem, error) {
	d, err := s.workshops.GetWorkshopDemand(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	locs := map[string]*domain.Location{}
	if d.LocationID.Valid {
		l, err := s.locations.GetLocation(ctx, d.LocationID.String)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		locs[d.LocationID.String] = l
	}
	return toWorkshopItem(d, locs), nil
}

func (s *WorkshopService) CreateWorkshop(ctx context.Context, caller domain.Caller, req WorkshopRequest) (*WorkshopItem, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	w := &domain.Workshop{}
	req.applyTo(w)
	if err := s.validate(ctx, w); err != nil {
		return nil, err
	}
	if _, err := s.workshops.GetWorkshopByTitle(ctx, w.Title, w.Session); err == nil {
		return nil, fmt.Errorf("workshop %q in session %d: %w", w.Title, w.Session, ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	id, err := s.workshops.CreateWorkshop(ctx, w)
	if err != nil {
		return nil, err
	}
	s.logger.Info("workshop created",
		zap.String("workshop_id", id),
		zap.String("title", w.Title),
		zap.Int("session", w.Session),
	)
	return s.GetWorkshop(ctx, id)
}

func (s *WorkshopService) UpdateWorkshop(ctx context.Context, caller domain.Caller, req WorkshopRequest) (*WorkshopItem, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	w, err := s.workshops.GetWorkshop(ctx, req.WorkshopID)
	if err != nil {
		return nil, err
	}
	req.applyTo(w)
	if err := s.validate(ctx, w); err != nil {
		return nil, err
	}
	if err := s.workshops.UpdateWorkshop(ctx, w); err != nil {
		return nil, err
	}
	return s.GetWorkshop(ctx, w.WorkshopID)
}

func (s *WorkshopService) DeleteWorkshop(ctx context.Context, caller domain.Caller, workshopID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.workshops.DeleteWorkshop(ctx, workshopID); err != nil {
		return err
	}
	s.logger.Info("workshop deleted", zap.String("workshop_id", workshopID))
	return nil
}
