package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// LocationService rooms that workshops can be placed in
type LocationService struct {
	repo   repository.LocationsRepository
	logger *zap.Logger
}

func NewLocationService(repo repository.LocationsRepository, logger *zap.Logger) *LocationService {
	return &LocationService{repo: repo, logger: logger}
}

// LocationItem API shape of a location
type LocationItem struct {
	LocationID    string `json:"location_id"`
	Building      string `json:"building"`
	RoomNum       string `json:"room_num"`
	Capacity      int    `json:"capacity"`
	Session       int    `json:"session"`
	MoveableSeats bool   `json:"moveable_seats"`
}

func toLocationItem(l *domain.Location) *LocationItem {
	if l == nil {
		return nil
	}
	return &LocationItem{
		LocationID:    l.LocationID,
		Building:      l.Building,
		RoomNum:       l.RoomNum,
		Capacity:      l.Capacity,
		Session:       l.Session,
		MoveableSeats: l.MoveableSeats,
	}
}

// CreateLocationRequest create body
type CreateLocationRequest struct {
	Building      string `json:"building"`
	RoomNum       string `json:"room_num"`
	Capacity      int    `json:"capacity"`
	Session       int    `json:"session"`
	MoveableSeats bool   `json:"moveable_seats"`
}

// UpdateLocationRequest partial update; nil fields keep their value
type UpdateLocationRequest struct {
	LocationID    string  `json:"-"`
	Building      *string `json:"building"`
	RoomNum       *string `json:"room_num"`
	Capacity      *int    `json:"capacity"`
	Session       *int    `json:"session"`
	MoveableSeats *bool   `json:"moveable_seats"`
}

func validateLocation(l *domain.Location) error {
	if l.Building == "" && l.RoomNum == "" {
		return invalid("building or room_num is required")
	}
	if l.Capacity <= 0 {
		return invalid("capacity must be positive")
	}
	if !domain.ValidSession(l.Session) {
		return invalid("session must be 1, 2, or 3")
	}
	return nil
}

// ListLocations all locations, or one session's when session != 0.
func (s *LocationService) ListLocations(ctx context.Context, session int) ([]*LocationItem, error) {
	if session != 0 && !domain.ValidSession(session) {
		return nil, invalid("session must be 1, 2, or 3")
	}
	locs, err := s.repo.ListLocations(ctx, repository.LocationsFilter{Session: session})
	if err != nil {
		return nil, err
	}
	out := make([]*LocationItem, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocationItem(l))
	}
	return out, nil
}

func (s *LocationService) GetLocation(ctx context.Context, locationID string) (*LocationItem, error) {
	l, err := s.repo.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return toLocationItem(l), nil
}

func (s *LocationService) CreateLocation(ctx context.Context, caller domain.Caller, req CreateLocationRequest) (*LocationItem, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	l := &domain.Location{
		Building:      strings.TrimSpace(req.Building),
		RoomNum:       strings.TrimSpace(req.RoomNum),
		Capacity:      req.Capacity,
		Session:       req.Session,
		MoveableSeats: req.MoveableSeats,
	}
	if err := validateLocation(l); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindLocation(ctx, l.Building, l.RoomNum, l.Session); err == nil {
		return nil, fmt.Errorf("location %s in session %d: %w", l.DisplayName(), l.Session, ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	id, err := s.repo.CreateLocation(ctx, l)
	if err != nil {
		return nil, err
	}
	l.LocationID = id
	s.logger.Info("location created",
		zap.String("location_id", id),
		zap.String("location", l.DisplayName()),
		zap.Int("session", l.Session),
	)
	return toLocationItem(l), nil
}

func (s *LocationService) UpdateLocation(ctx context.Context, caller domain.Caller, req UpdateLocationRequest) (*LocationItem, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	l, err := s.repo.GetLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	if req.Building != nil {
		l.Building = strings.TrimSpace(*req.Building)
	}
	if req.RoomNum != nil {
		l.RoomNum = strings.TrimSpace(*req.RoomNum)
	}
	if req.Capacity != nil {
		l.Capacity = *req.Capacity
	}
	if req.Session != nil {
		l.Session = *req.Session
	}
	if req.MoveableSeats != nil {
		l.MoveableSeats = *req.MoveableSeats
	}
	if err := validateLocation(l); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLocation(ctx, l); err != nil {
		return nil, err
	}
	return toLocationItem(l), nil
}

func (s *LocationService) DeleteLocation(ctx context.Context, caller domain.Caller, locationID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.repo.DeleteLocation(ctx, locationID); err != nil {
		return err
	}
	s.logger.Info("location deleted", zap.String("location_id", locationID))
	return nil
}
