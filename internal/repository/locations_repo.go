package repository

import (
	"context"

	"fact-registration/internal/domain"
)

// LocationsRepository data access for locations (rooms)
type LocationsRepository interface {
	// ListLocations ordered by session, building, room_num
	ListLocations(ctx context.Context, filter LocationsFilter) ([]*domain.Location, error)
	GetLocation(ctx context.Context, locationID string) (*domain.Location, error)
	// FindLocation looks up the natural key (building, room_num, session)
	FindLocation(ctx context.Context, building, roomNum string, session int) (*domain.Location, error)
	CreateLocation(ctx context.Context, loc *domain.Location) (string, error)
	UpdateLocation(ctx context.Context, loc *domain.Location) error
	DeleteLocation(ctx context.Context, locationID string) error
}

// LocationsFilter zero values mean "no filter"
type LocationsFilter struct {
	Session int
}
