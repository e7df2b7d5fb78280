package repository

import (
	"context"

	"fact-registration/internal/domain"
)

// WorkshopsRepository data access for workshops, their registration counts and room assignments
type WorkshopsRepository interface {
	// ListWorkshops ordered by session, title
	ListWorkshops(ctx context.Context, filter WorkshopsFilter) ([]*domain.Workshop, error)
	GetWorkshop(ctx context.Context, workshopID string) (*domain.Workshop, error)
	GetWorkshopByTitle(ctx context.Context, title string, session int) (*domain.Workshop, error)
	CreateWorkshop(ctx context.Context, w *domain.Workshop) (string, error)
	UpdateWorkshop(ctx context.Context, w *domain.Workshop) error
	DeleteWorkshop(ctx context.Context, workshopID string) error

	// ListWorkshopDemand returns every workshop with its registration count
	// (delegate + facilitator registrations) and first linked facilitator.
	ListWorkshopDemand(ctx context.Context) ([]*domain.WorkshopDemand, error)
	GetWorkshopDemand(ctx context.Context, workshopID string) (*domain.WorkshopDemand, error)

	// ReplaceLocations clears location_id on every workshop and then applies assignments,
	// all in one transaction.
	ReplaceLocations(ctx context.Context, assignments []LocationAssignment) error
}

// WorkshopsFilter zero values mean "no filter"
type WorkshopsFilter struct {
	Session int
}

// LocationAssignment workshop -> location
type LocationAssignment struct {
	WorkshopID string
	LocationID string
}
