package repository

import (
	"context"

	"fact-registration/internal/domain"
)

// RegistrationRepository write side of sign-up: users, delegates, facilitators and
// the registrations that feed workshop demand.
type RegistrationRepository interface {
	// ListSchools ordered by name
	ListSchools(ctx context.Context) ([]*domain.School, error)
	GetSchool(ctx context.Context, schoolID string) (*domain.School, error)

	// CreateDelegate upserts the user row and inserts the delegate. Returns the delegate id.
	CreateDelegate(ctx context.Context, p *domain.DelegateProfile) (string, error)
	GetDelegateByUser(ctx context.Context, userID string) (*domain.DelegateProfile, error)
	// UpdateDelegate writes the user and delegate columns. Registrations are untouched.
	UpdateDelegate(ctx context.Context, p *domain.DelegateProfile) error
	// ReplaceRegistrations swaps the delegate's workshop registrations in one transaction.
	ReplaceRegistrations(ctx context.Context, delegateID string, workshopIDs []string) error

	// CreateFacilitator upserts the user row, inserts the facilitator and links its workshops.
	CreateFacilitator(ctx context.Context, p *domain.FacilitatorProfile) (string, error)
	GetFacilitatorByUser(ctx context.Context, userID string) (*domain.FacilitatorProfile, error)
	// UpdateFacilitator writes the user and facilitator columns; a non-nil WorkshopIDs replaces the links.
	UpdateFacilitator(ctx context.Context, p *domain.FacilitatorProfile) error

	// DeleteUser removes the user. Delegate and facilitator rows, registrations and links cascade.
	DeleteUser(ctx context.Context, userID string) error

	ListFacilitatorRegistrations(ctx context.Context) ([]*domain.FacilitatorRegistration, error)
	CreateFacilitatorRegistration(ctx context.Context, reg *domain.FacilitatorRegistration) (string, error)
}
