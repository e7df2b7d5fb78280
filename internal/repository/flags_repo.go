package repository

import (
	"context"

	"fact-registration/internal/domain"
)

// FlagsRepository registration on/off switches keyed by label
type FlagsRepository interface {
	ListFlags(ctx context.Context) ([]*domain.RegistrationFlag, error)
	GetFlag(ctx context.Context, label string) (*domain.RegistrationFlag, error)
	// SetFlag updates an existing flag; unknown labels return ErrNotFound.
	SetFlag(ctx context.Context, label string, value bool) error
}
