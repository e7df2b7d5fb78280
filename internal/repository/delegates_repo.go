package repository

import (
	"context"
	"time"

	"fact-registration/internal/domain"
)

// DelegatesRepository read side of delegate registrations
type DelegatesRepository interface {
	// ListDelegateRoster returns every delegate with their workshop title per session.
	ListDelegateRoster(ctx context.Context) ([]*domain.DelegateRosterRow, error)
	// Summary counts delegates and distinct schools, and lists delegate creation times after since.
	Summary(ctx context.Context, since time.Time) (*domain.EventSummary, error)
}
