package repository

import (
	"context"
	"time"

	"fact-registration/internal/domain"
)

// NotificationsRepository admin banner messages
type NotificationsRepository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) (string, error)
	// ListActive returns notifications whose expiration is after now, soonest first.
	ListActive(ctx context.Context, now time.Time) ([]*domain.Notification, error)
}
