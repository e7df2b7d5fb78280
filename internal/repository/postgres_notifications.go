package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fact-registration/internal/domain"
)

// PostgresNotificationsRepository NotificationsRepository on PostgreSQL
type PostgresNotificationsRepository struct {
	db *sql.DB
}

func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

func (r *PostgresNotificationsRepository) CreateNotification(ctx context.Context, n *domain.Notification) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (message, expiration)
		VALUES ($1, $2)
		RETURNING notification_id::text
	`, n.Message, n.Expiration).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

func (r *PostgresNotificationsRepository) ListActive(ctx context.Context, now time.Time) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT notification_id::text, message, expiration
		FROM notifications
		WHERE expiration > $1
		ORDER BY expiration, notification_id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []*domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.NotificationID, &n.Message, &n.Expiration); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return out, nil
}
