package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fact-registration/internal/domain"
)

// PostgresDelegatesRepository DelegatesRepository on PostgreSQL
type PostgresDelegatesRepository struct {
	db *sql.DB
}

func NewPostgresDelegatesRepository(db *sql.DB) *PostgresDelegatesRepository {
	return &PostgresDelegatesRepository{db: db}
}

var _ DelegatesRepository = (*PostgresDelegatesRepository)(nil)

func (r *PostgresDelegatesRepository) ListDelegateRoster(ctx context.Context) ([]*domain.DelegateRosterRow, error) {
	// school falls back to other_school when the delegate picked "other"
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			d.delegate_id::text,
			COALESCE(u.first_name, ''),
			COALESCE(u.last_name, ''),
			COALESCE(u.email, ''),
			d.pronouns,
			d.year,
			COALESCE(s.name, d.other_school, ''),
			COALESCE(MAX(CASE WHEN w.session = 1 THEN w.title END), ''),
			COALESCE(MAX(CASE WHEN w.session = 2 THEN w.title END), ''),
			COALESCE(MAX(CASE WHEN w.session = 3 THEN w.title END), '')
		FROM delegates d
		LEFT JOIN users u ON u.user_id = d.user_id
		LEFT JOIN schools s ON s.school_id = d.school_id
		LEFT JOIN registrations r ON r.delegate_id = d.delegate_id
		LEFT JOIN workshops w ON w.workshop_id = r.workshop_id
		GROUP BY d.delegate_id, u.first_name, u.last_name, u.email, d.pronouns, d.year, s.name, d.other_school
		ORDER BY u.last_name, u.first_name, d.delegate_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegates: %w", err)
	}
	defer rows.Close()

	out := []*domain.DelegateRosterRow{}
	for rows.Next() {
		var d domain.DelegateRosterRow
		if err := rows.Scan(&d.DelegateID, &d.FirstName, &d.LastName, &d.Email, &d.Pronouns, &d.Year, &d.School,
			&d.Sessions[0], &d.Sessions[1], &d.Sessions[2]); err != nil {
			return nil, fmt.Errorf("failed to scan delegate: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delegates: %w", err)
	}
	return out, nil
}

func (r *PostgresDelegatesRepository) Summary(ctx context.Context, since time.Time) (*domain.EventSummary, error) {
	s := &domain.EventSummary{Registrations: []time.Time{}}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT COALESCE(school_id::text, NULLIF(other_school, '')))
		FROM delegates
	`).Scan(&s.Delegates, &s.Schools)
	if err != nil {
		return nil, fmt.Errorf("failed to count delegates: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT date_created FROM delegates WHERE date_created > $1 ORDER BY date_created
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent registrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan registration time: %w", err)
		}
		s.Registrations = append(s.Registrations, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registration times: %w", err)
	}
	return s, nil
}
