package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fact-registration/internal/domain"
)

// PostgresFlagsRepository FlagsRepository on PostgreSQL
type PostgresFlagsRepository struct {
	db *sql.DB
}

func NewPostgresFlagsRepository(db *sql.DB) *PostgresFlagsRepository {
	return &PostgresFlagsRepository{db: db}
}

var _ FlagsRepository = (*PostgresFlagsRepository)(nil)

func (r *PostgresFlagsRepository) ListFlags(ctx context.Context) ([]*domain.RegistrationFlag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label, value FROM registration_flags ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer rows.Close()

	out := []*domain.RegistrationFlag{}
	for rows.Next() {
		var f domain.RegistrationFlag
		if err := rows.Scan(&f.Label, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flags: %w", err)
	}
	return out, nil
}

func (r *PostgresFlagsRepository) GetFlag(ctx context.Context, label string) (*domain.RegistrationFlag, error) {
	var f domain.RegistrationFlag
	err := r.db.QueryRowContext(ctx, `SELECT label, value FROM registration_flags WHERE label = $1`, label).
		Scan(&f.Label, &f.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("flag %s: %w", label, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get flag: %w", err)
	}
	return &f, nil
}

func (r *PostgresFlagsRepository) SetFlag(ctx context.Context, label string, value bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE registration_flags SET value = $2 WHERE label = $1`, label, value)
	if err != nil {
		return fmt.Errorf("failed to set flag: %w", err)
	}
	return expectOneRow(res, "flag", label)
}
