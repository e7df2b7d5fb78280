package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fact-registration/internal/domain"
)

// PostgresWorkshopsRepository WorkshopsRepository on PostgreSQL
type PostgresWorkshopsRepository struct {
	db *sql.DB
}

func NewPostgresWorkshopsRepository(db *sql.DB) *PostgresWorkshopsRepository {
	return &PostgresWorkshopsRepository{db: db}
}

var _ WorkshopsRepository = (*PostgresWorkshopsRepository)(nil)

const workshopColumns = `
	w.workshop_id::text,
	w.title,
	w.description,
	w.facilitators,
	w.session,
	w.location_id::text,
	w.preferred_capacity,
	w.moveable_seats`

// demandColumns adds the first linked facilitator and the registration count
const demandColumns = workshopColumns + `,
	COALESCE((SELECT MIN(fw.facilitator_id::text) FROM facilitator_workshops fw WHERE fw.workshop_id = w.workshop_id), ''),
	(SELECT COUNT(*) FROM registrations r WHERE r.workshop_id = w.workshop_id)
	  + (SELECT COUNT(*) FROM facilitator_registrations fr WHERE fr.workshop_id = w.workshop_id)`

type scanner interface{ Scan(...any) error }

func scanWorkshop(row scanner) (*domain.Workshop, error) {
	var w domain.Workshop
	err := row.Scan(
		&w.WorkshopID,
		&w.Title,
		&w.Description,
		&w.Facilitators,
		&w.Session,
		&w.LocationID,
		&w.PreferredCapacity,
		&w.MoveableSeats,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanDemand(row scanner) (*domain.WorkshopDemand, error) {
	var d domain.WorkshopDemand
	err := row.Scan(
		&d.WorkshopID,
		&d.Title,
		&d.Description,
		&d.Facilitators,
		&d.Session,
		&d.LocationID,
		&d.PreferredCapacity,
		&d.MoveableSeats,
		&d.FacilitatorID,
		&d.RegistrationCount,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresWorkshopsRepository) ListWorkshops(ctx context.Context, filter WorkshopsFilter) ([]*domain.Workshop, error) {
	query := `SELECT` + workshopColumns + ` FROM workshops w`
	var args []any
	if filter.Session != 0 {
		query += ` WHERE w.session = $1`
		args = append(args, filter.Session)
	}
	query += ` ORDER BY w.session, w.title`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workshops: %w", err)
	}
	defer rows.Close()

	out := []*domain.Workshop{}
	for rows.Next() {
		w, err := scanWorkshop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workshop: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workshops: %w", err)
	}
	return out, nil
}

func (r *PostgresWorkshopsRepository) GetWorkshop(ctx context.Context, workshopID string) (*domain.Workshop, error) {
	if workshopID == "" {
		return nil, ErrNotFound
	}
	w, err := scanWorkshop(r.db.QueryRowContext(ctx,
		`SELECT`+workshopColumns+` FROM workshops w WHERE w.workshop_id::text = $1`, workshopID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workshop %s: %w", workshopID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workshop: %w", err)
	}
	return w, nil
}

func (r *PostgresWorkshopsRepository) GetWorkshopByTitle(ctx context.Context, title string, session int) (*domain.Workshop, error) {
	w, err := scanWorkshop(r.db.QueryRowContext(ctx,
		`SELECT`+workshopColumns+` FROM workshops w WHERE w.title = $1 AND w.session = $2`, title, session))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workshop by title: %w", err)
	}
	return w, nil
}

func (r *PostgresWorkshopsRepository) CreateWorkshop(ctx context.Context, w *domain.Workshop) (string, error) {
	if w == nil {
		return "", fmt.Errorf("workshop is required")
	}
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO workshops (title, description, facilitators, session, location_id, preferred_capacity, moveable_seats)
		VALUES ($1, $2, $3, $4, $5::uuid, $6, $7)
		RETURNING workshop_id::text
	`, w.Title, w.Description, w.Facilitators, w.Session, w.LocationID, w.PreferredCapacity, w.MoveableSeats).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("workshop %q in session %d: %w", w.Title, w.Session, ErrConflict)
		}
		return "", fmt.Errorf("failed to create workshop: %w", err)
	}
	return id, nil
}

func (r *PostgresWorkshopsRepository) UpdateWorkshop(ctx context.Context, w *domain.Workshop) error {
	if w == nil || w.WorkshopID == "" {
		return fmt.Errorf("workshop_id is required")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE workshops
		SET title = $2, description = $3, facilitators = $4, session = $5,
		    location_id = $6::uuid, preferred_capacity = $7, moveable_seats = $8
		WHERE workshop_id::text = $1
	`, w.WorkshopID, w.Title, w.Description, w.Facilitators, w.Session, w.LocationID, w.PreferredCapacity, w.MoveableSeats)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("workshop %q in session %d: %w", w.Title, w.Session, ErrConflict)
		}
		return fmt.Errorf("failed to update workshop: %w", err)
	}
	return expectOneRow(res, "workshop", w.WorkshopID)
}

func (r *PostgresWorkshopsRepository) DeleteWorkshop(ctx context.Context, workshopID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workshops WHERE workshop_id::text = $1`, workshopID)
	if err != nil {
		return fmt.Errorf("failed to delete workshop: %w", err)
	}
	return expectOneRow(res, "workshop", workshopID)
}

func (r *PostgresWorkshopsRepository) ListWorkshopDemand(ctx context.Context) ([]*domain.WorkshopDemand, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+demandColumns+` FROM workshops w ORDER BY w.session, w.title, w.workshop_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workshop demand: %w", err)
	}
	defer rows.Close()

	out := []*domain.WorkshopDemand{}
	for rows.Next() {
		d, err := scanDemand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workshop demand: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workshop demand: %w", err)
	}
	return out, nil
}

func (r *PostgresWorkshopsRepository) GetWorkshopDemand(ctx context.Context, workshopID string) (*domain.WorkshopDemand, error) {
	d, err := scanDemand(r.db.QueryRowContext(ctx,
		`SELECT`+demandColumns+` FROM workshops w WHERE w.workshop_id::text = $1`, workshopID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workshop %s: %w", workshopID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workshop demand: %w", err)
	}
	return d, nil
}

func (r *PostgresWorkshopsRepository) ReplaceLocations(ctx context.Context, assignments []LocationAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE workshops SET location_id = NULL`); err != nil {
		return fmt.Errorf("failed to clear workshop locations: %w", err)
	}

	for _, a := range assignments {
		res, err := tx.ExecContext(ctx,
			`UPDATE workshops SET location_id = $2::uuid WHERE workshop_id::text = $1`,
			a.WorkshopID, a.LocationID,
		)
		if err != nil {
			return fmt.Errorf("failed to assign location %s to workshop %s: %w", a.LocationID, a.WorkshopID, err)
		}
		if err := expectOneRow(res, "workshop", a.WorkshopID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit workshop locations: %w", err)
	}
	return nil
}
