package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fact-registration/internal/domain"
)

// PostgresLocationsRepository LocationsRepository on PostgreSQL
type PostgresLocationsRepository struct {
	db *sql.DB
}

func NewPostgresLocationsRepository(db *sql.DB) *PostgresLocationsRepository {
	return &PostgresLocationsRepository{db: db}
}

var _ LocationsRepository = (*PostgresLocationsRepository)(nil)

const locationColumns = `
	location_id::text,
	building,
	room_num,
	capacity,
	session,
	moveable_seats`

func scanLocation(row scanner) (*domain.Location, error) {
	var l domain.Location
	err := row.Scan(&l.LocationID, &l.Building, &l.RoomNum, &l.Capacity, &l.Session, &l.MoveableSeats)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PostgresLocationsRepository) ListLocations(ctx context.Context, filter LocationsFilter) ([]*domain.Location, error) {
	query := `SELECT` + locationColumns + ` FROM locations`
	var args []any
	if filter.Session != 0 {
		query += ` WHERE session = $1`
		args = append(args, filter.Session)
	}
	query += ` ORDER BY session, building, room_num`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	out := []*domain.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return out, nil
}

func (r *PostgresLocationsRepository) GetLocation(ctx context.Context, locationID string) (*domain.Location, error) {
	if locationID == "" {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT`+locationColumns+` FROM locations WHERE location_id::text = $1`, locationID)
	l, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("location %s: %w", locationID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return l, nil
}

func (r *PostgresLocationsRepository) FindLocation(ctx context.Context, building, roomNum string, session int) (*domain.Location, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+locationColumns+` FROM locations WHERE building = $1 AND room_num = $2 AND session = $3`,
		building, roomNum, session,
	)
	l, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	return l, nil
}

func (r *PostgresLocationsRepository) CreateLocation(ctx context.Context, loc *domain.Location) (string, error) {
	if loc == nil {
		return "", fmt.Errorf("location is required")
	}
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO locations (building, room_num, capacity, session, moveable_seats)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING location_id::text
	`, loc.Building, loc.RoomNum, loc.Capacity, loc.Session, loc.MoveableSeats).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("location %s %s (session %d): %w", loc.Building, loc.RoomNum, loc.Session, ErrConflict)
		}
		return "", fmt.Errorf("failed to create location: %w", err)
	}
	return id, nil
}

func (r *PostgresLocationsRepository) UpdateLocation(ctx context.Context, loc *domain.Location) error {
	if loc == nil || loc.LocationID == "" {
		return fmt.Errorf("location_id is required")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE locations
		SET building = $2, room_num = $3, capacity = $4, session = $5, moveable_seats = $6
		WHERE location_id::text = $1
	`, loc.LocationID, loc.Building, loc.RoomNum, loc.Capacity, loc.Session, loc.MoveableSeats)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("location %s %s (session %d): %w", loc.Building, loc.RoomNum, loc.Session, ErrConflict)
		}
		return fmt.Errorf("failed to update location: %w", err)
	}
	return expectOneRow(res, "location", loc.LocationID)
}

func (r *PostgresLocationsRepository) DeleteLocation(ctx context.Context, locationID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE location_id::text = $1`, locationID)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return expectOneRow(res, "location", locationID)
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
