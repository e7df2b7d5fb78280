package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fact-registration/internal/domain"
)

// PostgresAgendaRepository AgendaRepository on PostgreSQL
type PostgresAgendaRepository struct {
	db *sql.DB
}

func NewPostgresAgendaRepository(db *sql.DB) *PostgresAgendaRepository {
	return &PostgresAgendaRepository{db: db}
}

var _ AgendaRepository = (*PostgresAgendaRepository)(nil)

const insertAgendaItem = `
	INSERT INTO agenda_items (title, building, room_num, session_num, address, start_time, end_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING agenda_item_id::text`

func agendaArgs(item *domain.AgendaItem) []any {
	return []any{item.Title, item.Building, item.RoomNum, item.SessionNum, item.Address, item.StartTime, item.EndTime}
}

func (r *PostgresAgendaRepository) ListAgendaItems(ctx context.Context) ([]*domain.AgendaItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT agenda_item_id::text, title, building, room_num, session_num, address, start_time, end_time
		FROM agenda_items
		ORDER BY start_time, title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agenda items: %w", err)
	}
	defer rows.Close()

	out := []*domain.AgendaItem{}
	for rows.Next() {
		var a domain.AgendaItem
		if err := rows.Scan(&a.AgendaItemID, &a.Title, &a.Building, &a.RoomNum, &a.SessionNum,
			&a.Address, &a.StartTime, &a.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan agenda item: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agenda items: %w", err)
	}
	return out, nil
}

func (r *PostgresAgendaRepository) CreateAgendaItem(ctx context.Context, item *domain.AgendaItem) (string, error) {
	var id string
	if err := r.db.QueryRowContext(ctx, insertAgendaItem, agendaArgs(item)...).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to create agenda item: %w", err)
	}
	return id, nil
}

func (r *PostgresAgendaRepository) DeleteAgendaItem(ctx context.Context, agendaItemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM agenda_items WHERE agenda_item_id::text = $1`, agendaItemID)
	if err != nil {
		return fmt.Errorf("failed to delete agenda item: %w", err)
	}
	return expectOneRow(res, "agenda item", agendaItemID)
}

func (r *PostgresAgendaRepository) CountAgendaItems(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agenda_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count agenda items: %w", err)
	}
	return n, nil
}

func (r *PostgresAgendaRepository) BulkCreateAgendaItems(ctx context.Context, items []*domain.AgendaItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertAgendaItem)
	if err != nil {
		return fmt.Errorf("failed to prepare agenda insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if err := stmt.QueryRowContext(ctx, agendaArgs(item)...).Scan(&item.AgendaItemID); err != nil {
			return fmt.Errorf("failed to insert agenda row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit agenda upload: %w", err)
	}
	return nil
}
