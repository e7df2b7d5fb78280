package repository

import (
	"context"

	"fact-registration/internal/domain"
)

// AgendaRepository event agenda items
type AgendaRepository interface {
	ListAgendaItems(ctx context.Context) ([]*domain.AgendaItem, error)
	CreateAgendaItem(ctx context.Context, item *domain.AgendaItem) (string, error)
	DeleteAgendaItem(ctx context.Context, agendaItemID string) error
	CountAgendaItems(ctx context.Context) (int, error)
	// BulkCreateAgendaItems inserts all items or none.
	BulkCreateAgendaItems(ctx context.Context, items []*domain.AgendaItem) error
}
