package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fact-registration/internal/domain"
)

type fakeAgenda struct {
	items []*domain.AgendaItem
}

func (f *fakeAgenda) ListAgendaItems(context.Context) ([]*domain.AgendaItem, error) {
	return f.items, nil
}

func (f *fakeAgenda) CreateAgendaItem(_ context.Context, item *domain.AgendaItem) (string, error) {
	item.AgendaItemID = "agenda-1"
	f.items = append(f.items, item)
	return item.AgendaItemID, nil
}

func (f *fakeAgenda) DeleteAgendaItem(context.Context, string) error { return nil }

func (f *fakeAgenda) CountAgendaItems(context.Context) (int, error) { return len(f.items), nil }

func (f *fakeAgenda) BulkCreateAgendaItems(_ context.Context, items []*domain.AgendaItem) error {
	f.items = append(f.items, items...)
	return nil
}

func TestAgendaService_CreateAgendaItem(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	repo := &fakeAgenda{}
	svc := NewAgendaService(repo, chicago, zap.NewNop())
	ctx := context.Background()

	dto, err := svc.CreateAgendaItem(ctx, admin, CreateAgendaItemRequest{
		Title:      "Opening",
		StartTime:  "2024-06-10T09:00:00",
		EndTime:    "2024-06-10T10:00:00",
		SessionNum: intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "agenda-1", dto.AgendaItemID)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, chicago), dto.StartTime)
	assert.Nil(t, dto.SessionNum)

	_, err = svc.CreateAgendaItem(ctx, admin, CreateAgendaItemRequest{
		Title: "Backwards", StartTime: "2024-06-10T10:00:00", EndTime: "2024-06-10T09:00:00",
	})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = svc.CreateAgendaItem(ctx, delegate, CreateAgendaItemRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAgendaService_BulkUploadRefusedWhenItemsExist(t *testing.T) {
	repo := &fakeAgenda{items: []*domain.AgendaItem{{AgendaItemID: "a"}}}
	svc := NewAgendaService(repo, time.UTC, zap.NewNop())

	_, err := svc.BulkUpload(context.Background(), admin, []byte("x"))
	assert.ErrorIs(t, err, ErrConflict)

	repo.items = nil
	_, err = svc.BulkUpload(context.Background(), admin, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
