package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fact-registration/internal/domain"
)

func TestMemoryLocations_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryLocationsRepo()

	id, err := repo.CreateLocation(ctx, &domain.Location{Building: "Union", RoomNum: "A", Capacity: 40, Session: 1})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = repo.CreateLocation(ctx, &domain.Location{Building: "Union", RoomNum: "A", Capacity: 10, Session: 1})
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = repo.CreateLocation(ctx, &domain.Location{Building: "Union", RoomNum: "A", Capacity: 10, Session: 2})
	require.NoError(t, err)

	list, err := repo.ListLocations(ctx, LocationsFilter{Session: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	found, err := repo.FindLocation(ctx, "Union", "A", 2)
	require.NoError(t, err)
	assert.Equal(t, 10, found.Capacity)

	require.NoError(t, repo.DeleteLocation(ctx, id))
	_, err = repo.GetLocation(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryWorkshops_ReplaceLocations(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryWorkshopsRepo()

	w1, err := repo.CreateWorkshop(ctx, &domain.Workshop{Title: "Identity", Session: 1})
	require.NoError(t, err)
	w2, err := repo.CreateWorkshop(ctx, &domain.Workshop{Title: "Poetry", Session: 2})
	require.NoError(t, err)
	repo.SetRegistrationCount(w1, 12)
	repo.SetFacilitator(w1, "f1")

	require.NoError(t, repo.ReplaceLocations(ctx, []LocationAssignment{{WorkshopID: w2, LocationID: "l2"}}))
	require.NoError(t, repo.ReplaceLocations(ctx, []LocationAssignment{{WorkshopID: w1, LocationID: "l1"}}))

	got1, _ := repo.GetWorkshop(ctx, w1)
	got2, _ := repo.GetWorkshop(ctx, w2)
	assert.Equal(t, "l1", got1.LocationID.String)
	assert.False(t, got2.LocationID.Valid)

	d, err := repo.GetWorkshopDemand(ctx, w1)
	require.NoError(t, err)
	assert.Equal(t, 12, d.RegistrationCount)
	assert.Equal(t, "f1", d.FacilitatorID)

	err = repo.ReplaceLocations(ctx, []LocationAssignment{{WorkshopID: "missing", LocationID: "l1"}})
	assert.True(t, errors.Is(err, ErrNotFound))
	got1, _ = repo.GetWorkshop(ctx, w1)
	assert.Equal(t, "l1", got1.LocationID.String)
}
