package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fact-registration/internal/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var demandRowColumns = []string{
	"workshop_id", "title", "description", "facilitators", "session",
	"location_id", "preferred_capacity", "moveable_seats", "facilitator_id", "registration_count",
}

func TestPostgresWorkshops_ListWorkshopDemand(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresWorkshopsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY w.session, w.title, w.workshop_id")).
		WillReturnRows(sqlmock.NewRows(demandRowColumns).
			AddRow("w1", "Identity", "", "A. Khan", 1, nil, 30, true, "f1", 25).
			AddRow("w2", "Poetry", "", "", 2, "l9", nil, false, "", 0))

	got, err := repo.ListWorkshopDemand(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "w1", got[0].WorkshopID)
	assert.Equal(t, "f1", got[0].FacilitatorID)
	assert.Equal(t, 25, got[0].RegistrationCount)
	assert.True(t, got[0].PreferredCapacity.Valid)
	assert.EqualValues(t, 30, got[0].PreferredCapacity.Int64)
	assert.False(t, got[0].LocationID.Valid)

	assert.False(t, got[1].PreferredCapacity.Valid)
	assert.Equal(t, "l9", got[1].LocationID.String)
}

func TestPostgresWorkshops_GetWorkshop_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresWorkshopsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE w.workshop_id::text = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetWorkshop(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresWorkshops_CreateWorkshop_Conflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresWorkshopsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO workshops")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.CreateWorkshop(context.Background(), &domain.Workshop{Title: "Identity", Session: 1})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestPostgresWorkshops_ReplaceLocations(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresWorkshopsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET location_id = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET location_id = $2::uuid")).
		WithArgs("w1", "l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET location_id = $2::uuid")).
		WithArgs("w2", "l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceLocations(context.Background(), []LocationAssignment{
		{WorkshopID: "w1", LocationID: "l1"},
		{WorkshopID: "w2", LocationID: "l1"},
	})
	require.NoError(t, err)
}

func TestPostgresWorkshops_ReplaceLocations_RollsBackOnMissingWorkshop(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresWorkshopsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET location_id = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET location_id = $2::uuid")).
		WithArgs("gone", "l1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ReplaceLocations(context.Background(), []LocationAssignment{{WorkshopID: "gone", LocationID: "l1"}})
	assert.True(t, errors.Is(err, ErrNotFound))
}
