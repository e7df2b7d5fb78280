package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fact-registration/internal/domain"
)

func TestPostgresNotifications_ListActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationsRepository(db)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE expiration > $1")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"notification_id", "message", "expiration"}).
			AddRow("n1", "Check-in opens at 8am in the Union", now.Add(time.Hour)))

	got, err := repo.ListActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].NotificationID)
}

func TestPostgresFlags_SetFlag_Unknown(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresFlagsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE registration_flags SET value = $2 WHERE label = $1")).
		WithArgs("nope", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetFlag(context.Background(), "nope", true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresFlags_GetFlag(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresFlagsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registration_flags WHERE label = $1")).
		WithArgs("delegate_registration_open").
		WillReturnRows(sqlmock.NewRows([]string{"label", "value"}).AddRow("delegate_registration_open", true))

	f, err := repo.GetFlag(context.Background(), "delegate_registration_open")
	require.NoError(t, err)
	assert.True(t, f.Value)
}

func TestPostgresAgenda_BulkCreate_RollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresAgendaRepository(db)
	start := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO agenda_items"))
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"agenda_item_id"}).AddRow("a1"))
	prep.ExpectQuery().WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	items := []*domain.AgendaItem{
		{Title: "Opening", StartTime: start, EndTime: start.Add(time.Hour)},
		{Title: "Lunch", StartTime: start.Add(3 * time.Hour), EndTime: start.Add(4 * time.Hour)},
	}
	err := repo.BulkCreateAgendaItems(context.Background(), items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agenda row 2")
}

func TestPostgresAgenda_Count(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresAgendaRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM agenda_items")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountAgendaItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPostgresDelegates_Summary(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDelegatesRepository(db)
	since := time.Date(2024, 2, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM delegates")).
		WillReturnRows(sqlmock.NewRows([]string{"count", "schools"}).AddRow(120, 14))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE date_created > $1")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"date_created"}).
			AddRow(since.Add(time.Hour)).
			AddRow(since.Add(26 * time.Hour)))

	s, err := repo.Summary(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 120, s.Delegates)
	assert.Equal(t, 14, s.Schools)
	assert.Len(t, s.Registrations, 2)
}

func TestPostgresDelegates_ListDelegateRoster(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDelegatesRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM delegates d")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first", "last", "email", "pronouns", "year", "school", "s1", "s2", "s3"}).
			AddRow("d1", "Sara", "Ali", "sara@example.edu", "she/her", "Junior", "UIUC", "Identity", "", "Poetry"))

	rows, err := repo.ListDelegateRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, [domain.MaxSession]string{"Identity", "", "Poetry"}, rows[0].Sessions)
}
