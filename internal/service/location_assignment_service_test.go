package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fact-registration/internal/domain"
	"fact-registration/internal/export"
	"fact-registration/internal/repository"
)

type assignmentFixture struct {
	workshops *repository.MemoryWorkshopsRepo
	locations *repository.MemoryLocationsRepo
	notifier  *recordingNotifier
	svc       *LocationAssignmentService
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	f := &assignmentFixture{
		workshops: repository.NewMemoryWorkshopsRepo(),
		locations: repository.NewMemoryLocationsRepo(),
		notifier:  &recordingNotifier{},
	}
	f.svc = NewLocationAssignmentService(f.workshops, f.locations, f.notifier,
		[]string{"ops@example.org"}, "FACT 2024", zap.NewNop())
	return f
}

func (f *assignmentFixture) room(t *testing.T, id, room string, capacity, session int, moveable bool) {
	t.Helper()
	_, err := f.locations.CreateLocation(context.Background(), &domain.Location{
		LocationID: id, Building: "Union", RoomNum: room, Capacity: capacity, Session: session, MoveableSeats: moveable,
	})
	require.NoError(t, err)
}

func (f *assignmentFixture) workshop(t *testing.T, id, title string, session, count int, facilitator string) {
	t.Helper()
	_, err := f.workshops.CreateWorkshop(context.Background(), &domain.Workshop{WorkshopID: id, Title: title, Session: session})
	require.NoError(t, err)
	f.workshops.SetRegistrationCount(id, count)
	if facilitator != "" {
		f.workshops.SetFacilitator(id, facilitator)
	}
}

func (f *assignmentFixture) locationOf(t *testing.T, workshopID string) string {
	t.Helper()
	w, err := f.workshops.GetWorkshop(context.Background(), workshopID)
	require.NoError(t, err)
	return w.LocationID.String
}

func TestLocationAssignment_Run(t *testing.T) {
	f := newAssignmentFixture(t)
	f.room(t, "r1-small", "101", 10, 1, false)
	f.room(t, "r1-big", "102", 40, 1, false)
	f.room(t, "r2-small", "201", 15, 2, false)
	f.room(t, "r2-big", "202", 50, 2, false)
	f.room(t, "r3-a", "301", 4, 3, false)
	f.room(t, "r3-b", "302", 10, 3, false)
	f.room(t, "r3-c", "303", 15, 3, false)

	f.workshop(t, "w1a", "Identity", 1, 30, "fac-1")
	f.workshop(t, "w1b", "Poetry", 1, 8, "")
	f.workshop(t, "w2a", "Media", 2, 35, "fac-1")
	f.workshop(t, "w3a", "Careers A", 3, 5, "")
	f.workshop(t, "w3b", "Careers B", 3, 12, "")
	f.workshop(t, "w3c", "Careers C", 3, 3, "")

	report, err := f.svc.Run(context.Background(), admin)
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, "r1-big", f.locationOf(t, "w1a"))
	assert.Equal(t, "r1-small", f.locationOf(t, "w1b"))
	// fac-1 keeps the 40-seat session-1 room for the 35-person session-2 workshop
	assert.Equal(t, "r1-big", f.locationOf(t, "w2a"))
	assert.Equal(t, "r3-a", f.locationOf(t, "w3c"))
	assert.Equal(t, "r3-b", f.locationOf(t, "w3a"))
	assert.Equal(t, "r3-c", f.locationOf(t, "w3b"))

	msg := f.notifier.last()
	require.NotNil(t, msg)
	assert.Equal(t, "FACT 2024 Automated Workshop Location Update", msg.Subject)
	assert.Equal(t, []string{"ops@example.org"}, msg.To)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, AssignmentWorkbookName, msg.Attachments[0].Name)
	assert.Equal(t, export.ContentType, msg.Attachments[0].ContentType)
	assert.True(t, report.Notified)

	var carried int
	for _, a := range report.Assignments {
		if a.CarriedOver {
			carried++
			assert.Equal(t, "w2a", a.WorkshopID)
		}
	}
	assert.Equal(t, 1, carried)
}

func TestLocationAssignment_FailedSessionIsClearedAndReported(t *testing.T) {
	f := newAssignmentFixture(t)
	f.room(t, "m1", "101", 10, 1, true)
	f.room(t, "m2", "102", 20, 1, true)
	f.room(t, "r2", "201", 30, 2, false)

	_, err := f.workshops.CreateWorkshop(context.Background(), &domain.Workshop{
		WorkshopID: "big", Title: "Big", Session: 1, MoveableSeats: true,
		LocationID: sqlNull("m2"),
	})
	require.NoError(t, err)
	f.workshops.SetRegistrationCount("big", 25)
	f.workshop(t, "small", "Small", 1, 5, "")
	f.workshop(t, "s2", "Second", 2, 12, "")

	report, err := f.svc.Run(context.Background(), admin)
	require.NoError(t, err)
	require.True(t, report.Failed())

	assert.False(t, report.Sessions[0].OK)
	assert.Contains(t, report.Sessions[0].Error, "moveable-seat")
	assert.True(t, report.Sessions[1].OK)

	// session 1 left unassigned, including the previously stored room
	assert.Empty(t, f.locationOf(t, "big"))
	assert.Empty(t, f.locationOf(t, "small"))
	assert.Equal(t, "r2", f.locationOf(t, "s2"))

	assert.Contains(t, f.notifier.last().Body, "Session 1: no location update occurred")
}

func TestLocationAssignment_Idempotent(t *testing.T) {
	f := newAssignmentFixture(t)
	f.room(t, "a", "1", 20, 1, false)
	f.room(t, "b", "2", 20, 1, false)
	f.workshop(t, "x", "X", 1, 10, "")
	f.workshop(t, "y", "Y", 1, 10, "")

	first, err := f.svc.Run(context.Background(), admin)
	require.NoError(t, err)
	second, err := f.svc.Run(context.Background(), admin)
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestLocationAssignment_NotifyFailureKeepsAssignments(t *testing.T) {
	f := newAssignmentFixture(t)
	f.notifier.err = errors.New("smtp down")
	f.room(t, "a", "1", 20, 1, false)
	f.workshop(t, "x", "X", 1, 10, "")

	report, err := f.svc.Run(context.Background(), admin)
	require.NoError(t, err)
	assert.False(t, report.Notified)
	assert.Contains(t, report.NotifyError, "smtp down")
	assert.Equal(t, "a", f.locationOf(t, "x"))
}

func TestLocationAssignment_MalformedInput(t *testing.T) {
	f := newAssignmentFixture(t)
	f.workshop(t, "x", "X", 3, 10, "")

	_, err := f.svc.Run(context.Background(), admin)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Nil(t, f.notifier.last())
}

func TestLocationAssignment_Forbidden(t *testing.T) {
	f := newAssignmentFixture(t)
	_, err := f.svc.Run(context.Background(), delegate)
	assert.ErrorIs(t, err, ErrForbidden)
}
