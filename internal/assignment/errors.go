package assignment

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when rooms or workshops are missing or inconsistent.
var ErrMalformedInput = errors.New("malformed assignment input")

// Pool names the room pool a session ran out of.
type Pool string

const (
	PoolMoveable Pool = "moveable-seat"
	PoolAll      Pool = "all"
)

// SessionError describes why a session could not be placed.
type SessionError struct {
	Session           int
	Pool              Pool
	WorkshopID        string
	RegistrationCount int
	Reason            string
}

func (e *SessionError) Error() string {
	if e.WorkshopID == "" {
		return fmt.Sprintf("session %d: %s", e.Session, e.Reason)
	}
	msg := fmt.Sprintf("session %d: no %s room left for workshop %s (%d registrations)",
		e.Session, e.Pool, e.WorkshopID, e.RegistrationCount)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
