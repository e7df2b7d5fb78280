package domain

import "database/sql"

// Workshop workshops table
type Workshop struct {
	WorkshopID        string         `db:"workshop_id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	Facilitators      string         `db:"facilitators"` // display text, comma separated names
	Session           int            `db:"session"`
	LocationID        sql.NullString `db:"location_id"`
	PreferredCapacity sql.NullInt64  `db:"preferred_capacity"`
	MoveableSeats     bool           `db:"moveable_seats"`
}

// WorkshopDemand a workshop with its live registration count, as read for an assignment run.
// RegistrationCount = delegate registrations + facilitator registrations.
type WorkshopDemand struct {
	Workshop
	FacilitatorID     string
	RegistrationCount int
}

// MinSession / MaxSession bound the fixed event time slots.
const (
	MinSession = 1
	MaxSession = 3
)

// ValidSession reports whether s is one of the event sessions.
func ValidSession(s int) bool {
	return s >= MinSession && s <= MaxSession
}
