package domain

import "time"

// DelegateRosterRow one delegate as exported on the delegate sheet.
// Sessions holds the workshop title per session (index 0 = session 1), "" when not registered.
type DelegateRosterRow struct {
	DelegateID string
	FirstName  string
	LastName   string
	Email      string
	Pronouns   string
	Year       string
	School     string
	Sessions   [MaxSession]string
}

// EventSummary admin dashboard numbers
type EventSummary struct {
	Delegates     int         `json:"delegates"`
	Schools       int         `json:"schools"`
	Registrations []time.Time `json:"registrations"`
}
