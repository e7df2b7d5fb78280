package domain

import (
	"database/sql"
	"time"
)

// User users table. UserID is issued by the identity gateway.
type User struct {
	UserID    string `db:"user_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

// School schools table
type School struct {
	SchoolID string `db:"school_id" json:"school_id"`
	Name     string `db:"name" json:"name"`
}

// Delegate delegates table. OtherSchool is set when the school is not listed.
type Delegate struct {
	DelegateID  string         `db:"delegate_id"`
	UserID      string         `db:"user_id"`
	Pronouns    string         `db:"pronouns"`
	Year        string         `db:"year"`
	SchoolID    sql.NullString `db:"school_id"`
	OtherSchool string         `db:"other_school"`
	DateCreated time.Time      `db:"date_created"`
}

// DelegateProfile a delegate with its user row and registered workshops, ordered by session.
type DelegateProfile struct {
	User        User
	Delegate    Delegate
	WorkshopIDs []string
}

// Facilitator facilitators table
type Facilitator struct {
	FacilitatorID string `db:"facilitator_id"`
	UserID        string `db:"user_id"`
	FaName        string `db:"fa_name"`
	FaContact     string `db:"fa_contact"`
}

// FacilitatorProfile a facilitator with its user row and the workshops they lead.
type FacilitatorProfile struct {
	User        User
	Facilitator Facilitator
	WorkshopIDs []string
}

// FacilitatorRegistration a seat taken by a facilitator's guest; counts toward workshop demand.
type FacilitatorRegistration struct {
	RegistrationID  string `db:"registration_id" json:"registration_id"`
	FacilitatorName string `db:"facilitator_name" json:"facilitator_name"`
	WorkshopID      string `db:"workshop_id" json:"workshop_id"`
}
