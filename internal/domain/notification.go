package domain

import "time"

// Notification an admin banner message shown until it expires
type Notification struct {
	NotificationID string    `db:"notification_id" json:"notification_id"`
	Message        string    `db:"message" json:"message"`
	Expiration     time.Time `db:"expiration" json:"expiration"`
}
