package domain

import (
	"database/sql"
	"time"
)

// AgendaItem agenda_items table
type AgendaItem struct {
	AgendaItemID string        `db:"agenda_item_id"`
	Title        string        `db:"title"`
	Building     string        `db:"building"`
	RoomNum      string        `db:"room_num"`
	SessionNum   sql.NullInt64 `db:"session_num"` // nullable, 1..3
	Address      string        `db:"address"`
	StartTime    time.Time     `db:"start_time"`
	EndTime      time.Time     `db:"end_time"`
}
