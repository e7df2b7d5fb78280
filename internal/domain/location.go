package domain

// Location a room that can host one workshop in one session (locations table)
type Location struct {
	LocationID    string `db:"location_id"`
	Building      string `db:"building"`
	RoomNum       string `db:"room_num"`
	Capacity      int    `db:"capacity"`
	Session       int    `db:"session"`
	MoveableSeats bool   `db:"moveable_seats"`
}

// DisplayName is "building room", as printed on the location sheet.
func (l *Location) DisplayName() string {
	if l.Building == "" {
		return l.RoomNum
	}
	if l.RoomNum == "" {
		return l.Building
	}
	return l.Building + " " + l.RoomNum
}
