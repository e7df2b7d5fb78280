// Package assignment places workshops into rooms for the three event sessions.
//
// Sessions 1 and 2 use a greedy first-fit over rooms sorted by capacity, with
// workshops that want moveable seats placed from the moveable pool first. A
// facilitator's session-1 room is then carried over to their session-2
// workshop when it is large enough. Session 3 pairs the i-th smallest workshop
// with the i-th smallest room.
//
// The sort order is part of the observable contract: the same input always
// yields the same rooms, so reruns are reproducible.
package assignment

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// NumSessions is the number of fixed event time slots.
const NumSessions = 3

// Room is a location that can host one workshop in its session.
type Room struct {
	ID            string
	Capacity      int
	Session       int
	MoveableSeats bool
}

// Workshop is a scheduled workshop and its live demand.
type Workshop struct {
	ID                string
	Session           int
	RegistrationCount int
	// PreferredCapacity nil means no preference.
	PreferredCapacity *int
	// MoveableSeats is the workshop's preference, not a room attribute.
	MoveableSeats bool
	FacilitatorID string
}

// Input is everything one run needs. Rooms and workshops carry their own session.
type Input struct {
	Workshops []Workshop
	Rooms     []Room
}

// Assignment maps one workshop to one room.
type Assignment struct {
	WorkshopID string
	RoomID     string
	Session    int
	// Aliased is set when the room was carried over from the facilitator's session-1 workshop.
	Aliased bool
}

// SessionOutcome reports whether a session could be placed.
type SessionOutcome struct {
	Session  int
	OK       bool
	Assigned int
	Err      *SessionError
}

// Result of a run. Sessions is indexed by session-1.
type Result struct {
	Assignments []Assignment
	Sessions    []SessionOutcome
}

// Failed returns the per-session failures in session order.
func (r *Result) Failed() []*SessionError {
	var out []*SessionError
	for _, s := range r.Sessions {
		if s.Err != nil {
			out = append(out, s.Err)
		}
	}
	return out
}

// RoomFor returns the room assigned to workshopID.
func (r *Result) RoomFor(workshopID string) (string, bool) {
	for _, a := range r.Assignments {
		if a.WorkshopID == workshopID {
			return a.RoomID, true
		}
	}
	return "", false
}

// Assign computes room assignments for all three sessions.
//
// A malformed input returns an error wrapping ErrMalformedInput and no result.
// An infeasible session is reported in Result.Sessions and contributes no
// assignments; the other sessions are still placed.
func Assign(in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	workshops := make([][]Workshop, NumSessions)
	rooms := make([][]Room, NumSessions)
	for _, w := range in.Workshops {
		workshops[w.Session-1] = append(workshops[w.Session-1], w)
	}
	for _, r := range in.Rooms {
		rooms[r.Session-1] = append(rooms[r.Session-1], r)
	}

	res := &Result{Sessions: make([]SessionOutcome, NumSessions)}
	placed := make([][]Assignment, NumSessions)

	for s := 1; s <= 2; s++ {
		a, serr := firstFit(s, workshops[s-1], rooms[s-1])
		if serr != nil {
			res.Sessions[s-1] = SessionOutcome{Session: s, Err: serr}
			continue
		}
		placed[s-1] = a
		res.Sessions[s-1] = SessionOutcome{Session: s, OK: true, Assigned: len(a)}
	}

	if res.Sessions[0].OK && res.Sessions[1].OK {
		carryOver(workshops[0], workshops[1], rooms[0], placed[0], placed[1])
	}

	a, serr := pairAscending(3, workshops[2], rooms[2])
	if serr != nil {
		res.Sessions[2] = SessionOutcome{Session: 3, Err: serr}
	} else {
		placed[2] = a
		res.Sessions[2] = SessionOutcome{Session: 3, OK: true, Assigned: len(a)}
	}

	for _, p := range placed {
		res.Assignments = append(res.Assignments, p...)
	}
	return res, nil
}

// firstFit places moveable-seat workshops from the moveable pool, then the
// rest from the full pool, each taking the smallest free room that fits.
func firstFit(session int, ws []Workshop, rooms []Room) ([]Assignment, *SessionError) {
	ordered := sortWorkshops(ws, true)
	all := sortRooms(rooms)
	var moveable []Room
	for _, r := range all {
		if r.MoveableSeats {
			moveable = append(moveable, r)
		}
	}

	taken := make(map[string]bool, len(all))
	out := make([]Assignment, 0, len(ordered))

	place := func(pool Pool, candidates []Room, w Workshop) *SessionError {
		for _, r := range candidates {
			if taken[r.ID] || r.Capacity < w.RegistrationCount {
				continue
			}
			taken[r.ID] = true
			out = append(out, Assignment{WorkshopID: w.ID, RoomID: r.ID, Session: session})
			return nil
		}
		return &SessionError{
			Session:           session,
			Pool:              pool,
			WorkshopID:        w.ID,
			RegistrationCount: w.RegistrationCount,
		}
	}

	for _, w := range ordered {
		if !w.MoveableSeats {
			continue
		}
		if err := place(PoolMoveable, moveable, w); err != nil {
			return nil, err
		}
	}
	for _, w := range ordered {
		if w.MoveableSeats {
			continue
		}
		if err := place(PoolAll, all, w); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// carryOver points a facilitator's session-2 workshop at the room their
// session-1 workshop got, when that room holds the session-2 registrations.
// A facilitator's session-2 workshops are tried in placement order
// (moveable-seat workshops first, then by registration count and preferred
// capacity) and the first one that fits is aliased.
//
// The carried room is not checked against session 2's moveable-seat pool. This
// mirrors the behaviour operators already rely on; see DESIGN.md.
func carryOver(s1, s2 []Workshop, s1Rooms []Room, placed1, placed2 []Assignment) {
	capacity := make(map[string]int, len(s1Rooms))
	for _, r := range s1Rooms {
		capacity[r.ID] = r.Capacity
	}
	roomOf := make(map[string]string, len(placed1))
	for _, a := range placed1 {
		roomOf[a.WorkshopID] = a.RoomID
	}

	// first session-1 workshop per facilitator, in input order
	source := make(map[string]string)
	for _, w := range s1 {
		if w.FacilitatorID == "" {
			continue
		}
		if _, ok := source[w.FacilitatorID]; !ok {
			source[w.FacilitatorID] = roomOf[w.ID]
		}
	}
	if len(source) == 0 {
		return
	}

	count := make(map[string]int, len(s2))
	facilitator := make(map[string]string, len(s2))
	for _, w := range s2 {
		count[w.ID] = w.RegistrationCount
		facilitator[w.ID] = w.FacilitatorID
	}

	used := make(map[string]bool)
	for i := range placed2 {
		fid := facilitator[placed2[i].WorkshopID]
		if fid == "" || used[fid] {
			continue
		}
		room, ok := source[fid]
		if !ok || room == "" {
			continue
		}
		if capacity[room] < count[placed2[i].WorkshopID] {
			continue
		}
		used[fid] = true
		placed2[i].RoomID = room
		placed2[i].Aliased = true
	}
}

// pairAscending matches the i-th smallest workshop with the i-th smallest room.
func pairAscending(session int, ws []Workshop, rooms []Room) ([]Assignment, *SessionError) {
	if len(ws) > len(rooms) {
		return nil, &SessionError{
			Session: session,
			Pool:    PoolAll,
			Reason:  fmt.Sprintf("%d workshops but only %d rooms", len(ws), len(rooms)),
		}
	}

	ordered := sortWorkshops(ws, false)
	sortedRooms := sortRooms(rooms)
	out := make([]Assignment, 0, len(ordered))
	for i, w := range ordered {
		r := sortedRooms[i]
		if r.Capacity < w.RegistrationCount {
			return nil, &SessionError{
				Session:           session,
				Pool:              PoolAll,
				WorkshopID:        w.ID,
				RegistrationCount: w.RegistrationCount,
				Reason:            fmt.Sprintf("room %s holds %d", r.ID, r.Capacity),
			}
		}
		out = append(out, Assignment{WorkshopID: w.ID, RoomID: r.ID, Session: session})
	}
	return out, nil
}

func sortWorkshops(ws []Workshop, byPreferred bool) []Workshop {
	out := append([]Workshop(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RegistrationCount != out[j].RegistrationCount {
			return out[i].RegistrationCount < out[j].RegistrationCount
		}
		if byPreferred {
			return preferred(out[i]) < preferred(out[j])
		}
		return false
	})
	return out
}

func preferred(w Workshop) int {
	if w.PreferredCapacity == nil {
		return math.MaxInt
	}
	return *w.PreferredCapacity
}

func sortRooms(rooms []Room) []Room {
	out := append([]Room(nil), rooms...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Capacity < out[j].Capacity
	})
	return out
}

func validate(in Input) error {
	seenW := make(map[string]bool, len(in.Workshops))
	perSession := make([]int, NumSessions)
	for _, w := range in.Workshops {
		switch {
		case w.ID == "":
			return malformed("workshop with empty id")
		case seenW[w.ID]:
			return malformed("duplicate workshop %s", w.ID)
		case w.Session < 1 || w.Session > NumSessions:
			return malformed("workshop %s has session %d", w.ID, w.Session)
		case w.RegistrationCount < 0:
			return malformed("workshop %s has negative registration count", w.ID)
		case w.PreferredCapacity != nil && *w.PreferredCapacity < 0:
			return malformed("workshop %s has negative preferred capacity", w.ID)
		}
		seenW[w.ID] = true
		perSession[w.Session-1]++
	}

	seenR := make(map[string]bool, len(in.Rooms))
	roomsPerSession := make([]int, NumSessions)
	for _, r := range in.Rooms {
		switch {
		case r.ID == "":
			return malformed("room with empty id")
		case seenR[r.ID]:
			return malformed("duplicate room %s", r.ID)
		case r.Session < 1 || r.Session > NumSessions:
			return malformed("room %s has session %d", r.ID, r.Session)
		case r.Capacity <= 0:
			return malformed("room %s has capacity %d", r.ID, r.Capacity)
		}
		seenR[r.ID] = true
		roomsPerSession[r.Session-1]++
	}

	for i := 0; i < NumSessions; i++ {
		if perSession[i] > 0 && roomsPerSession[i] == 0 {
			return malformed("session %d has %d workshops and no rooms", i+1, perSession[i])
		}
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// IsMalformed reports whether err came from input validation.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}
