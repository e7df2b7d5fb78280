package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fact-registration/internal/domain"

	"github.com/google/uuid"
)

// MemoryLocationsRepo keeps locations in process, for DB-less runs and tests.
type MemoryLocationsRepo struct {
	mu        sync.RWMutex
	locations map[string]domain.Location
}

func NewMemoryLocationsRepo() *MemoryLocationsRepo {
	return &MemoryLocationsRepo{locations: map[string]domain.Location{}}
}

var _ LocationsRepository = (*MemoryLocationsRepo)(nil)

func (r *MemoryLocationsRepo) ListLocations(_ context.Context, filter LocationsFilter) ([]*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Location{}
	for _, l := range r.locations {
		if filter.Session != 0 && l.Session != filter.Session {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Session != b.Session {
			return a.Session < b.Session
		}
		if a.Building != b.Building {
			return a.Building < b.Building
		}
		if a.RoomNum != b.RoomNum {
			return a.RoomNum < b.RoomNum
		}
		return a.LocationID < b.LocationID
	})
	return out, nil
}

func (r *MemoryLocationsRepo) GetLocation(_ context.Context, locationID string) (*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.locations[locationID]
	if !ok {
		return nil, fmt.Errorf("location %s: %w", locationID, ErrNotFound)
	}
	return &l, nil
}

func (r *MemoryLocationsRepo) FindLocation(_ context.Context, building, roomNum string, session int) (*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.locations {
		if l.Building == building && l.RoomNum == roomNum && l.Session == session {
			l := l
			return &l, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryLocationsRepo) CreateLocation(_ context.Context, loc *domain.Location) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictLocked(loc) {
		return "", fmt.Errorf("location %s %s (session %d): %w", loc.Building, loc.RoomNum, loc.Session, ErrConflict)
	}
	l := *loc
	if l.LocationID == "" {
		l.LocationID = uuid.NewString()
	}
	r.locations[l.LocationID] = l
	return l.LocationID, nil
}

func (r *MemoryLocationsRepo) UpdateLocation(_ context.Context, loc *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[loc.LocationID]; !ok {
		return fmt.Errorf("location %s: %w", loc.LocationID, ErrNotFound)
	}
	if r.conflictLocked(loc) {
		return fmt.Errorf("location %s %s (session %d): %w", loc.Building, loc.RoomNum, loc.Session, ErrConflict)
	}
	r.locations[loc.LocationID] = *loc
	return nil
}

func (r *MemoryLocationsRepo) DeleteLocation(_ context.Context, locationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[locationID]; !ok {
		return fmt.Errorf("location %s: %w", locationID, ErrNotFound)
	}
	delete(r.locations, locationID)
	return nil
}

func (r *MemoryLocationsRepo) conflictLocked(loc *domain.Location) bool {
	for id, l := range r.locations {
		if id != loc.LocationID && l.Building == loc.Building && l.RoomNum == loc.RoomNum && l.Session == loc.Session {
			return true
		}
	}
	return false
}
