package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fact-registration/internal/domain"

	"github.com/google/uuid"
)

// MemoryWorkshopsRepo keeps workshops in process. Registration counts and
// facilitator links are pushed in by MemoryRegistrationRepo.
type MemoryWorkshopsRepo struct {
	mu            sync.RWMutex
	workshops     map[string]domain.Workshop
	registrations map[string]int    // workshopID -> delegate + facilitator registrations
	facilitators  map[string]string // workshopID -> facilitatorID
}

func NewMemoryWorkshopsRepo() *MemoryWorkshopsRepo {
	return &MemoryWorkshopsRepo{
		workshops:     map[string]domain.Workshop{},
		registrations: map[string]int{},
		facilitators:  map[string]string{},
	}
}

var _ WorkshopsRepository = (*MemoryWorkshopsRepo)(nil)

// SetRegistrationCount sets the live registration count for a workshop.
func (r *MemoryWorkshopsRepo) SetRegistrationCount(workshopID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[workshopID] = n
}

// SetFacilitator links a facilitator to a workshop. An empty facilitatorID removes the link.
func (r *MemoryWorkshopsRepo) SetFacilitator(workshopID, facilitatorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if facilitatorID == "" {
		delete(r.facilitators, workshopID)
		return
	}
	r.facilitators[workshopID] = facilitatorID
}

func (r *MemoryWorkshopsRepo) sortedLocked(filter WorkshopsFilter) []domain.Workshop {
	out := make([]domain.Workshop, 0, len(r.workshops))
	for _, w := range r.workshops {
		if filter.Session != 0 && w.Session != filter.Session {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Session != out[j].Session {
			return out[i].Session < out[j].Session
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].WorkshopID < out[j].WorkshopID
	})
	return out
}

func (r *MemoryWorkshopsRepo) ListWorkshops(_ context.Context, filter WorkshopsFilter) ([]*domain.Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked(filter)
	out := make([]*domain.Workshop, 0, len(sorted))
	for i := range sorted {
		out = append(out, &sorted[i])
	}
	return out, nil
}

func (r *MemoryWorkshopsRepo) GetWorkshop(_ context.Context, workshopID string) (*domain.Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workshops[workshopID]
	if !ok {
		return nil, fmt.Errorf("workshop %s: %w", workshopID, ErrNotFound)
	}
	return &w, nil
}

func (r *MemoryWorkshopsRepo) GetWorkshopByTitle(_ context.Context, title string, session int) (*domain.Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.workshops {
		if w.Title == title && w.Session == session {
			w := w
			return &w, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryWorkshopsRepo) CreateWorkshop(_ context.Context, w *domain.Workshop) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.workshops {
		if existing.Title == w.Title && existing.Session == w.Session {
			return "", fmt.Errorf("workshop %q in session %d: %w", w.Title, w.Session, ErrConflict)
		}
	}
	c := *w
	if c.WorkshopID == "" {
		c.WorkshopID = uuid.NewString()
	}
	r.workshops[c.WorkshopID] = c
	return c.WorkshopID, nil
}

func (r *MemoryWorkshopsRepo) UpdateWorkshop(_ context.Context, w *domain.Workshop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workshops[w.WorkshopID]; !ok {
		return fmt.Errorf("workshop %s: %w", w.WorkshopID, ErrNotFound)
	}
	for id, existing := range r.workshops {
		if id != w.WorkshopID && existing.Title == w.Title && existing.Session == w.Session {
			return fmt.Errorf("workshop %q in session %d: %w", w.Title, w.Session, ErrConflict)
		}
	}
	r.workshops[w.WorkshopID] = *w
	return nil
}

func (r *MemoryWorkshopsRepo) DeleteWorkshop(_ context.Context, workshopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workshops[workshopID]; !ok {
		return fmt.Errorf("workshop %s: %w", workshopID, ErrNotFound)
	}
	delete(r.workshops, workshopID)
	delete(r.registrations, workshopID)
	delete(r.facilitators, workshopID)
	return nil
}

func (r *MemoryWorkshopsRepo) demandLocked(w domain.Workshop) *domain.WorkshopDemand {
	return &domain.WorkshopDemand{
		Workshop:          w,
		FacilitatorID:     r.facilitators[w.WorkshopID],
		RegistrationCount: r.registrations[w.WorkshopID],
	}
}

func (r *MemoryWorkshopsRepo) ListWorkshopDemand(_ context.Context) ([]*domain.WorkshopDemand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked(WorkshopsFilter{})
	out := make([]*domain.WorkshopDemand, 0, len(sorted))
	for _, w := range sorted {
		out = append(out, r.demandLocked(w))
	}
	return out, nil
}

func (r *MemoryWorkshopsRepo) GetWorkshopDemand(_ context.Context, workshopID string) (*domain.WorkshopDemand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workshops[workshopID]
	if !ok {
		return nil, fmt.Errorf("workshop %s: %w", workshopID, ErrNotFound)
	}
	return r.demandLocked(w), nil
}

func (r *MemoryWorkshopsRepo) ReplaceLocations(_ context.Context, assignments []LocationAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range assignments {
		if _, ok := r.workshops[a.WorkshopID]; !ok {
			return fmt.Errorf("workshop %s: %w", a.WorkshopID, ErrNotFound)
		}
	}
	for id, w := range r.workshops {
		w.LocationID.Valid = false
		w.LocationID.String = ""
		r.workshops[id] = w
	}
	for _, a := range assignments {
		w := r.workshops[a.WorkshopID]
		w.LocationID.Valid = true
		w.LocationID.String = a.LocationID
		r.workshops[a.WorkshopID] = w
	}
	return nil
}
