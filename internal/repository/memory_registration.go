package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fact-registration/internal/domain"

	"github.com/google/uuid"
)

// MemoryRegistrationRepo keeps sign-ups in process and pushes the resulting
// registration counts and facilitator links into the workshops repo after every write.
type MemoryRegistrationRepo struct {
	mu           sync.Mutex
	workshops    *MemoryWorkshopsRepo
	schools      map[string]domain.School
	users        map[string]domain.User
	delegates    map[string]domain.Delegate    // userID -> delegate
	facilitators map[string]domain.Facilitator // userID -> facilitator
	registered   map[string][]string           // delegateID -> workshopIDs
	links        map[string][]string           // facilitatorID -> workshopIDs
	facRegs      []domain.FacilitatorRegistration
	synced       map[string]bool // workshops whose demand was pushed at least once
}

func NewMemoryRegistrationRepo(workshops *MemoryWorkshopsRepo, schools ...domain.School) *MemoryRegistrationRepo {
	r := &MemoryRegistrationRepo{
		workshops:    workshops,
		schools:      map[string]domain.School{},
		users:        map[string]domain.User{},
		delegates:    map[string]domain.Delegate{},
		facilitators: map[string]domain.Facilitator{},
		registered:   map[string][]string{},
		links:        map[string][]string{},
		synced:       map[string]bool{},
	}
	for _, s := range schools {
		if s.SchoolID == "" {
			s.SchoolID = uuid.NewString()
		}
		r.schools[s.SchoolID] = s
	}
	return r
}

var _ RegistrationRepository = (*MemoryRegistrationRepo)(nil)

// syncLocked recomputes demand from the stored registrations and links.
// Entries pointing at deleted workshops are dropped, as the database cascade would.
func (r *MemoryRegistrationRepo) syncLocked(ctx context.Context) {
	exists := func(id string) bool {
		_, err := r.workshops.GetWorkshop(ctx, id)
		return err == nil
	}
	prune := func(ids []string) []string {
		kept := ids[:0]
		for _, id := range ids {
			if exists(id) {
				kept = append(kept, id)
			}
		}
		return kept
	}

	counts := map[string]int{}
	firstFacilitator := map[string]string{}
	for did, ids := range r.registered {
		r.registered[did] = prune(ids)
		for _, id := range r.registered[did] {
			counts[id]++
		}
	}
	regs := r.facRegs[:0]
	for _, fr := range r.facRegs {
		if exists(fr.WorkshopID) {
			regs = append(regs, fr)
			counts[fr.WorkshopID]++
		}
	}
	r.facRegs = regs
	for fid, ids := range r.links {
		r.links[fid] = prune(ids)
		for _, id := range r.links[fid] {
			if cur, ok := firstFacilitator[id]; !ok || fid < cur {
				firstFacilitator[id] = fid
			}
		}
	}

	for id := range counts {
		r.synced[id] = true
	}
	for id := range firstFacilitator {
		r.synced[id] = true
	}
	for id := range r.synced {
		r.workshops.SetRegistrationCount(id, counts[id])
		r.workshops.SetFacilitator(id, firstFacilitator[id])
	}
}

func (r *MemoryRegistrationRepo) requireWorkshops(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := r.workshops.GetWorkshop(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryRegistrationRepo) saveUserLocked(u domain.User) error {
	for id, existing := range r.users {
		if id != u.UserID && existing.Email == u.Email {
			return fmt.Errorf("email %s: %w", u.Email, ErrConflict)
		}
	}
	r.users[u.UserID] = u
	return nil
}

func (r *MemoryRegistrationRepo) ListSchools(context.Context) ([]*domain.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.School, 0, len(r.schools))
	for _, s := range r.schools {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRegistrationRepo) GetSchool(_ context.Context, schoolID string) (*domain.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.schools[schoolID]
	if !ok {
		return nil, fmt.Errorf("school %s: %w", schoolID, ErrNotFound)
	}
	return &s, nil
}

func (r *MemoryRegistrationRepo) CreateDelegate(_ context.Context, p *domain.DelegateProfile) (string, error) {
	if p == nil || p.User.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.delegates[p.User.UserID]; ok {
		return "", fmt.Errorf("delegate for user %s: %w", p.User.UserID, ErrConflict)
	}
	if p.Delegate.SchoolID.Valid {
		if _, ok := r.schools[p.Delegate.SchoolID.String]; !ok {
			return "", fmt.Errorf("school %s: %w", p.Delegate.SchoolID.String, ErrNotFound)
		}
	}
	if err := r.saveUserLocked(p.User); err != nil {
		return "", err
	}
	d := p.Delegate
	d.DelegateID = uuid.NewString()
	d.UserID = p.User.UserID
	d.DateCreated = time.Now().UTC()
	r.delegates[d.UserID] = d
	return d.DelegateID, nil
}

func (r *MemoryRegistrationRepo) GetDelegateByUser(_ context.Context, userID string) (*domain.DelegateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.delegates[userID]
	if !ok {
		return nil, fmt.Errorf("delegate for user %s: %w", userID, ErrNotFound)
	}
	return &domain.DelegateProfile{
		User:        r.users[userID],
		Delegate:    d,
		WorkshopIDs: append([]string{}, r.registered[d.DelegateID]...),
	}, nil
}

func (r *MemoryRegistrationRepo) delegateByIDLocked(delegateID string) (domain.Delegate, bool) {
	for _, d := range r.delegates {
		if d.DelegateID == delegateID {
			return d, true
		}
	}
	return domain.Delegate{}, false
}

func (r *MemoryRegistrationRepo) UpdateDelegate(_ context.Context, p *domain.DelegateProfile) error {
	if p == nil || p.Delegate.DelegateID == "" {
		return fmt.Errorf("delegate_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.delegateByIDLocked(p.Delegate.DelegateID)
	if !ok {
		return fmt.Errorf("delegate %s: %w", p.Delegate.DelegateID, ErrNotFound)
	}
	if p.Delegate.SchoolID.Valid {
		if _, ok := r.schools[p.Delegate.SchoolID.String]; !ok {
			return fmt.Errorf("school %s: %w", p.Delegate.SchoolID.String, ErrNotFound)
		}
	}
	u := p.User
	u.UserID = existing.UserID
	if err := r.saveUserLocked(u); err != nil {
		return err
	}
	d := p.Delegate
	d.UserID = existing.UserID
	d.DateCreated = existing.DateCreated
	r.delegates[existing.UserID] = d
	return nil
}

func (r *MemoryRegistrationRepo) ReplaceRegistrations(ctx context.Context, delegateID string, workshopIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.delegateByIDLocked(delegateID); !ok {
		return fmt.Errorf("delegate %s: %w", delegateID, ErrNotFound)
	}
	if err := r.requireWorkshops(ctx, workshopIDs); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, id := range workshopIDs {
		if seen[id] {
			return fmt.Errorf("registration for workshop %s: %w", id, ErrConflict)
		}
		seen[id] = true
	}
	r.registered[delegateID] = append([]string{}, workshopIDs...)
	r.syncLocked(ctx)
	return nil
}

func dedupe(ids []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (r *MemoryRegistrationRepo) CreateFacilitator(ctx context.Context, p *domain.FacilitatorProfile) (string, error) {
	if p == nil || p.User.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.facilitators[p.User.UserID]; ok {
		return "", fmt.Errorf("facilitator for user %s: %w", p.User.UserID, ErrConflict)
	}
	if err := r.requireWorkshops(ctx, p.WorkshopIDs); err != nil {
		return "", err
	}
	if err := r.saveUserLocked(p.User); err != nil {
		return "", err
	}
	f := p.Facilitator
	f.FacilitatorID = uuid.NewString()
	f.UserID = p.User.UserID
	r.facilitators[f.UserID] = f
	r.links[f.FacilitatorID] = dedupe(p.WorkshopIDs)
	r.syncLocked(ctx)
	return f.FacilitatorID, nil
}

func (r *MemoryRegistrationRepo) GetFacilitatorByUser(_ context.Context, userID string) (*domain.FacilitatorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.facilitators[userID]
	if !ok {
		return nil, fmt.Errorf("facilitator for user %s: %w", userID, ErrNotFound)
	}
	return &domain.FacilitatorProfile{
		User:        r.users[userID],
		Facilitator: f,
		WorkshopIDs: append([]string{}, r.links[f.FacilitatorID]...),
	}, nil
}

func (r *MemoryRegistrationRepo) UpdateFacilitator(ctx context.Context, p *domain.FacilitatorProfile) error {
	if p == nil || p.Facilitator.FacilitatorID == "" {
		return fmt.Errorf("facilitator_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing domain.Facilitator
	found := false
	for _, f := range r.facilitators {
		if f.FacilitatorID == p.Facilitator.FacilitatorID {
			existing, found = f, true
			break
		}
	}
	if !found {
		return fmt.Errorf("facilitator %s: %w", p.Facilitator.FacilitatorID, ErrNotFound)
	}
	if p.WorkshopIDs != nil {
		if err := r.requireWorkshops(ctx, p.WorkshopIDs); err != nil {
			return err
		}
	}
	u := p.User
	u.UserID = existing.UserID
	if err := r.saveUserLocked(u); err != nil {
		return err
	}
	f := p.Facilitator
	f.UserID = existing.UserID
	r.facilitators[existing.UserID] = f
	if p.WorkshopIDs != nil {
		r.links[f.FacilitatorID] = dedupe(p.WorkshopIDs)
		r.syncLocked(ctx)
	}
	return nil
}

func (r *MemoryRegistrationRepo) DeleteUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	delete(r.users, userID)
	if d, ok := r.delegates[userID]; ok {
		delete(r.registered, d.DelegateID)
		delete(r.delegates, userID)
	}
	if f, ok := r.facilitators[userID]; ok {
		delete(r.links, f.FacilitatorID)
		delete(r.facilitators, userID)
	}
	r.syncLocked(ctx)
	return nil
}

func (r *MemoryRegistrationRepo) ListFacilitatorRegistrations(context.Context) ([]*domain.FacilitatorRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.FacilitatorRegistration, 0, len(r.facRegs))
	for _, fr := range r.facRegs {
		fr := fr
		out = append(out, &fr)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FacilitatorName < out[j].FacilitatorName })
	return out, nil
}

func (r *MemoryRegistrationRepo) CreateFacilitatorRegistration(ctx context.Context, reg *domain.FacilitatorRegistration) (string, error) {
	if reg == nil {
		return "", errors.New("facilitator registration is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireWorkshops(ctx, []string{reg.WorkshopID}); err != nil {
		return "", err
	}
	c := *reg
	c.RegistrationID = uuid.NewString()
	r.facRegs = append(r.facRegs, c)
	r.syncLocked(ctx)
	return c.RegistrationID, nil
}
