package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"fact-registration/internal/domain"
	"fact-registration/internal/notify"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// DelegateService delegate sign-up, profile and per-session workshop registration.
// The caller's gateway user id owns the profile.
type DelegateService struct {
	registrations repository.RegistrationRepository
	workshops     repository.WorkshopsRepository
	locations     repository.LocationsRepository
	mailer        notify.Notifier
	eventName     string
	logger        *zap.Logger
}

func NewDelegateService(
	registrations repository.RegistrationRepository,
	workshops repository.WorkshopsRepository,
	locations repository.LocationsRepository,
	mailer notify.Notifier,
	eventName string,
	logger *zap.Logger,
) *DelegateService {
	return &DelegateService{
		registrations: registrations,
		workshops:     workshops,
		locations:     locations,
		mailer:        mailer,
		eventName:     eventName,
		logger:        logger,
	}
}

// DelegateItem API shape of a delegate profile
type DelegateItem struct {
	DelegateID      string    `json:"delegate_id"`
	UserID          string    `json:"user_id"`
	FirstName       string    `json:"f_name"`
	LastName        string    `json:"l_name"`
	Email           string    `json:"email"`
	Pronouns        string    `json:"pronouns"`
	Year            string    `json:"year"`
	SchoolID        *string   `json:"school_id"`
	OtherSchoolName string    `json:"other_school_name"`
	DateCreated     time.Time `json:"date_created"`
	WorkshopIDs     []string  `json:"workshop_ids"`
}

func toDelegateItem(p *domain.DelegateProfile) *DelegateItem {
	item := &DelegateItem{
		DelegateID:      p.Delegate.DelegateID,
		UserID:          p.User.UserID,
		FirstName:       p.User.FirstName,
		LastName:        p.User.LastName,
		Email:           p.User.Email,
		Pronouns:        p.Delegate.Pronouns,
		Year:            p.Delegate.Year,
		OtherSchoolName: p.Delegate.OtherSchool,
		DateCreated:     p.Delegate.DateCreated,
		WorkshopIDs:     p.WorkshopIDs,
	}
	if item.WorkshopIDs == nil {
		item.WorkshopIDs = []string{}
	}
	if p.Delegate.SchoolID.Valid {
		id := p.Delegate.SchoolID.String
		item.SchoolID = &id
	}
	return item
}

// DelegateRequest create body; on update nil or blank fields keep their value
type DelegateRequest struct {
	FirstName       *string `json:"f_name"`
	LastName        *string `json:"l_name"`
	Email           *string `json:"email"`
	Pronouns        *string `json:"pronouns"`
	Year            *string `json:"year"`
	SchoolID        *string `json:"school_id"`
	OtherSchoolName *string `json:"other_school_name"`
}

// WorkshopSelection one workshop per session
type WorkshopSelection struct {
	Workshop1ID string `json:"workshop_1_id"`
	Workshop2ID string `json:"workshop_2_id"`
	Workshop3ID string `json:"workshop_3_id"`
}

func (s WorkshopSelection) ids() []string {
	return []string{
		strings.TrimSpace(s.Workshop1ID),
		strings.TrimSpace(s.Workshop2ID),
		strings.TrimSpace(s.Workshop3ID),
	}
}

func setTrimmed(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = strings.TrimSpace(*src)
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateUser(u domain.User) error {
	if u.FirstName == "" {
		return invalid("first name must be at least one character")
	}
	if u.LastName == "" {
		return invalid("last name must be at least one character")
	}
	if !validEmail(u.Email) {
		return invalid("invalid email")
	}
	return nil
}

// applySchool picks a listed school by id, falling back to the free-text name
// when the id is blank or unknown.
func (s *DelegateService) applySchool(ctx context.Context, d *domain.Delegate, req DelegateRequest) error {
	other := ""
	if req.OtherSchoolName != nil {
		other = strings.TrimSpace(*req.OtherSchoolName)
	}
	if req.SchoolID != nil && strings.TrimSpace(*req.SchoolID) != "" {
		id := strings.TrimSpace(*req.SchoolID)
		_, err := s.registrations.GetSchool(ctx, id)
		switch {
		case err == nil:
			d.SchoolID = sql.NullString{String: id, Valid: true}
			d.OtherSchool = ""
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		case other == "":
			return invalid("school %s does not exist", id)
		}
	}
	if other != "" {
		d.SchoolID = sql.NullString{}
		d.OtherSchool = other
	}
	return nil
}

// CreateDelegate creates the caller's delegate profile. Workshops are chosen separately.
func (s *DelegateService) CreateDelegate(ctx context.Context, caller domain.Caller, req DelegateRequest) (*DelegateItem, error) {
	userID, err := requireUser(caller)
	if err != nil {
		return nil, err
	}
	p := &domain.DelegateProfile{User: domain.User{UserID: userID}}
	setTrimmed(&p.User.FirstName, req.FirstName)
	setTrimmed(&p.User.LastName, req.LastName)
	setTrimmed(&p.User.Email, req.Email)
	setTrimmed(&p.Delegate.Pronouns, req.Pronouns)
	setTrimmed(&p.Delegate.Year, req.Year)
	if err := validateUser(p.User); err != nil {
		return nil, err
	}
	if err := s.applySchool(ctx, &p.Delegate, req); err != nil {
		return nil, err
	}

	id, err := s.registrations.CreateDelegate(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("delegate created", zap.String("delegate_id", id), zap.String("user_id", userID))
	return s.GetMyDelegate(ctx, caller)
}

func (s *DelegateService) myProfile(ctx context.Context, caller domain.Caller) (*domain.DelegateProfile, error) {
	userID, err := requireUser(caller)
	if err != nil {
		return nil, err
	}
	p, err := s.registrations.GetDelegateByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("no delegate for this user: %w", ErrNotSignedIn)
		}
		return nil, err
	}
	return p, nil
}

func (s *DelegateService) GetMyDelegate(ctx context.Context, caller domain.Caller) (*DelegateItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	return toDelegateItem(p), nil
}

// UpdateMyDelegate partial update of the caller's profile. Registrations are untouched.
func (s *DelegateService) UpdateMyDelegate(ctx context.Context, caller domain.Caller, req DelegateRequest) (*DelegateItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	setTrimmed(&p.User.FirstName, req.FirstName)
	setTrimmed(&p.User.LastName, req.LastName)
	setTrimmed(&p.User.Email, req.Email)
	setTrimmed(&p.Delegate.Pronouns, req.Pronouns)
	setTrimmed(&p.Delegate.Year, req.Year)
	if err := validateUser(p.User); err != nil {
		return nil, err
	}
	if err := s.applySchool(ctx, &p.Delegate, req); err != nil {
		return nil, err
	}
	if err := s.registrations.UpdateDelegate(ctx, p); err != nil {
		return nil, err
	}
	return s.GetMyDelegate(ctx, caller)
}

// RegisterWorkshops replaces the caller's registrations with one workshop per session
// and mails a confirmation. A workshop whose room is already full is refused.
func (s *DelegateService) RegisterWorkshops(ctx context.Context, caller domain.Caller, sel WorkshopSelection) (*DelegateItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	ids := sel.ids()
	for _, id := range ids {
		if id == "" {
			return nil, invalid("must register for all three sessions")
		}
	}

	current := make(map[string]bool, len(p.WorkshopIDs))
	for _, id := range p.WorkshopIDs {
		current[id] = true
	}

	chosen := make([]*domain.WorkshopDemand, 0, len(ids))
	sessions := map[int]bool{}
	for _, id := range ids {
		d, err := s.workshops.GetWorkshopDemand(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("requested workshop %s: %w", id, ErrNotFound)
			}
			return nil, err
		}
		if sessions[d.Session] {
			return nil, invalid("can not register for multiple workshops in a single session")
		}
		sessions[d.Session] = true
		if err := s.checkCapacity(ctx, d, current[id]); err != nil {
			return nil, err
		}
		chosen = append(chosen, d)
	}
	sort.Slice(chosen, func(i, j int) bool { return chosen[i].Session < chosen[j].Session })

	ordered := make([]string, len(chosen))
	for i, d := range chosen {
		ordered[i] = d.WorkshopID
	}
	if err := s.registrations.ReplaceRegistrations(ctx, p.Delegate.DelegateID, ordered); err != nil {
		return nil, err
	}
	s.logger.Info("delegate registered",
		zap.String("delegate_id", p.Delegate.DelegateID), zap.Strings("workshop_ids", ordered))

	s.sendConfirmation(ctx, p.User, chosen)
	return s.GetMyDelegate(ctx, caller)
}

// checkCapacity refuses a workshop whose assigned room is full. The delegate's own
// seat does not count against them. Workshops without a room are not limited yet.
func (s *DelegateService) checkCapacity(ctx context.Context, d *domain.WorkshopDemand, alreadyRegistered bool) error {
	if !d.LocationID.Valid {
		return nil
	}
	loc, err := s.locations.GetLocation(ctx, d.LocationID.String)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	taken := d.RegistrationCount
	if alreadyRegistered {
		taken--
	}
	if taken >= loc.Capacity {
		return fmt.Errorf("%s is full: %w", d.Title, ErrConflict)
	}
	return nil
}

func (s *DelegateService) sendConfirmation(ctx context.Context, u domain.User, chosen []*domain.WorkshopDemand) {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for registering for %s!\n\nYou have registered for the following workshops\n\n", s.eventName)
	for _, d := range chosen {
		fmt.Fprintf(&b, "Session %d: %s\n", d.Session, d.Title)
	}
	msg := &notify.Message{
		Subject: fmt.Sprintf("%s Registration Confirmation - %s %s", s.eventName, u.FirstName, u.LastName),
		Body:    b.String(),
		To:      []string{u.Email},
		Kind:    "registration_confirmation",
	}
	if err := s.mailer.Notify(ctx, msg); err != nil {
		s.logger.Warn("failed to send registration confirmation", zap.String("user_id", u.UserID), zap.Error(err))
	}
}

// DeleteMyDelegate removes the caller's user row; the delegate and registrations go with it.
func (s *DelegateService) DeleteMyDelegate(ctx context.Context, caller domain.Caller) (*DelegateItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.registrations.DeleteUser(ctx, p.User.UserID); err != nil {
		return nil, err
	}
	s.logger.Info("delegate deleted", zap.String("delegate_id", p.Delegate.DelegateID))
	return toDelegateItem(p), nil
}

// SchoolService the public school list for the sign-up form.
type SchoolService struct {
	registrations repository.RegistrationRepository
}

func NewSchoolService(registrations repository.RegistrationRepository) *SchoolService {
	return &SchoolService{registrations: registrations}
}

func (s *SchoolService) ListSchools(ctx context.Context) ([]*domain.School, error) {
	return s.registrations.ListSchools(ctx)
}
