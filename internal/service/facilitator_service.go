package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// FacilitatorService facilitator sign-up and the workshops they lead. The links
// feed the facilitator-continuity step of the assignment run.
type FacilitatorService struct {
	registrations repository.RegistrationRepository
	workshops     repository.WorkshopsRepository
	logger        *zap.Logger
}

func NewFacilitatorService(registrations repository.RegistrationRepository, workshops repository.WorkshopsRepository, logger *zap.Logger) *FacilitatorService {
	return &FacilitatorService{registrations: registrations, workshops: workshops, logger: logger}
}

// FacilitatorItem API shape of a facilitator profile
type FacilitatorItem struct {
	FacilitatorID string   `json:"facilitator_id"`
	UserID        string   `json:"user_id"`
	FirstName     string   `json:"f_name"`
	LastName      string   `json:"l_name"`
	Email         string   `json:"email"`
	FaName        string   `json:"fa_name"`
	FaContact     string   `json:"fa_contact"`
	WorkshopIDs   []string `json:"workshops"`
}

func toFacilitatorItem(p *domain.FacilitatorProfile) *FacilitatorItem {
	item := &FacilitatorItem{
		FacilitatorID: p.Facilitator.FacilitatorID,
		UserID:        p.User.UserID,
		FirstName:     p.User.FirstName,
		LastName:      p.User.LastName,
		Email:         p.User.Email,
		FaName:        p.Facilitator.FaName,
		FaContact:     p.Facilitator.FaContact,
		WorkshopIDs:   p.WorkshopIDs,
	}
	if item.WorkshopIDs == nil {
		item.WorkshopIDs = []string{}
	}
	return item
}

// FacilitatorRequest create body; on update nil or blank fields keep their value
// and an empty workshops list keeps the current links.
type FacilitatorRequest struct {
	FirstName *string  `json:"f_name"`
	LastName  *string  `json:"l_name"`
	Email     *string  `json:"email"`
	FaName    *string  `json:"fa_name"`
	FaContact *string  `json:"fa_contact"`
	Workshops []string `json:"workshops"`
}

// workshopIDs trims, dedupes and checks that every workshop exists.
func (s *FacilitatorService) workshopIDs(ctx context.Context, in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.workshops.GetWorkshop(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("requested workshop %s: %w", id, ErrNotFound)
			}
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *FacilitatorService) CreateFacilitator(ctx context.Context, caller domain.Caller, req FacilitatorRequest) (*FacilitatorItem, error) {
	userID, err := requireUser(caller)
	if err != nil {
		return nil, err
	}
	p := &domain.FacilitatorProfile{User: domain.User{UserID: userID}}
	setTrimmed(&p.User.FirstName, req.FirstName)
	setTrimmed(&p.User.LastName, req.LastName)
	setTrimmed(&p.User.Email, req.Email)
	setTrimmed(&p.Facilitator.FaName, req.FaName)
	setTrimmed(&p.Facilitator.FaContact, req.FaContact)
	if err := validateUser(p.User); err != nil {
		return nil, err
	}
	if p.WorkshopIDs, err = s.workshopIDs(ctx, req.Workshops); err != nil {
		return nil, err
	}

	id, err := s.registrations.CreateFacilitator(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("facilitator created", zap.String("facilitator_id", id), zap.Int("workshops", len(p.WorkshopIDs)))
	return s.GetMyFacilitator(ctx, caller)
}

func (s *FacilitatorService) myProfile(ctx context.Context, caller domain.Caller) (*domain.FacilitatorProfile, error) {
	userID, err := requireUser(caller)
	if err != nil {
		return nil, err
	}
	p, err := s.registrations.GetFacilitatorByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("no facilitator for this user: %w", ErrNotSignedIn)
		}
		return nil, err
	}
	return p, nil
}

func (s *FacilitatorService) GetMyFacilitator(ctx context.Context, caller domain.Caller) (*FacilitatorItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	return toFacilitatorItem(p), nil
}

func (s *FacilitatorService) UpdateMyFacilitator(ctx context.Context, caller domain.Caller, req FacilitatorRequest) (*FacilitatorItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	setTrimmed(&p.User.FirstName, req.FirstName)
	setTrimmed(&p.User.LastName, req.LastName)
	setTrimmed(&p.User.Email, req.Email)
	setTrimmed(&p.Facilitator.FaName, req.FaName)
	setTrimmed(&p.Facilitator.FaContact, req.FaContact)
	if err := validateUser(p.User); err != nil {
		return nil, err
	}
	p.WorkshopIDs = nil
	if len(req.Workshops) > 0 {
		if p.WorkshopIDs, err = s.workshopIDs(ctx, req.Workshops); err != nil {
			return nil, err
		}
	}
	if err := s.registrations.UpdateFacilitator(ctx, p); err != nil {
		return nil, err
	}
	return s.GetMyFacilitator(ctx, caller)
}

func (s *FacilitatorService) DeleteMyFacilitator(ctx context.Context, caller domain.Caller) (*FacilitatorItem, error) {
	p, err := s.myProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.registrations.DeleteUser(ctx, p.User.UserID); err != nil {
		return nil, err
	}
	s.logger.Info("facilitator deleted", zap.String("facilitator_id", p.Facilitator.FacilitatorID))
	return toFacilitatorItem(p), nil
}

// FacilitatorRegistrationRequest admin body for a seat held on a facilitator's behalf
type FacilitatorRegistrationRequest struct {
	FacilitatorName string `json:"facilitator_name"`
	WorkshopID      string `json:"workshop_id"`
}

func (s *FacilitatorService) ListFacilitatorRegistrations(ctx context.Context, caller domain.Caller) ([]*domain.FacilitatorRegistration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.registrations.ListFacilitatorRegistrations(ctx)
}

// CreateFacilitatorRegistration adds one seat to the workshop's registration count.
func (s *FacilitatorService) CreateFacilitatorRegistration(ctx context.Context, caller domain.Caller, req FacilitatorRegistrationRequest) (*domain.FacilitatorRegistration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	reg := &domain.FacilitatorRegistration{
		FacilitatorName: strings.TrimSpace(req.FacilitatorName),
		WorkshopID:      strings.TrimSpace(req.WorkshopID),
	}
	if reg.FacilitatorName == "" {
		return nil, invalid("facilitator_name is required")
	}
	if reg.WorkshopID == "" {
		return nil, invalid("workshop_id is required")
	}
	if _, err := s.workshops.GetWorkshop(ctx, reg.WorkshopID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("requested workshop %s: %w", reg.WorkshopID, ErrNotFound)
		}
		return nil, err
	}
	id, err := s.registrations.CreateFacilitatorRegistration(ctx, reg)
	if err != nil {
		return nil, err
	}
	reg.RegistrationID = id
	s.logger.Info("facilitator registration created",
		zap.String("registration_id", id), zap.String("workshop_id", reg.WorkshopID))
	return reg, nil
}
