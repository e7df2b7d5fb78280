package service

import (
	"context"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// FlagService registration on/off switches
type FlagService struct {
	repo   repository.FlagsRepository
	logger *zap.Logger
}

func NewFlagService(repo repository.FlagsRepository, logger *zap.Logger) *FlagService {
	return &FlagService{repo: repo, logger: logger}
}

func (s *FlagService) ListFlags(ctx context.Context) ([]*domain.RegistrationFlag, error) {
	return s.repo.ListFlags(ctx)
}

func (s *FlagService) GetFlag(ctx context.Context, label string) (*domain.RegistrationFlag, error) {
	return s.repo.GetFlag(ctx, label)
}

// SetFlag value nil means the request carried no boolean.
func (s *FlagService) SetFlag(ctx context.Context, caller domain.Caller, label string, value *bool) (*domain.RegistrationFlag, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetFlag(ctx, label); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, invalid("must provide true/false value")
	}
	if err := s.repo.SetFlag(ctx, label, *value); err != nil {
		return nil, err
	}
	s.logger.Info("registration flag set", zap.String("label", label), zap.Bool("value", *value), zap.String("user_id", caller.UserID))
	return &domain.RegistrationFlag{Label: label, Value: *value}, nil
}
