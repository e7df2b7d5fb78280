package service

import (
	"context"
	"time"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"
)

// summaryWindow how far back registration timestamps are listed
const summaryWindow = 5 * 24 * time.Hour

// SummaryService admin dashboard numbers
type SummaryService struct {
	repo repository.DelegatesRepository
	now  func() time.Time
}

func NewSummaryService(repo repository.DelegatesRepository) *SummaryService {
	return &SummaryService{repo: repo, now: time.Now}
}

func (s *SummaryService) Summary(ctx context.Context, caller domain.Caller) (*domain.EventSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.repo.Summary(ctx, s.now().Add(-summaryWindow))
}
