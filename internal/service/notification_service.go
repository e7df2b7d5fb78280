package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

const (
	minNotificationLen = 10
	maxNotificationLen = 180
)

// NotificationService admin banner messages
type NotificationService struct {
	repo   repository.NotificationsRepository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewNotificationService loc is used for expirations sent without a zone.
func NewNotificationService(repo repository.NotificationsRepository, loc *time.Location, logger *zap.Logger) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// CreateNotificationRequest create body; expiration is an ISO 8601 timestamp
type CreateNotificationRequest struct {
	Message    string `json:"message"`
	Expiration string `json:"expiration"`
}

func (s *NotificationService) CreateNotification(ctx context.Context, caller domain.Caller, req CreateNotificationRequest) (*domain.Notification, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	msg := strings.TrimSpace(req.Message)
	if n := utf8.RuneCountInString(msg); n < minNotificationLen || n > maxNotificationLen {
		return nil, invalid("enter a valid message (%d to %d characters)", minNotificationLen, maxNotificationLen)
	}
	if strings.TrimSpace(req.Expiration) == "" {
		return nil, invalid("please provide expiration date/time")
	}
	exp, err := parseTimestamp(req.Expiration, s.loc)
	if err != nil {
		return nil, invalid("expiration could not be converted to valid date/time")
	}

	n := &domain.Notification{Message: msg, Expiration: exp}
	id, err := s.repo.CreateNotification(ctx, n)
	if err != nil {
		return nil, err
	}
	n.NotificationID = id
	s.logger.Info("notification created", zap.String("notification_id", id), zap.Time("expiration", exp))
	return n, nil
}

// ListNotifications unexpired notifications, soonest expiring first.
func (s *NotificationService) ListNotifications(ctx context.Context) ([]*domain.Notification, error) {
	return s.repo.ListActive(ctx, s.now())
}

var localTimestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTimestamp accepts RFC 3339, or a zone-less timestamp read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localTimestampLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
