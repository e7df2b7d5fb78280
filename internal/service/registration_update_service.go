package service

import (
	"context"
	"fmt"

	"fact-registration/internal/domain"
	"fact-registration/internal/export"
	"fact-registration/internal/notify"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// DelegateWorkbookName attachment name of the registration update workbook.
const DelegateWorkbookName = "delegate_data.xlsx"

// RegistrationUpdateService admin spreadsheets and the registration update mail.
type RegistrationUpdateService struct {
	workshops  repository.WorkshopsRepository
	locations  repository.LocationsRepository
	delegates  repository.DelegatesRepository
	notifier   notify.Notifier
	recipients []string
	eventName  string
	logger     *zap.Logger
}

func NewRegistrationUpdateService(
	workshops repository.WorkshopsRepository,
	locations repository.LocationsRepository,
	delegates repository.DelegatesRepository,
	notifier notify.Notifier,
	recipients []string,
	eventName string,
	logger *zap.Logger,
) *RegistrationUpdateService {
	return &RegistrationUpdateService{
		workshops:  workshops,
		locations:  locations,
		delegates:  delegates,
		notifier:   notifier,
		recipients: recipients,
		eventName:  eventName,
		logger:     logger,
	}
}

// LocationSheet every workshop with its session and "building room".
func (s *RegistrationUpdateService) LocationSheet(ctx context.Context, caller domain.Caller) ([]byte, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	ws, err := s.workshops.ListWorkshops(ctx, repository.WorkshopsFilter{})
	if err != nil {
		return nil, err
	}
	locs, err := s.locations.ListLocations(ctx, repository.LocationsFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Location, len(locs))
	for _, l := range locs {
		byID[l.LocationID] = l
	}

	rows := make([]export.LocationSheetRow, 0, len(ws))
	for _, w := range ws {
		row := export.LocationSheetRow{Title: w.Title, Session: w.Session}
		if w.LocationID.Valid {
			row.Location = byID[w.LocationID.String]
		}
		rows = append(rows, row)
	}
	return export.LocationSheet(rows)
}

// DelegateSheet the delegate roster with each delegate's workshop per session.
func (s *RegistrationUpdateService) DelegateSheet(ctx context.Context, caller domain.Caller) ([]byte, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	roster, err := s.delegates.ListDelegateRoster(ctx)
	if err != nil {
		return nil, err
	}
	return export.DelegateSheet(roster)
}

// SendUpdate mails the delegate sheet to the admin recipients.
func (s *RegistrationUpdateService) SendUpdate(ctx context.Context, caller domain.Caller) error {
	wb, err := s.DelegateSheet(ctx, caller)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return fmt.Errorf("no notification channel configured")
	}
	err = s.notifier.Notify(ctx, &notify.Message{
		Subject: s.eventName + " Automated Registration Update",
		Body:    "Registration spreadsheet attached",
		To:      s.recipients,
		Attachments: []notify.Attachment{{
			Name:        DelegateWorkbookName,
			ContentType: export.ContentType,
			Data:        wb,
		}},
		Kind: "registration_update",
	})
	if err != nil {
		return fmt.Errorf("failed to send registration update: %w", err)
	}
	s.logger.Info("registration update sent", zap.Strings("recipients", s.recipients), zap.Int("bytes", len(wb)))
	return nil
}
