package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fact-registration/internal/domain"
	"fact-registration/internal/export"
	"fact-registration/internal/repository"

	"go.uber.org/zap"
)

// AgendaService event agenda
type AgendaService struct {
	repo   repository.AgendaRepository
	loc    *time.Location
	logger *zap.Logger
}

// NewAgendaService loc is the event time zone used for uploads and zone-less times.
func NewAgendaService(repo repository.AgendaRepository, loc *time.Location, logger *zap.Logger) *AgendaService {
	if loc == nil {
		loc = time.UTC
	}
	return &AgendaService{repo: repo, loc: loc, logger: logger}
}

// AgendaItemDTO API shape of an agenda item
type AgendaItemDTO struct {
	AgendaItemID string    `json:"agenda_item_id"`
	Title        string    `json:"title"`
	Building     string    `json:"building"`
	RoomNum      string    `json:"room_num"`
	SessionNum   *int      `json:"session_num"`
	Address      string    `json:"address"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

func toAgendaItemDTO(a *domain.AgendaItem) *AgendaItemDTO {
	dto := &AgendaItemDTO{
		AgendaItemID: a.AgendaItemID,
		Title:        a.Title,
		Building:     a.Building,
		RoomNum:      a.RoomNum,
		Address:      a.Address,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
	}
	if a.SessionNum.Valid {
		n := int(a.SessionNum.Int64)
		dto.SessionNum = &n
	}
	return dto
}

// CreateAgendaItemRequest create body
type CreateAgendaItemRequest struct {
	Title      string `json:"title"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Building   string `json:"building"`
	RoomNum    string `json:"room_num"`
	SessionNum *int   `json:"session_num"`
	Address    string `json:"address"`
}

func (s *AgendaService) ListAgendaItems(ctx context.Context) ([]*AgendaItemDTO, error) {
	items, err := s.repo.ListAgendaItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*AgendaItemDTO, 0, len(items))
	for _, a := range items {
		out = append(out, toAgendaItemDTO(a))
	}
	return out, nil
}

func (s *AgendaService) CreateAgendaItem(ctx context.Context, caller domain.Caller, req CreateAgendaItemRequest) (*AgendaItemDTO, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.StartTime) == "" || strings.TrimSpace(req.EndTime) == "" {
		return nil, invalid("must provide title, start time, and end time")
	}
	start, err := parseTimestamp(req.StartTime, s.loc)
	if err != nil {
		return nil, invalid("invalid start_time")
	}
	end, err := parseTimestamp(req.EndTime, s.loc)
	if err != nil {
		return nil, invalid("invalid end_time")
	}
	if start.After(end) {
		return nil, invalid("end time can not be before start time")
	}

	item := &domain.AgendaItem{
		Title:     title,
		Building:  req.Building,
		RoomNum:   req.RoomNum,
		Address:   req.Address,
		StartTime: start,
		EndTime:   end,
	}
	// out-of-range sessions are dropped, not rejected
	if req.SessionNum != nil && domain.ValidSession(*req.SessionNum) {
		item.SessionNum = sql.NullInt64{Int64: int64(*req.SessionNum), Valid: true}
	}

	id, err := s.repo.CreateAgendaItem(ctx, item)
	if err != nil {
		return nil, err
	}
	item.AgendaItemID = id
	return toAgendaItemDTO(item), nil
}

func (s *AgendaService) DeleteAgendaItem(ctx context.Context, caller domain.Caller, agendaItemID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.repo.DeleteAgendaItem(ctx, agendaItemID)
}

// BulkUpload replaces an empty agenda with the rows of an .xlsx workbook.
func (s *AgendaService) BulkUpload(ctx context.Context, caller domain.Caller, workbook []byte) ([]*AgendaItemDTO, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	n, err := s.repo.CountAgendaItems(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("delete existing agenda items before attempting to upload: %w", ErrConflict)
	}
	if len(workbook) == 0 {
		return nil, invalid("must include file")
	}

	items, err := export.ParseAgenda(workbook, s.loc)
	if err != nil {
		if errors.Is(err, export.ErrAgendaFile) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return nil, err
	}
	if err := s.repo.BulkCreateAgendaItems(ctx, items); err != nil {
		return nil, err
	}
	s.logger.Info("agenda uploaded", zap.Int("items", len(items)), zap.String("user_id", caller.UserID))
	return s.ListAgendaItems(ctx)
}
