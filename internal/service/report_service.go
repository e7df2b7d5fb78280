package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fact-registration/internal/domain"
	"fact-registration/internal/redisx"

	"github.com/go-redis/redis/v8"
)

// ReportService reads back the admin reports published to the Redis stream.
type ReportService struct {
	client *redis.Client
	stream string
}

func NewReportService(client *redis.Client, stream string) *ReportService {
	return &ReportService{client: client, stream: stream}
}

// ReportEntry one published report
type ReportEntry struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	PublishedAt time.Time       `json:"published_at"`
	Data        json.RawMessage `json:"data"`
}

// RecentReports returns the newest count reports (default 20), oldest first.
func (s *ReportService) RecentReports(ctx context.Context, caller domain.Caller, count int64) ([]ReportEntry, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = 20
	}
	msgs, err := redisx.ReadLatest(ctx, s.client, s.stream, count)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}
	out := make([]ReportEntry, 0, len(msgs))
	for _, m := range msgs {
		e := ReportEntry{ID: m.ID}
		e.Kind, _ = m.Values["kind"].(string)
		if ts, ok := m.Values["timestamp"].(string); ok {
			if sec, err := strconv.ParseInt(ts, 10, 64); err == nil {
				e.PublishedAt = time.Unix(sec, 0).UTC()
			}
		}
		if data, ok := m.Values["data"].(string); ok && json.Valid([]byte(data)) {
			e.Data = json.RawMessage(data)
		}
		out = append(out, e)
	}
	return out, nil
}
