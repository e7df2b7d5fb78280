package service

import (
	"bytes"
	"context"
	"database/sql"
	"sync"

	"fact-registration/internal/domain"
	"fact-registration/internal/notify"
)

var (
	admin    = domain.Caller{UserID: "u-admin", Role: domain.AdminRole}
	delegate = domain.Caller{UserID: "u-1", Role: "Delegate"}
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*notify.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg *notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func (n *recordingNotifier) last() *notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) == 0 {
		return nil
	}
	return n.msgs[len(n.msgs)-1]
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func sqlNull(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

var domainLocation = domain.Location{Building: "Union", RoomNum: "A", Capacity: 40, Session: 1}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }

// wrongCode returns a six-digit code different from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
