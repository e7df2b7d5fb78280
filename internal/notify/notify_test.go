package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fact-registration/internal/config"
	"fact-registration/internal/redisx"
)

func sampleMessage() *Message {
	return &Message{
		Subject: "Workshop locations assigned",
		Body:    "session 1: 4 assigned",
		To:      []string{"ops@example.org"},
		Attachments: []Attachment{{
			Name:        "workshop_locations.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        []byte("PK\x03\x04 fake workbook"),
		}},
		Kind:    "location_assignment",
		Payload: map[string]int{"assigned": 4},
	}
}

type funcNotifier func(ctx context.Context, msg *Message) error

func (f funcNotifier) Notify(ctx context.Context, msg *Message) error { return f(ctx, msg) }

func TestMulti_ContinuesPastFailures(t *testing.T) {
	var calls int
	ok := funcNotifier(func(context.Context, *Message) error { calls++; return nil })
	bad := funcNotifier(func(context.Context, *Message) error { calls++; return errors.New("down") })

	m := NewMulti(zap.NewNop(), bad, nil, ok)
	assert.Equal(t, 2, m.Len())

	err := m.Notify(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 2, calls)
}

func TestSMTPNotifier_BuildsMultipart(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "mail.local", Port: 2525, From: "fact@example.org"})
	n.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	var gotAddr string
	var gotTo []string
	var raw []byte
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, raw = addr, to, msg
		assert.Nil(t, a)
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), sampleMessage()))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, []string{"ops@example.org"}, gotTo)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	first, err := mr.NextPart()
	require.NoError(t, err)
	body, _ := io.ReadAll(first)
	assert.Equal(t, "session 1: 4 assigned", string(body))

	second, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "workshop_locations.xlsx", second.FileName())
	assert.Equal(t, "base64", second.Header.Get("Content-Transfer-Encoding"))
}

func TestSMTPNotifier_NoRecipients(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "mail.local", Port: 25})
	msg := sampleMessage()
	msg.To = nil
	assert.Error(t, n.Notify(context.Background(), msg))
}

func TestStreamNotifier_Publishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewStreamNotifier(client, "fact:admin-reports")
	require.NoError(t, n.Notify(context.Background(), sampleMessage()))

	msgs, err := redisx.ReadLatest(context.Background(), client, "fact:admin-reports", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "location_assignment", msgs[0].Values["kind"])

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &env))
	assert.Equal(t, []string{"workshop_locations.xlsx"}, env.Attachments)
}

type recordingPublisher struct {
	topic   string
	payload []byte
}

func (p *recordingPublisher) Publish(topic string, _ byte, _ bool, payload []byte) error {
	p.topic, p.payload = topic, payload
	return nil
}

func TestMQTTNotifier_Publishes(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewMQTTNotifier(pub, "fact/admin/reports", 1)

	require.NoError(t, n.Notify(context.Background(), sampleMessage()))
	assert.Equal(t, "fact/admin/reports", pub.topic)
	assert.Contains(t, string(pub.payload), `"kind":"location_assignment"`)
}

func TestWebhookNotifier(t *testing.T) {
	var got envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	require.NoError(t, n.Notify(context.Background(), sampleMessage()))
	assert.Equal(t, "Workshop locations assigned", got.Subject)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Notify(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
