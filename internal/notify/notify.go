// Package notify delivers admin reports (assignment runs, registration updates)
// over mail, Redis streams, MQTT and webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Attachment a file carried by a Message. Only mail sends the bytes; other
// channels see the name.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message one report. Kind and Payload are the machine-readable form used by
// stream, MQTT and webhook channels.
type Message struct {
	Subject     string
	Body        string
	To          []string
	Attachments []Attachment
	Kind        string
	Payload     any
}

// Notifier delivers a Message on one channel.
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}

// Multi fans a message out to every channel. A failing channel does not stop the others.
type Multi struct {
	notifiers []Notifier
	logger    *zap.Logger
}

func NewMulti(logger *zap.Logger, notifiers ...Notifier) *Multi {
	out := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{notifiers: out, logger: logger}
}

// Len is the number of configured channels.
func (m *Multi) Len() int { return len(m.notifiers) }

func (m *Multi) Notify(ctx context.Context, msg *Message) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			m.logger.Warn("notification channel failed",
				zap.String("channel", fmt.Sprintf("%T", n)),
				zap.String("kind", msg.Kind),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// attachmentNames is what non-mail channels report instead of file contents.
func attachmentNames(msg *Message) []string {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Name)
	}
	return names
}

// envelope is the JSON shape published on stream, MQTT and webhook channels.
type envelope struct {
	Kind        string   `json:"kind"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
	Payload     any      `json:"payload,omitempty"`
}

func newEnvelope(msg *Message) envelope {
	return envelope{
		Kind:        msg.Kind,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Attachments: attachmentNames(msg),
		Payload:     msg.Payload,
	}
}
