package notify

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"fact-registration/internal/redisx"
)

// StreamNotifier appends reports to a Redis stream for dashboards and audit.
type StreamNotifier struct {
	client *redis.Client
	stream string
}

func NewStreamNotifier(client *redis.Client, stream string) *StreamNotifier {
	return &StreamNotifier{client: client, stream: stream}
}

func (n *StreamNotifier) Notify(ctx context.Context, msg *Message) error {
	if _, err := redisx.PublishJSONToStream(ctx, n.client, n.stream, msg.Kind, newEnvelope(msg)); err != nil {
		return fmt.Errorf("stream %s: %w", n.stream, err)
	}
	return nil
}
