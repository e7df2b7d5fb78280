package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamMessage is one entry read back from a stream.
type StreamMessage struct {
	Stream string
	ID     string
	Values map[string]interface{}
}

// PublishToStream XADDs values, stringifying scalars and JSON-encoding everything else.
func PublishToStream(ctx context.Context, client *redis.Client, stream string, values map[string]interface{}) (string, error) {
	streamValues := make(map[string]interface{}, len(values))
	for k, v := range values {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case []byte:
			s = string(val)
		case int:
			s = fmt.Sprintf("%d", val)
		case int64:
			s = fmt.Sprintf("%d", val)
		case bool:
			if val {
				s = "true"
			} else {
				s = "false"
			}
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			s = string(b)
		}
		streamValues[k] = s
	}

	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: streamValues,
	}).Result()
}

// PublishJSONToStream publishes data under a "data" field together with a unix timestamp.
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream string, kind string, data interface{}) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return PublishToStream(ctx, client, stream, map[string]interface{}{
		"kind":      kind,
		"data":      string(b),
		"timestamp": time.Now().Unix(),
	})
}

// ReadLatest returns the newest count entries of stream, oldest first.
func ReadLatest(ctx context.Context, client *redis.Client, stream string, count int64) ([]StreamMessage, error) {
	msgs, err := client.XRevRangeN(ctx, stream, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}
	out := make([]StreamMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = StreamMessage{Stream: stream, ID: m.ID, Values: m.Values}
	}
	return out, nil
}
