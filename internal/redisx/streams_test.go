package redisx

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	_, err := PublishJSONToStream(ctx, client, "fact:test", "location_assignment", map[string]any{"failed": []int{3}})
	require.NoError(t, err)

	msgs, err := ReadLatest(ctx, client, "fact:test", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "location_assignment", msgs[0].Values["kind"])

	var payload map[string][]int
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &payload))
	assert.Equal(t, []int{3}, payload["failed"])
}

func TestPublishToStream_Scalars(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	_, err := PublishToStream(ctx, client, "s", map[string]interface{}{"n": 3, "ok": true, "b": []byte("x")})
	require.NoError(t, err)

	msgs, err := ReadLatest(ctx, client, "s", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "3", msgs[0].Values["n"])
	assert.Equal(t, "true", msgs[0].Values["ok"])
	assert.Equal(t, "x", msgs[0].Values["b"])
}

func TestReadLatest_NewestWindowOldestFirst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := PublishToStream(ctx, client, "s", map[string]interface{}{"n": i})
		require.NoError(t, err)
	}

	msgs, err := ReadLatest(ctx, client, "s", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "2", msgs[0].Values["n"])
	assert.Equal(t, "3", msgs[1].Values["n"])
	assert.Equal(t, "4", msgs[2].Values["n"])
}
