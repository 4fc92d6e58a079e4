package feed

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtmate/backend/internal/domain/chat"
)

func TestRedisFeed_FanOutAcrossInstances(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping redis test: TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	left := NewRedisFeed(redis.NewClient(&redis.Options{Addr: addr}))
	defer left.Close()
	right := NewRedisFeed(redis.NewClient(&redis.Options{Addr: addr}))
	defer right.Close()

	sub, cancel, err := right.Subscribe(ctx, "room-redis")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, left.Publish(ctx, chat.Message{ID: "m1", RoomID: "room-redis", Content: "hello"}))

	got := receive(t, sub)
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "hello", got.Content)

	cancel()
	right.mu.Lock()
	_, held := right.subs["room-redis"]
	right.mu.Unlock()
	assert.False(t, held)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "courtmate:rooms:abc:messages", ChannelName("abc"))
}
