package conversationstore

import (
	"context"
	"remindbot/internal/core/domain/conversation"
	"remindbot/internal/redistest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var key = conversation.Key{UserID: "42", ChannelID: "-100500"}

func TestMemoryTakeWithinTTL(t *testing.T) {
	// Setup ---
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemory(func() time.Time { return now })
	ctx := context.Background()
	require.Nil(t, store.Open(ctx, key, time.Minute))

	// Exercise ---
	now = now.Add(59 * time.Second)
	first, err := store.Take(ctx, key)
	require.Nil(t, err)
	second, err := store.Take(ctx, key)
	require.Nil(t, err)

	// Verify ---
	assert := require.New(t)
	assert.True(first)
	assert.False(second)
}

func TestMemoryExpired(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemory(func() time.Time { return now })
	ctx := context.Background()
	require.Nil(t, store.Open(ctx, key, time.Minute))

	now = now.Add(time.Minute)
	taken, err := store.Take(ctx, key)

	assert := require.New(t)
	assert.Nil(err)
	assert.False(taken)
}

func TestMemoryOpenDropsExpired(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemory(func() time.Time { return now })
	ctx := context.Background()
	require.Nil(t, store.Open(ctx, key, time.Minute))

	now = now.Add(2 * time.Minute)
	require.Nil(t, store.Open(ctx, conversation.Key{UserID: "43", ChannelID: "-100500"}, time.Minute))

	require.Len(t, store.sessions, 1)
}

func TestMemoryClose(t *testing.T) {
	store := NewMemory(time.Now)
	ctx := context.Background()
	require.Nil(t, store.Open(ctx, key, time.Minute))

	require.Nil(t, store.Close(ctx, key))
	taken, err := store.Take(ctx, key)

	require.Nil(t, err)
	require.False(t, taken)
}

func TestRedis(t *testing.T) {
	// Setup ---
	client := redistest.CreateTestClient(t)
	store := NewRedis(client)
	ctx := context.Background()

	// Exercise ---
	missing, err := store.Take(ctx, key)
	require.Nil(t, err)
	require.Nil(t, store.Open(ctx, key, time.Minute))
	ttl, err := client.TTL(ctx, "conversation::-100500::42").Result()
	require.Nil(t, err)
	first, err := store.Take(ctx, key)
	require.Nil(t, err)
	second, err := store.Take(ctx, key)
	require.Nil(t, err)

	require.Nil(t, store.Open(ctx, key, time.Minute))
	require.Nil(t, store.Close(ctx, key))
	afterClose, err := store.Take(ctx, key)
	require.Nil(t, err)

	// Verify ---
	assert := require.New(t)
	assert.False(missing)
	assert.True(first)
	assert.False(second)
	assert.False(afterClose)
	assert.Greater(ttl, time.Duration(0))
}
