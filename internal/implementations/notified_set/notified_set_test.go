package notifiedset

import (
	"context"
	"remindbot/internal/core/domain/calendar"
	"remindbot/internal/redistest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func now() time.Time {
	return time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
}

func TestMemory(t *testing.T) {
	// Setup ---
	set := NewMemory(2, now)
	ctx := context.Background()

	// Exercise ---
	require.Nil(t, set.Add(ctx, "a"))
	require.Nil(t, set.Add(ctx, "b"))
	containsA, _ := set.Contains(ctx, "a")
	require.Nil(t, set.Add(ctx, "c"))

	// Verify ---
	assert := require.New(t)
	assert.True(containsA)
	for id, expected := range map[calendar.EventID]bool{"a": false, "b": true, "c": true, "d": false} {
		ok, err := set.Contains(ctx, id)
		assert.Nil(err)
		assert.Equal(expected, ok, id)
	}
}

func TestMemoryDefaultSize(t *testing.T) {
	set := NewMemory(0, now)

	require.Equal(t, 0, set.cache.Len())
	for ix := 0; ix < DEFAULT_SIZE+10; ix++ {
		set.Add(context.Background(), calendar.EventID(time.Duration(ix).String()))
	}
	require.Equal(t, DEFAULT_SIZE, set.cache.Len())
}

func TestRedis(t *testing.T) {
	// Setup ---
	client := redistest.CreateTestClient(t)
	set := NewRedis(client, time.Hour)
	ctx := context.Background()

	// Exercise ---
	before, err := set.Contains(ctx, "event-1")
	require.Nil(t, err)
	require.Nil(t, set.Add(ctx, "event-1"))
	require.Nil(t, set.Add(ctx, "event-1"))
	after, err := set.Contains(ctx, "event-1")
	require.Nil(t, err)

	// Verify ---
	assert := require.New(t)
	assert.False(before)
	assert.True(after)
	ttl, err := client.TTL(ctx, "notified_event::event-1").Result()
	assert.Nil(err)
	assert.Greater(ttl, time.Duration(0))
	assert.LessOrEqual(ttl, time.Hour)
}
