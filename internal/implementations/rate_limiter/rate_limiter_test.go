package ratelimiter

import (
	"context"
	"remindbot/internal/core/domain/logging"
	ratelimiter "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/redistest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	// Setup ---
	client := redistest.CreateTestClient(t)
	now := time.Date(2025, 12, 1, 10, 15, 0, 0, time.UTC)
	limiter := NewRedis(client, logging.NewFakeLogger(), func() time.Time { return now })
	limit := ratelimiter.Limit{Value: 3, Interval: ratelimiter.Minute}

	// Exercise ---
	results := make([]bool, 0, 4)
	for ix := 0; ix < 4; ix++ {
		results = append(results, limiter.CheckLimit(context.Background(), "create_reminder::42", limit).IsAllowed)
	}
	other := limiter.CheckLimit(context.Background(), "create_reminder::43", limit)
	now = now.Add(time.Minute)
	nextWindow := limiter.CheckLimit(context.Background(), "create_reminder::42", limit)

	// Verify ---
	assert := require.New(t)
	assert.Equal([]bool{true, true, true, false}, results)
	assert.True(other.IsAllowed)
	assert.True(nextWindow.IsAllowed)

	ttl, err := client.TTL(context.Background(), "rate_limit::create_reminder::42::m15").Result()
	assert.Nil(err)
	assert.LessOrEqual(ttl, time.Minute)
}
