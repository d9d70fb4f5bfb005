package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalBucket(t *testing.T) {
	at := time.Date(2025, 1, 1, 13, 42, 0, 0, time.UTC)

	assert.Equal(t, "m42", Minute.Bucket(at))
	assert.Equal(t, "h13", Hour.Bucket(at))
	assert.Equal(t, time.Minute, Minute.Duration())
	assert.Equal(t, time.Hour, Hour.Duration())
}
