package redistest

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v9"
)

// CreateTestClient connects to TEST_REDIS_URL and flushes the database.
// The test is skipped when the variable is not set.
func CreateTestClient(t *testing.T) *redis.Client {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		client.Close()
		t.Fatalf("could not flush Redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
