package notifiedset

import (
	"context"
	"remindbot/internal/core/domain/calendar"
	e "remindbot/internal/core/domain/errors"
	"time"

	"github.com/go-redis/redis/v9"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DEFAULT_SIZE = 4096
	DEFAULT_TTL  = 24 * time.Hour
)

// Memory remembers announced event IDs for the lifetime of the process.
// The oldest IDs are evicted once the size is reached.
type Memory struct {
	cache *lru.Cache[calendar.EventID, time.Time]
	now   func() time.Time
}

func NewMemory(size int, now func() time.Time) *Memory {
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if size <= 0 {
		size = DEFAULT_SIZE
	}
	cache, err := lru.New[calendar.EventID, time.Time](size)
	if err != nil {
		panic(err)
	}
	return &Memory{cache: cache, now: now}
}

func (m *Memory) Contains(ctx context.Context, id calendar.EventID) (bool, error) {
	return m.cache.Contains(id), nil
}

func (m *Memory) Add(ctx context.Context, id calendar.EventID) error {
	m.cache.Add(id, m.now())
	return nil
}

// Redis keeps markers with a TTL so that announcements survive restarts and
// are shared between scheduler replicas.
type Redis struct {
	redisClient redis.UniversalClient
	ttl         time.Duration
}

func NewRedis(redisClient redis.UniversalClient, ttl time.Duration) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	if ttl <= 0 {
		ttl = DEFAULT_TTL
	}
	return &Redis{redisClient: redisClient, ttl: ttl}
}

func key(id calendar.EventID) string {
	return "notified_event::" + string(id)
}

func (r *Redis) Contains(ctx context.Context, id calendar.EventID) (bool, error) {
	n, err := r.redisClient.Exists(ctx, key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Add(ctx context.Context, id calendar.EventID) error {
	return r.redisClient.SetNX(ctx, key(id), 1, r.ttl).Err()
}
