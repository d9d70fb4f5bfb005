package conversationstore

import (
	"context"
	"errors"
	"remindbot/internal/core/domain/conversation"
	e "remindbot/internal/core/domain/errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v9"
)

// Memory keeps sessions in the process. Expired sessions are dropped lazily.
type Memory struct {
	sessions map[conversation.Key]time.Time
	now      func() time.Time
	lock     sync.Mutex
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Memory{sessions: make(map[conversation.Key]time.Time), now: now}
}

func (m *Memory) Open(ctx context.Context, key conversation.Key, ttl time.Duration) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.now()
	for k, expiresAt := range m.sessions {
		if !now.Before(expiresAt) {
			delete(m.sessions, k)
		}
	}
	m.sessions[key] = now.Add(ttl)
	return nil
}

func (m *Memory) Take(ctx context.Context, key conversation.Key) (bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	expiresAt, ok := m.sessions[key]
	if !ok {
		return false, nil
	}
	delete(m.sessions, key)
	return m.now().Before(expiresAt), nil
}

func (m *Memory) Close(ctx context.Context, key conversation.Key) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.sessions, key)
	return nil
}

// Redis shares sessions between webhook replicas. Expiry is left to Redis.
type Redis struct {
	redisClient redis.UniversalClient
}

func NewRedis(redisClient redis.UniversalClient) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	return &Redis{redisClient: redisClient}
}

func redisKey(key conversation.Key) string {
	return "conversation::" + key.String()
}

func (r *Redis) Open(ctx context.Context, key conversation.Key, ttl time.Duration) error {
	return r.redisClient.Set(ctx, redisKey(key), "add", ttl).Err()
}

func (r *Redis) Take(ctx context.Context, key conversation.Key) (bool, error) {
	err := r.redisClient.GetDel(ctx, redisKey(key)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Close(ctx context.Context, key conversation.Key) error {
	return r.redisClient.Del(ctx, redisKey(key)).Err()
}
