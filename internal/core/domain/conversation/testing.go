package conversation

import (
	"context"
	"sync"
	"time"
)

type FakeStore struct {
	OpenError error
	TakeError error
	OpenWith  []time.Duration
	open      map[Key]struct{}
	lock      sync.Mutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{open: make(map[Key]struct{})}
}

func (s *FakeStore) Open(ctx context.Context, key Key, ttl time.Duration) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.OpenError != nil {
		return s.OpenError
	}
	s.OpenWith = append(s.OpenWith, ttl)
	s.open[key] = struct{}{}
	return nil
}

func (s *FakeStore) Take(ctx context.Context, key Key) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.TakeError != nil {
		return false, s.TakeError
	}
	_, ok := s.open[key]
	delete(s.open, key)
	return ok, nil
}

func (s *FakeStore) Close(ctx context.Context, key Key) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.open, key)
	return nil
}

// Expire drops the session as if its TTL elapsed.
func (s *FakeStore) Expire(key Key) {
	s.Close(context.Background(), key)
}

func (s *FakeStore) IsOpen(key Key) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.open[key]
	return ok
}
