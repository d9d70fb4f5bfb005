package chat

import (
	"context"
	"sync"
)

type FakeSender struct {
	Sent []Message
	// Errors are returned by consecutive SendMessage calls, nil entries succeed.
	Errors    []error
	SendError error
	calls     int
	lock      sync.Mutex
}

func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

func (s *FakeSender) SendMessage(ctx context.Context, m Message) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	call := s.calls
	s.calls++
	if call < len(s.Errors) && s.Errors[call] != nil {
		return s.Errors[call]
	}
	if s.SendError != nil {
		return s.SendError
	}
	s.Sent = append(s.Sent, m)
	return nil
}

func (s *FakeSender) Calls() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls
}

type FakeChannelResolver struct {
	Channels map[ChannelID]Channel
	Error    error
	lock     sync.Mutex
}

func NewFakeChannelResolver(ids ...ChannelID) *FakeChannelResolver {
	channels := make(map[ChannelID]Channel, len(ids))
	for _, id := range ids {
		channels[id] = Channel{ID: id, Title: string(id)}
	}
	return &FakeChannelResolver{Channels: channels}
}

func (r *FakeChannelResolver) GetChannel(ctx context.Context, id ChannelID) (Channel, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Error != nil {
		return Channel{}, r.Error
	}
	ch, ok := r.Channels[id]
	if !ok {
		return Channel{}, ErrChannelNotFound
	}
	return ch, nil
}
