package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FakeProvider keeps events in memory and filters them by start time.
type FakeProvider struct {
	ListError   error
	FindError   error
	InsertError error
	ListWith    []ListOptions
	FindWith    []ListOptions
	Inserted    []NewEvent
	events      []Event
	lastID      int
	lock        sync.Mutex
}

func NewFakeProvider(events ...Event) *FakeProvider {
	return &FakeProvider{events: events}
}

func (p *FakeProvider) ListEvents(ctx context.Context, options ListOptions) ([]Event, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ListWith = append(p.ListWith, options)
	if p.ListError != nil {
		return nil, p.ListError
	}
	return p.filter(options), nil
}

func (p *FakeProvider) FindEventBySummary(
	ctx context.Context,
	summary string,
	options ListOptions,
) (Event, bool, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.FindWith = append(p.FindWith, options)
	if p.FindError != nil {
		return Event{}, false, p.FindError
	}
	event, ok := FindBySummary(p.filter(options), summary)
	return event, ok, nil
}

func (p *FakeProvider) InsertEvent(ctx context.Context, event NewEvent) (Event, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.InsertError != nil {
		return Event{}, p.InsertError
	}
	p.lastID++
	created := Event{
		ID:          EventID(fmt.Sprintf("fake-event-%d", p.lastID)),
		Summary:     event.Summary,
		Description: event.Description,
		Start:       event.Start,
		End:         event.End,
	}
	p.Inserted = append(p.Inserted, event)
	p.events = append(p.events, created)
	return created, nil
}

// Events returns a snapshot of all stored events.
func (p *FakeProvider) Events() []Event {
	p.lock.Lock()
	defer p.lock.Unlock()
	events := make([]Event, len(p.events))
	copy(events, p.events)
	return events
}

func (p *FakeProvider) filter(options ListOptions) []Event {
	result := make([]Event, 0)
	for _, event := range p.events {
		if event.End.After(options.TimeMin) && event.Start.Before(options.TimeMax) {
			result = append(result, event)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}

type FakeNotifiedSet struct {
	ContainsError error
	AddError      error
	ids           map[EventID]struct{}
	lock          sync.Mutex
}

func NewFakeNotifiedSet(ids ...EventID) *FakeNotifiedSet {
	s := &FakeNotifiedSet{ids: make(map[EventID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *FakeNotifiedSet) Contains(ctx context.Context, id EventID) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.ContainsError != nil {
		return false, s.ContainsError
	}
	_, ok := s.ids[id]
	return ok, nil
}

func (s *FakeNotifiedSet) Add(ctx context.Context, id EventID) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.AddError != nil {
		return s.AddError
	}
	s.ids[id] = struct{}{}
	return nil
}

func (s *FakeNotifiedSet) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.ids)
}
