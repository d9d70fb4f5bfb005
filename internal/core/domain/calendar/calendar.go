package calendar

import (
	"context"
	"errors"
	"time"
)

type EventID string

type Event struct {
	ID          EventID
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	// AllDay events start at midnight of their date in the display zone.
	AllDay bool
}

type NewEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

type ListOptions struct {
	TimeMin time.Time
	TimeMax time.Time
}

var (
	ErrCalendarFailure = errors.New("calendar provider failure")
)

// Provider lists events expanded into single occurrences ordered by start.
type Provider interface {
	ListEvents(ctx context.Context, options ListOptions) ([]Event, error)
	FindEventBySummary(ctx context.Context, summary string, options ListOptions) (Event, bool, error)
	InsertEvent(ctx context.Context, event NewEvent) (Event, error)
}

// NotifiedSet remembers events an upcoming notification was delivered for.
type NotifiedSet interface {
	Contains(ctx context.Context, id EventID) (bool, error)
	Add(ctx context.Context, id EventID) error
}

// FindBySummary returns the first event whose summary equals the given one exactly.
func FindBySummary(events []Event, summary string) (Event, bool) {
	for _, event := range events {
		if event.Summary == summary {
			return event, true
		}
	}
	return Event{}, false
}

// StartsWithin reports whether the event start lies in [from, to].
func (e Event) StartsWithin(from time.Time, to time.Time) bool {
	return !e.Start.Before(from) && !e.Start.After(to)
}
