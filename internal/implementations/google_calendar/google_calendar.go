package googlecalendar

import (
	"context"
	"errors"
	"fmt"
	"remindbot/internal/core/domain/calendar"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/reminder"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	DEFAULT_TIMEOUT = 10 * time.Second
	dateLayout      = "2006-01-02"
)

var errFound = errors.New("event found")

// GoogleCalendar is a calendar.Provider backed by one Google calendar.
// Recurring events are expanded into single occurrences.
type GoogleCalendar struct {
	service    *gcal.Service
	calendarID string
	timeout    time.Duration
}

// NewService creates the API client. Options override the credentials, tests
// use them to point the client to a local server.
func NewService(ctx context.Context, credentialsFile string, options ...option.ClientOption) (*gcal.Service, error) {
	if credentialsFile != "" {
		options = append([]option.ClientOption{option.WithCredentialsFile(credentialsFile)}, options...)
	}
	return gcal.NewService(ctx, options...)
}

func New(service *gcal.Service, calendarID string, timeout time.Duration) *GoogleCalendar {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	if calendarID == "" {
		panic(e.NewInvalidStateError("calendar ID must be set"))
	}
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &GoogleCalendar{service: service, calendarID: calendarID, timeout: timeout}
}

func (g *GoogleCalendar) ListEvents(ctx context.Context, options calendar.ListOptions) ([]calendar.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	events := make([]calendar.Event, 0)
	err := g.list(options).Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			event, err := convertEvent(item)
			if err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, e.Kind(calendar.ErrCalendarFailure, err)
	}
	return events, nil
}

func (g *GoogleCalendar) FindEventBySummary(
	ctx context.Context,
	summary string,
	options calendar.ListOptions,
) (event calendar.Event, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err = g.list(options).Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item.Summary != summary {
				continue
			}
			converted, err := convertEvent(item)
			if err != nil {
				return err
			}
			event, found = converted, true
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return calendar.Event{}, false, e.Kind(calendar.ErrCalendarFailure, err)
	}
	return event, found, nil
}

func (g *GoogleCalendar) InsertEvent(ctx context.Context, event calendar.NewEvent) (calendar.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	created, err := g.service.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       eventDateTime(event.Start),
		End:         eventDateTime(event.End),
	}).Context(ctx).Do()
	if err != nil {
		return calendar.Event{}, e.Kind(calendar.ErrCalendarFailure, err)
	}

	converted, err := convertEvent(created)
	if err != nil {
		return calendar.Event{}, e.Kind(calendar.ErrCalendarFailure, err)
	}
	return converted, nil
}

func (g *GoogleCalendar) list(options calendar.ListOptions) *gcal.EventsListCall {
	return g.service.Events.List(g.calendarID).
		TimeMin(options.TimeMin.Format(time.RFC3339)).
		TimeMax(options.TimeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)
}

func eventDateTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: t.In(reminder.Location).Format(time.RFC3339),
	}
}

func convertEvent(item *gcal.Event) (calendar.Event, error) {
	start, allDay, err := parseEventDateTime(item.Start)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("invalid start of event %s: %w", item.Id, err)
	}
	end, _, err := parseEventDateTime(item.End)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("invalid end of event %s: %w", item.Id, err)
	}
	return calendar.Event{
		ID:          calendar.EventID(item.Id),
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		AllDay:      allDay,
	}, nil
}

// All-day dates carry no zone, they start at midnight of the display zone.
func parseEventDateTime(value *gcal.EventDateTime) (t time.Time, allDay bool, err error) {
	if value == nil {
		return t, false, errors.New("missing date")
	}
	if value.DateTime != "" {
		t, err = time.Parse(time.RFC3339, value.DateTime)
		return t.UTC(), false, err
	}
	t, err = time.ParseInLocation(dateLayout, value.Date, reminder.Location)
	return t.UTC(), true, err
}
