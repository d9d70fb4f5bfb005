package synccalendarevent

import (
	"context"
	"remindbot/internal/core/domain/calendar"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/services"
	"time"
)

const (
	LOOK_BEHIND         = 30 * 24 * time.Hour
	LOOK_AHEAD          = 365 * 24 * time.Hour
	DEFAULT_START_DELAY = 5 * time.Minute
	EVENT_DURATION      = 30 * time.Minute
)

type Outcome struct {
	v string
}

var (
	Created = Outcome{v: "created"}
	Skipped = Outcome{v: "skipped"}
)

func (o Outcome) String() string {
	return o.v
}

type Input struct {
	Title       string
	Description string
	// StartAt defaults to a few minutes from now when absent.
	StartAt c.Optional[time.Time]
}

type Result struct {
	Outcome Outcome
	Event   calendar.Event
}

type service struct {
	log      logging.Logger
	provider calendar.Provider
	now      func() time.Time
}

// New creates the guard that inserts a calendar event unless one with the same
// title already exists around now. Title equality is the only duplicate key.
func New(
	log logging.Logger,
	provider calendar.Provider,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if provider == nil {
		panic(e.NewNilArgumentError("provider"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, provider: provider, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	existing, found, err := s.provider.FindEventBySummary(
		ctx,
		input.Title,
		calendar.ListOptions{TimeMin: now.Add(-LOOK_BEHIND), TimeMax: now.Add(LOOK_AHEAD)},
	)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("title", input.Title))
		return result, e.Kind(calendar.ErrCalendarFailure, err)
	}
	if found {
		s.log.Info(
			ctx,
			"Calendar event with the same title exists, skip inserting.",
			logging.Entry("title", input.Title),
			logging.Entry("eventID", existing.ID),
		)
		return Result{Outcome: Skipped, Event: existing}, nil
	}

	start := input.StartAt.ValueOr(now.Add(DEFAULT_START_DELAY))
	created, err := s.provider.InsertEvent(ctx, calendar.NewEvent{
		Summary:     input.Title,
		Description: input.Description,
		Start:       start,
		End:         start.Add(EVENT_DURATION),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("title", input.Title))
		return result, e.Kind(calendar.ErrCalendarFailure, err)
	}

	s.log.Info(
		ctx,
		"Calendar event successfully created.",
		logging.Entry("eventID", created.ID),
		logging.Entry("start", created.Start),
	)
	return Result{Outcome: Created, Event: created}, nil
}
