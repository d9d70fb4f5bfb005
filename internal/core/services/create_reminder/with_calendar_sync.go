package createreminder

import (
	"context"
	"fmt"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/services"
	synccalendarevent "remindbot/internal/core/services/sync_calendar_event"
)

type serviceWithCalendarSync struct {
	log   logging.Logger
	sync  services.Service[synccalendarevent.Input, synccalendarevent.Result]
	inner services.Service[Input, Result]
}

// NewWithCalendarSync mirrors every created reminder into the calendar.
// A calendar failure does not undo the created reminder: the result still
// carries it and the returned error wraps calendar.ErrCalendarFailure.
func NewWithCalendarSync(
	log logging.Logger,
	sync services.Service[synccalendarevent.Input, synccalendarevent.Result],
	inner services.Service[Input, Result],
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sync == nil {
		panic(e.NewNilArgumentError("sync"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithCalendarSync{log: log, sync: sync, inner: inner}
}

func (s *serviceWithCalendarSync) Run(ctx context.Context, input Input) (result Result, err error) {
	result, err = s.inner.Run(ctx, input)
	if err != nil {
		return result, err
	}

	synced, err := s.sync.Run(ctx, synccalendarevent.Input{
		Title:       result.Reminder.Title,
		Description: fmt.Sprintf("Created from chat by %s\nOriginal text: %s", input.UserID, input.Text),
		StartAt:     c.Present(result.Reminder.ExecuteAt),
	})
	if err != nil {
		s.log.Warning(
			ctx,
			"Reminder created but calendar sync failed.",
			logging.Entry("reminderID", result.Reminder.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	result.CalendarSync = c.Present(synced)
	return result, nil
}
