package senddailyagenda

import (
	"context"
	"fmt"
	"remindbot/internal/core/domain/calendar"
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	"strings"
	"time"
)

const TASK = "send_daily_agenda"

type Input struct{}

type Result struct {
	EventCount int
}

type service struct {
	log       logging.Logger
	provider  calendar.Provider
	sender    chat.Sender
	observer  metrics.Observer
	channelID chat.ChannelID
	now       func() time.Time
}

func New(
	log logging.Logger,
	provider calendar.Provider,
	sender chat.Sender,
	observer metrics.Observer,
	channelID chat.ChannelID,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if provider == nil {
		panic(e.NewNilArgumentError("provider"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if observer == nil {
		panic(e.NewNilArgumentError("observer"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if channelID == "" {
		panic("channelID must not be empty")
	}
	return &service{
		log:       log,
		provider:  provider,
		sender:    sender,
		observer:  observer,
		channelID: channelID,
		now:       now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	from, to := DayWindow(s.now())
	events, err := s.provider.ListEvents(ctx, calendar.ListOptions{TimeMin: from, TimeMax: to})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("from", from))
		return result, e.Kind(calendar.ErrCalendarFailure, err)
	}

	err = s.sender.SendMessage(ctx, chat.Message{ChannelID: s.channelID, Text: FormatAgenda(from, events)})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("eventCount", len(events)))
		s.observer.ObserveNotification(TASK, metrics.OutcomeFailed)
		return result, err
	}
	s.observer.ObserveNotification(TASK, metrics.OutcomeSent)

	s.log.Info(ctx, "Daily agenda sent.", logging.Entry("eventCount", len(events)))
	result.EventCount = len(events)
	return result, nil
}

// DayWindow returns the first and the last second of the local day t falls in.
func DayWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(reminder.Location)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, reminder.Location)
	return from, from.Add(24*time.Hour - time.Second)
}

func FormatAgenda(day time.Time, events []calendar.Event) string {
	if len(events) == 0 {
		return "📅 No events today."
	}
	local := day.In(reminder.Location)
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Today's schedule (%d/%d)", int(local.Month()), local.Day())
	for _, event := range events {
		at := "All day"
		if !event.AllDay {
			at = event.Start.In(reminder.Location).Format("15:04")
		}
		summary := event.Summary
		if summary == "" {
			summary = "(no title)"
		}
		fmt.Fprintf(&b, "\n• %s - %s", at, summary)
	}
	return b.String()
}
