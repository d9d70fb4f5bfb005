package watchupcomingevents

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
	"time"
)

const TASK = "watch_upcoming_events"

type Input struct{}

type Result struct {
	Upcoming        int
	Notified        int
	AlreadyNotified int
	Failed          int
}

type service struct {
	log       logging.Logger
	provider  calendar.Provider
	sender    chat.Sender
	notified  calendar.NotifiedSet
	observer  metrics.Observer
	channelID chat.ChannelID
	horizon   time.Duration
	now       func() time.Time
}

func New(
	log logging.Logger,
	provider calendar.Provider,
	sender chat.Sender,
	notified calendar.NotifiedSet,
	observer metrics.Observer,
	channelID chat.ChannelID,
	horizon time.Duration,
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
	if notified == nil {
		panic(e.NewNilArgumentError("notified"))
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
	if horizon <= 0 {
		panic("horizon must be positive")
	}
	return &service{
		log:       log,
		provider:  provider,
		sender:    sender,
		notified:  notified,
		observer:  observer,
		channelID: channelID,
		horizon:   horizon,
		now:       now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	until := now.Add(s.horizon)
	events, err := s.provider.ListEvents(ctx, calendar.ListOptions{TimeMin: now, TimeMax: until})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("now", now))
		return result, e.Kind(calendar.ErrCalendarFailure, err)
	}

	for _, event := range events {
		// Ongoing and all-day events overlap the window without starting in it.
		if !event.StartsWithin(now, until) {
			continue
		}
		result.Upcoming++

		seen, err := s.notified.Contains(ctx, event.ID)
		if err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("eventID", event.ID))
			result.Failed++
			s.observer.ObserveNotification(TASK, metrics.OutcomeFailed)
			continue
		}
		if seen {
			result.AlreadyNotified++
			s.observer.ObserveNotification(TASK, metrics.OutcomeSkipped)
			continue
		}

		err = s.sender.SendMessage(ctx, chat.Message{ChannelID: s.channelID, Text: FormatUpcoming(event)})
		if err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("eventID", event.ID))
			result.Failed++
			s.observer.ObserveNotification(TASK, metrics.OutcomeFailed)
			continue
		}
		if err := s.notified.Add(ctx, event.ID); err != nil {
			s.log.Error(
				ctx,
				"Upcoming event notified but not remembered, it may be notified again.",
				logging.Entry("eventID", event.ID),
				logging.Entry("err", err),
			)
		}
		result.Notified++
		s.observer.ObserveNotification(TASK, metrics.OutcomeSent)
	}

	if result.Notified > 0 || result.Failed > 0 {
		s.log.Info(
			ctx,
			"Upcoming events processed.",
			logging.Entry("upcoming", result.Upcoming),
			logging.Entry("notified", result.Notified),
			logging.Entry("failed", result.Failed),
		)
	}
	return result, nil
}

func FormatUpcoming(event calendar.Event) string {
	summary := event.Summary
	if summary == "" {
		summary = "(no title)"
	}
	return fmt.Sprintf("🔔 Starting soon: %s\nAt %s", summary, reminder.FormatTime(event.Start))
}
