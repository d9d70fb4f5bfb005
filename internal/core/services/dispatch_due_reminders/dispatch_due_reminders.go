package dispatchduereminders

import (
	"context"
	"errors"
	"fmt"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	"time"
)

const (
	TASK       = "dispatch_due_reminders"
	BATCH_SIZE = 100
)

type Input struct{}

type Result struct {
	Due     int
	Sent    int
	Skipped int
	Failed  int
}

type service struct {
	log                logging.Logger
	reminderRepository reminder.Repository
	channelResolver    chat.ChannelResolver
	sender             chat.Sender
	observer           metrics.Observer
	now                func() time.Time
}

// New creates one dispatching cycle. Delivery is at-least-once: a reminder is
// marked only after its message was sent, so a failed mark may lead to a
// repeated message on a later cycle.
func New(
	log logging.Logger,
	reminderRepository reminder.Repository,
	channelResolver chat.ChannelResolver,
	sender chat.Sender,
	observer metrics.Observer,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	if channelResolver == nil {
		panic(e.NewNilArgumentError("channelResolver"))
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
	return &service{
		log:                log,
		reminderRepository: reminderRepository,
		channelResolver:    channelResolver,
		sender:             sender,
		observer:           observer,
		now:                now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	due, err := s.reminderRepository.Read(ctx, reminder.ReadOptions{
		IsReminded:       c.Present(false),
		RemindAtNotAfter: c.Present(now),
		Limit:            c.Present[uint](BATCH_SIZE),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("now", now))
		return result, e.Kind(reminder.ErrStoreFailure, err)
	}
	result.Due = len(due)

	for _, rem := range due {
		switch err := s.dispatch(ctx, rem); {
		case err == nil:
			result.Sent++
			s.observer.ObserveNotification(TASK, metrics.OutcomeSent)
		case errors.Is(err, chat.ErrChannelNotFound):
			result.Skipped++
			s.observer.ObserveNotification(TASK, metrics.OutcomeSkipped)
		default:
			result.Failed++
			s.observer.ObserveNotification(TASK, metrics.OutcomeFailed)
		}
	}

	if result.Due > 0 {
		s.log.Info(
			ctx,
			"Due reminders dispatched.",
			logging.Entry("due", result.Due),
			logging.Entry("sent", result.Sent),
			logging.Entry("skipped", result.Skipped),
			logging.Entry("failed", result.Failed),
		)
	}
	return result, nil
}

func (s *service) dispatch(ctx context.Context, rem reminder.Reminder) error {
	if _, err := s.channelResolver.GetChannel(ctx, rem.ChannelID); err != nil {
		s.log.Warning(
			ctx,
			"Could not resolve reminder channel, reminder stays pending.",
			logging.Entry("reminderID", rem.ID),
			logging.Entry("channelID", rem.ChannelID),
			logging.Entry("err", err),
		)
		return err
	}

	err := s.sender.SendMessage(ctx, chat.Message{
		ChannelID: rem.ChannelID,
		Text:      FormatReminder(rem),
		Mention:   c.Present(rem.UserID),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("reminderID", rem.ID))
		return err
	}

	if _, err := s.reminderRepository.MarkReminded(ctx, rem.ID, s.now()); err != nil {
		s.log.Error(
			ctx,
			"Reminder sent but could not be marked, it may be sent again.",
			logging.Entry("reminderID", rem.ID),
			logging.Entry("err", err),
		)
	}
	return nil
}

func FormatReminder(rem reminder.Reminder) string {
	return fmt.Sprintf("⏰ Reminder: %s\nAt %s", rem.Title, reminder.FormatTime(rem.ExecuteAt))
}
