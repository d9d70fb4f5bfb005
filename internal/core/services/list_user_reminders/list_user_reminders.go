package listuserreminders

import (
	"context"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
)

type Input struct {
	UserID chat.UserID
}

type Result struct {
	Reminders []reminder.Reminder
}

type service struct {
	log                logging.Logger
	reminderRepository reminder.Repository
}

func New(
	log logging.Logger,
	reminderRepository reminder.Repository,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	return &service{
		log:                log,
		reminderRepository: reminderRepository,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	reminders, err := s.reminderRepository.Read(ctx, reminder.ReadOptions{
		UserIDEquals: c.Present(input.UserID),
		IsReminded:   c.Present(false),
		OrderBy:      reminder.OrderByRemindAtAsc,
		Limit:        c.Present[uint](reminder.DEFAULT_LIST_LIMIT),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, e.Kind(reminder.ErrStoreFailure, err)
	}

	s.log.Info(
		ctx,
		"User reminders successfully read.",
		logging.Entry("userID", input.UserID),
		logging.Entry("count", len(reminders)),
	)
	result.Reminders = reminders
	return result, nil
}
