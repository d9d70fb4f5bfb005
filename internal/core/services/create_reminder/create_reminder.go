package createreminder

import (
	"context"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	synccalendarevent "remindbot/internal/core/services/sync_calendar_event"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Input struct {
	UserID    chat.UserID
	ChannelID chat.ChannelID
	Text      string
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.ChannelID, validation.Required),
		validation.Field(&i.Text, validation.Required, validation.RuneLength(0, reminder.MAX_TEXT_LEN)),
	)
}

func (i Input) GetRateLimitKey() string {
	return "create_reminder::" + string(i.UserID)
}

type Result struct {
	Reminder     reminder.Reminder
	CalendarSync c.Optional[synccalendarevent.Result]
}

type service struct {
	log                logging.Logger
	reminderRepository reminder.Repository
	now                func() time.Time
}

func New(
	log logging.Logger,
	reminderRepository reminder.Repository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminderRepository == nil {
		panic(e.NewNilArgumentError("reminderRepository"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                log,
		reminderRepository: reminderRepository,
		now:                now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if err := input.Validate(); err != nil {
		return result, err
	}

	schedule, ok := reminder.ParseSchedule(input.Text)
	if !ok {
		s.log.Info(ctx, "Reminder text does not match the schedule format.", logging.Entry("input", input))
		return result, reminder.ErrScheduleNotMatched
	}
	if utf8.RuneCountInString(schedule.Title) > reminder.MAX_TITLE_LEN {
		return result, reminder.ErrTitleTooLong
	}

	// Without a trailing lead time the reminder fires at the execution time.
	remindBeforeMinutes := schedule.RemindBeforeMinutes.ValueOr(0)
	if remindBeforeMinutes > reminder.MAX_REMIND_BEFORE_MINUTES {
		s.log.Info(
			ctx,
			"Reminder lead time is too long.",
			logging.Entry("input", input),
			logging.Entry("remindBeforeMinutes", remindBeforeMinutes),
		)
		return result, reminder.ErrLeadTimeTooLong
	}

	rem := reminder.Reminder{
		UserID:              input.UserID,
		ChannelID:           input.ChannelID,
		Title:               schedule.Title,
		ExecuteAt:           schedule.ExecuteAt,
		RemindBeforeMinutes: remindBeforeMinutes,
		RemindAt:            reminder.RemindAt(schedule.ExecuteAt, remindBeforeMinutes),
	}
	if err := rem.Validate(); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}

	createdReminder, err := s.reminderRepository.Create(ctx, reminder.CreateInput{
		UserID:              rem.UserID,
		ChannelID:           rem.ChannelID,
		Title:               rem.Title,
		ExecuteAt:           rem.ExecuteAt,
		RemindBeforeMinutes: rem.RemindBeforeMinutes,
		RemindAt:            rem.RemindAt,
		CreatedAt:           s.now(),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, e.Kind(reminder.ErrStoreFailure, err)
	}

	s.log.Info(
		ctx,
		"Reminder successfully created.",
		logging.Entry("reminderID", createdReminder.ID),
		logging.Entry("remindAt", createdReminder.RemindAt),
	)
	result.Reminder = createdReminder
	return result, nil
}
