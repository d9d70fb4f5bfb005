package addcalendarentry

import (
	"context"
	"fmt"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/domain/remindlog"
	"remindbot/internal/core/services"
	synccalendarevent "remindbot/internal/core/services/sync_calendar_event"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type Input struct {
	UserID    chat.UserID
	UserName  string
	ChannelID chat.ChannelID
	Text      string
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.Text, validation.Required, validation.RuneLength(0, reminder.MAX_TEXT_LEN)),
	)
}

func (i Input) GetRateLimitKey() string {
	return "add_calendar_entry::" + string(i.UserID)
}

type Result struct {
	Entry        remindlog.Entry
	IsTimed      bool
	CalendarSync synccalendarevent.Result
}

type service struct {
	log           logging.Logger
	logRepository remindlog.Repository
	sync          services.Service[synccalendarevent.Input, synccalendarevent.Result]
	now           func() time.Time
}

// New creates the calendar-only flow: the request is logged and mirrored into
// the calendar without creating a reminder.
func New(
	log logging.Logger,
	logRepository remindlog.Repository,
	sync services.Service[synccalendarevent.Input, synccalendarevent.Result],
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if logRepository == nil {
		panic(e.NewNilArgumentError("logRepository"))
	}
	if sync == nil {
		panic(e.NewNilArgumentError("sync"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, logRepository: logRepository, sync: sync, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if err := input.Validate(); err != nil {
		return result, err
	}

	// Text that does not match the schedule format becomes an untimed title.
	title := strings.TrimSpace(input.Text)
	var startAt c.Optional[time.Time]
	if schedule, ok := reminder.ParseSchedule(input.Text); ok {
		title = schedule.Title
		startAt = c.Present(schedule.ExecuteAt)
	}

	entry, err := s.logRepository.Create(ctx, remindlog.CreateInput{
		UserID:    input.UserID,
		UserName:  input.UserName,
		Text:      input.Text,
		Title:     title,
		StartAt:   startAt,
		CreatedAt: s.now(),
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, e.Kind(remindlog.ErrStoreFailure, err)
	}
	result.Entry = entry
	result.IsTimed = startAt.IsPresent

	synced, err := s.sync.Run(ctx, synccalendarevent.Input{
		Title:       title,
		Description: fmt.Sprintf("Created from chat by %s\nOriginal text: %s", displayName(input), input.Text),
		StartAt:     startAt,
	})
	if err != nil {
		return result, err
	}
	result.CalendarSync = synced

	s.log.Info(
		ctx,
		"Calendar entry processed.",
		logging.Entry("entryID", entry.ID),
		logging.Entry("outcome", synced.Outcome.String()),
	)
	return result, nil
}

func displayName(input Input) string {
	if input.UserName != "" {
		return input.UserName
	}
	return string(input.UserID)
}
