package handlechatmessage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"remindbot/internal/core/domain/calendar"
	"remindbot/internal/core/domain/chat"
	"remindbot/internal/core/domain/conversation"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	ratelimiter "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/services"
	addcalendarentry "remindbot/internal/core/services/add_calendar_entry"
	createreminder "remindbot/internal/core/services/create_reminder"
	listuserreminders "remindbot/internal/core/services/list_user_reminders"
	synccalendarevent "remindbot/internal/core/services/sync_calendar_event"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const DEFAULT_SESSION_TTL = 60 * time.Second

const (
	REPLY_HELP = "Commands:\n" +
		"/remind YYYY/MM/DD HH:MM title [minutes] - create a reminder\n" +
		"/add - send the reminder text in the next message\n" +
		"/cancel - cancel a pending /add\n" +
		"/list - show your pending reminders\n" +
		"/calendar text - add an entry to the calendar\n" +
		"/help - show this message"
	REPLY_FORMAT_HINT = "Could not read the date. Use: YYYY/MM/DD HH:MM title [minutes before]\n" +
		"Example: 2025/12/25 18:00 Christmas party 60"
	REPLY_CANCELLED       = "Cancelled."
	REPLY_NO_REMINDERS    = "You have no pending reminders."
	REPLY_CALENDAR_USAGE  = "Usage: /calendar [YYYY/MM/DD HH:MM] title"
	REPLY_TITLE_TOO_LONG  = "The title is too long."
	REPLY_LEAD_TOO_LONG   = "The reminder can be at most one year before the event."
	REPLY_INVALID_INPUT   = "The message is empty or too long."
	REPLY_SLOW_DOWN       = "Too many requests, please slow down."
	REPLY_TRY_AGAIN       = "Something went wrong, please try again later."
	REPLY_CALENDAR_FAILED = "⚠️ Saved, but calendar sync failed."
	REPLY_CALENDAR_ADDED  = "📅 Added to the calendar."
	REPLY_CALENDAR_EXISTS = "📅 The calendar already has an event with this title."
	REPLY_CALENDAR_ERROR  = "⚠️ Calendar sync failed."
)

type Input struct {
	UserID    chat.UserID
	UserName  string
	ChannelID chat.ChannelID
	Text      string
}

type Result struct {
	Replies []string
}

func (r *Result) reply(text string) {
	r.Replies = append(r.Replies, text)
}

type service struct {
	log              logging.Logger
	createReminder   services.Service[createreminder.Input, createreminder.Result]
	listReminders    services.Service[listuserreminders.Input, listuserreminders.Result]
	addCalendarEntry services.Service[addcalendarentry.Input, addcalendarentry.Result]
	sessions         conversation.Store
	sessionTTL       time.Duration
}

func New(
	log logging.Logger,
	createReminder services.Service[createreminder.Input, createreminder.Result],
	listReminders services.Service[listuserreminders.Input, listuserreminders.Result],
	addCalendarEntry services.Service[addcalendarentry.Input, addcalendarentry.Result],
	sessions conversation.Store,
	sessionTTL time.Duration,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if createReminder == nil {
		panic(e.NewNilArgumentError("createReminder"))
	}
	if listReminders == nil {
		panic(e.NewNilArgumentError("listReminders"))
	}
	if addCalendarEntry == nil {
		panic(e.NewNilArgumentError("addCalendarEntry"))
	}
	if sessions == nil {
		panic(e.NewNilArgumentError("sessions"))
	}
	if sessionTTL <= 0 {
		sessionTTL = DEFAULT_SESSION_TTL
	}
	return &service{
		log:              log,
		createReminder:   createReminder,
		listReminders:    listReminders,
		addCalendarEntry: addCalendarEntry,
		sessions:         sessions,
		sessionTTL:       sessionTTL,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	key := conversation.Key{UserID: input.UserID, ChannelID: input.ChannelID}
	command, args, isCommand := ParseCommand(input.Text)

	if !isCommand {
		taken, err := s.sessions.Take(ctx, key)
		if err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("key", key.String()))
			result.reply(REPLY_TRY_AGAIN)
			return result, err
		}
		if !taken {
			// Plain chatter outside of an /add session.
			return result, nil
		}
		result, err = s.remind(ctx, input, input.Text)
		if isInputError(err) {
			result = s.reprompt(ctx, key, result)
		}
		return result, err
	}

	s.log.Info(
		ctx,
		"Got chat command.",
		logging.Entry("command", command),
		logging.Entry("userID", input.UserID),
		logging.Entry("channelID", input.ChannelID),
	)

	switch command {
	case "remind":
		if args == "" {
			result.reply(REPLY_FORMAT_HINT)
			return result, nil
		}
		return s.remind(ctx, input, args)
	case "add":
		if err := s.sessions.Open(ctx, key, s.sessionTTL); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("key", key.String()))
			result.reply(REPLY_TRY_AGAIN)
			return result, err
		}
		result.reply(FormatAddPrompt(s.sessionTTL))
		return result, nil
	case "cancel":
		if err := s.sessions.Close(ctx, key); err != nil {
			logging.Error(ctx, s.log, err, logging.Entry("key", key.String()))
			result.reply(REPLY_TRY_AGAIN)
			return result, err
		}
		result.reply(REPLY_CANCELLED)
		return result, nil
	case "list":
		return s.list(ctx, input)
	case "calendar":
		if args == "" {
			result.reply(REPLY_CALENDAR_USAGE)
			return result, nil
		}
		return s.calendar(ctx, input, args)
	default:
		result.reply(REPLY_HELP)
		return result, nil
	}
}

func (s *service) remind(ctx context.Context, input Input, text string) (result Result, err error) {
	created, err := s.createReminder.Run(ctx, createreminder.Input{
		UserID:    input.UserID,
		ChannelID: input.ChannelID,
		Text:      text,
	})
	switch {
	case err == nil:
		result.reply(FormatCreated(created.Reminder))
		if created.CalendarSync.IsPresent {
			result.reply(formatSync(created.CalendarSync.Value))
		}
		return result, nil
	case errors.Is(err, calendar.ErrCalendarFailure) && created.Reminder.ID != 0:
		result.reply(FormatCreated(created.Reminder))
		result.reply(REPLY_CALENDAR_FAILED)
		return result, err
	default:
		result.reply(replyForError(err))
		return result, err
	}
}

// reprompt keeps the /add session open after a message the user can fix.
func (s *service) reprompt(ctx context.Context, key conversation.Key, result Result) Result {
	if err := s.sessions.Open(ctx, key, s.sessionTTL); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("key", key.String()))
		return result
	}
	result.reply(FormatAddPrompt(s.sessionTTL))
	return result
}

func isInputError(err error) bool {
	return errors.Is(err, reminder.ErrScheduleNotMatched) ||
		errors.Is(err, reminder.ErrTitleTooLong) ||
		errors.Is(err, reminder.ErrLeadTimeTooLong)
}

func (s *service) list(ctx context.Context, input Input) (result Result, err error) {
	listed, err := s.listReminders.Run(ctx, listuserreminders.Input{UserID: input.UserID})
	if err != nil {
		result.reply(replyForError(err))
		return result, err
	}
	result.reply(FormatList(listed.Reminders))
	return result, nil
}

func (s *service) calendar(ctx context.Context, input Input, text string) (result Result, err error) {
	added, err := s.addCalendarEntry.Run(ctx, addcalendarentry.Input{
		UserID:    input.UserID,
		UserName:  input.UserName,
		ChannelID: input.ChannelID,
		Text:      text,
	})
	switch {
	case err == nil:
		result.reply(formatSync(added.CalendarSync))
		return result, nil
	case errors.Is(err, calendar.ErrCalendarFailure):
		result.reply(REPLY_CALENDAR_ERROR)
		return result, err
	default:
		result.reply(replyForError(err))
		return result, err
	}
}

// ParseCommand splits "/cmd@BotName args" into a lower-cased command and its
// trimmed arguments.
func ParseCommand(text string) (command string, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	if ix := strings.IndexAny(head, "\n\t"); ix >= 0 {
		rest = head[ix+1:] + " " + rest
		head = head[:ix]
	}
	head, _, _ = strings.Cut(strings.TrimPrefix(head, "/"), "@")
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func FormatAddPrompt(ttl time.Duration) string {
	return fmt.Sprintf(
		"Send the reminder within %s in the format: YYYY/MM/DD HH:MM title [minutes before]",
		formatTTL(ttl),
	)
}

func formatTTL(ttl time.Duration) string {
	if ttl >= 2*time.Minute && ttl%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(ttl/time.Minute))
	}
	seconds := int(math.Ceil(ttl.Seconds()))
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}

func FormatCreated(r reminder.Reminder) string {
	text := fmt.Sprintf("✅ Reminder saved: %s\nAt %s", r.Title, reminder.FormatTime(r.ExecuteAt))
	if r.RemindBeforeMinutes > 0 {
		text += fmt.Sprintf("\nI will remind you at %s", reminder.FormatTime(r.RemindAt))
	}
	return text
}

func FormatList(reminders []reminder.Reminder) string {
	if len(reminders) == 0 {
		return REPLY_NO_REMINDERS
	}
	var b strings.Builder
	b.WriteString("Your reminders:")
	for ix, r := range reminders {
		fmt.Fprintf(&b, "\n%d. %s — %s (%d)", ix+1, r.Title, reminder.FormatTime(r.RemindAt), r.ID)
	}
	return b.String()
}

func formatSync(r synccalendarevent.Result) string {
	if r.Outcome == synccalendarevent.Skipped {
		return REPLY_CALENDAR_EXISTS
	}
	return REPLY_CALENDAR_ADDED
}

func replyForError(err error) string {
	var validationErrors validation.Errors
	switch {
	case errors.Is(err, reminder.ErrScheduleNotMatched):
		return REPLY_FORMAT_HINT
	case errors.Is(err, reminder.ErrTitleTooLong):
		return REPLY_TITLE_TOO_LONG
	case errors.Is(err, reminder.ErrLeadTimeTooLong):
		return REPLY_LEAD_TOO_LONG
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		return REPLY_SLOW_DOWN
	case errors.As(err, &validationErrors):
		return REPLY_INVALID_INPUT
	default:
		return REPLY_TRY_AGAIN
	}
}
