package services

import (
	"remindbot/internal/app/deps"
	"remindbot/internal/core/domain/chat"
	drl "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/services"
	addcalendarentry "remindbot/internal/core/services/add_calendar_entry"
	createreminder "remindbot/internal/core/services/create_reminder"
	dispatchduereminders "remindbot/internal/core/services/dispatch_due_reminders"
	handlechatmessage "remindbot/internal/core/services/handle_chat_message"
	listuserreminders "remindbot/internal/core/services/list_user_reminders"
	ratelimiting "remindbot/internal/core/services/rate_limiting"
	senddailyagenda "remindbot/internal/core/services/send_daily_agenda"
	synccalendarevent "remindbot/internal/core/services/sync_calendar_event"
	watchupcomingevents "remindbot/internal/core/services/watch_upcoming_events"
)

type Services struct {
	SyncCalendarEvent services.Service[synccalendarevent.Input, synccalendarevent.Result]
	CreateReminder    services.Service[createreminder.Input, createreminder.Result]
	ListUserReminders services.Service[listuserreminders.Input, listuserreminders.Result]
	AddCalendarEntry  services.Service[addcalendarentry.Input, addcalendarentry.Result]
	HandleChatMessage services.Service[handlechatmessage.Input, handlechatmessage.Result]

	DispatchDueReminders services.Service[dispatchduereminders.Input, dispatchduereminders.Result]
	WatchUpcomingEvents  services.Service[watchupcomingevents.Input, watchupcomingevents.Result]
	SendDailyAgenda      services.Service[senddailyagenda.Input, senddailyagenda.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SyncCalendarEvent = synccalendarevent.New(
		deps.Logger,
		deps.Calendar,
		deps.Now,
	)
	s.CreateReminder = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: deps.Config.CreateRateLimitPerMinute},
		createreminder.NewWithCalendarSync(
			deps.Logger,
			s.SyncCalendarEvent,
			createreminder.New(
				deps.Logger,
				deps.ReminderRepository,
				deps.Now,
			),
		),
	)
	s.ListUserReminders = listuserreminders.New(
		deps.Logger,
		deps.ReminderRepository,
	)
	s.AddCalendarEntry = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: deps.Config.CreateRateLimitPerMinute},
		addcalendarentry.New(
			deps.Logger,
			deps.RemindLogRepository,
			s.SyncCalendarEvent,
			deps.Now,
		),
	)
	s.HandleChatMessage = handlechatmessage.New(
		deps.Logger,
		s.CreateReminder,
		s.ListUserReminders,
		s.AddCalendarEntry,
		deps.ConversationStore,
		deps.Config.AddSessionTTL,
	)

	notifyChannel := chat.ChannelID(deps.Config.NotifyChannelID)
	s.DispatchDueReminders = dispatchduereminders.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.ChannelResolver,
		deps.NotificationSender,
		deps.Observer,
		deps.Now,
	)
	s.WatchUpcomingEvents = watchupcomingevents.New(
		deps.Logger,
		deps.Calendar,
		deps.NotificationSender,
		deps.NotifiedSet,
		deps.Observer,
		notifyChannel,
		deps.Config.WatchHorizon,
		deps.Now,
	)
	s.SendDailyAgenda = senddailyagenda.New(
		deps.Logger,
		deps.Calendar,
		deps.NotificationSender,
		deps.Observer,
		notifyChannel,
		deps.Now,
	)

	return s
}
