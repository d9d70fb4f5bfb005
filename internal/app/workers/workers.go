package workers

import (
	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	"remindbot/internal/core/domain/reminder"
	dispatchduereminders "remindbot/internal/core/services/dispatch_due_reminders"
	senddailyagenda "remindbot/internal/core/services/send_daily_agenda"
	watchupcomingevents "remindbot/internal/core/services/watch_upcoming_events"
	"remindbot/internal/worker"
)

func InitWorkers(deps *deps.Deps, s *services.Services) ([]*worker.Worker, error) {
	definitions := []struct {
		config worker.Config
		task   worker.Task
	}{
		{
			config: worker.Config{Name: dispatchduereminders.TASK, Schedule: deps.Config.DispatchSchedule},
			task:   worker.FromService(s.DispatchDueReminders),
		},
		{
			config: worker.Config{Name: watchupcomingevents.TASK, Schedule: deps.Config.WatchSchedule},
			task:   worker.FromService(s.WatchUpcomingEvents),
		},
		{
			config: worker.Config{Name: senddailyagenda.TASK, Schedule: deps.Config.DailyAgendaSchedule},
			task:   worker.FromService(s.SendDailyAgenda),
		},
	}

	workers := make([]*worker.Worker, 0, len(definitions))
	for _, definition := range definitions {
		config := definition.config
		config.Timeout = deps.Config.CycleTimeout
		config.Location = reminder.Location

		w, err := worker.New(deps.Logger, deps.Observer, config, definition.task)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}
