package worker

import (
	"context"
	"fmt"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"remindbot/internal/core/services"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one cycle of a background job.
type Task func(ctx context.Context) error

// FromService adapts a service that takes no meaningful input into a Task.
func FromService[T any, S any](service services.Service[T, S]) Task {
	return func(ctx context.Context) error {
		var input T
		_, err := service.Run(ctx, input)
		return err
	}
}

type Config struct {
	Name     string
	Schedule string
	// Timeout bounds a single cycle.
	Timeout  time.Duration
	Location *time.Location
}

// Worker runs a Task on a cron schedule. A tick that fires while the previous
// cycle of the same worker is still running is skipped.
type Worker struct {
	log      logging.Logger
	observer metrics.Observer
	config   Config
	task     Task
	cron     *cron.Cron
	job      cron.Job

	lock     sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func New(log logging.Logger, observer metrics.Observer, config Config, task Task) (*Worker, error) {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if observer == nil {
		panic(e.NewNilArgumentError("observer"))
	}
	if task == nil {
		panic(e.NewNilArgumentError("task"))
	}
	if config.Location == nil {
		config.Location = time.UTC
	}

	schedule, err := parser.Parse(config.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q for worker %s: %w", config.Schedule, config.Name, err)
	}

	w := &Worker{
		log:      log,
		observer: observer,
		config:   config,
		task:     task,
		ctx:      context.Background(),
	}
	cronLog := &cronLogger{log: log, worker: config.Name}
	w.job = cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)).
		Then(cron.FuncJob(func() { w.Tick(w.baseContext()) }))
	w.cron = cron.New(cron.WithLocation(config.Location), cron.WithLogger(cronLog))
	w.cron.Schedule(schedule, w.job)
	return w, nil
}

func (w *Worker) Name() string {
	return w.config.Name
}

// Tick runs one cycle synchronously.
func (w *Worker) Tick(ctx context.Context) error {
	if w.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := w.task(ctx)
	duration := time.Since(start)
	w.observer.ObserveCycle(w.config.Name, duration, err)

	if err != nil {
		w.log.Error(
			ctx,
			"Worker cycle failed.",
			logging.Entry("worker", w.config.Name),
			logging.Entry("duration", duration),
			logging.Entry("err", err),
		)
		return err
	}
	w.log.Debug(
		ctx,
		"Worker cycle finished.",
		logging.Entry("worker", w.config.Name),
		logging.Entry("duration", duration),
	)
	return nil
}

// Start schedules the cycles. Cycles receive a context derived from ctx.
func (w *Worker) Start(ctx context.Context) {
	w.lock.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.lock.Unlock()

	w.cron.Start()
	w.log.Info(
		ctx,
		"Worker has started.",
		logging.Entry("worker", w.config.Name),
		logging.Entry("schedule", w.config.Schedule),
	)
}

// Stop cancels a running cycle and waits for it to return. Safe to call more
// than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.lock.Lock()
		if w.cancel != nil {
			w.cancel()
		}
		w.lock.Unlock()

		<-w.cron.Stop().Done()
		w.log.Info(context.Background(), "Worker has stopped.", logging.Entry("worker", w.config.Name))
	})
}

// Run starts the worker and blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.Start(ctx)
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Worker) baseContext() context.Context {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.ctx
}

type cronLogger struct {
	log    logging.Logger
	worker string
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(context.Background(), msg, l.entries(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	entries := append([]logging.LogEntry{logging.Entry("err", err)}, l.entries(keysAndValues)...)
	l.log.Error(context.Background(), msg, entries...)
}

func (l *cronLogger) entries(keysAndValues []interface{}) []logging.LogEntry {
	entries := make([]logging.LogEntry, 0, len(keysAndValues)/2+1)
	entries = append(entries, logging.Entry("worker", l.worker))
	for ix := 0; ix+1 < len(keysAndValues); ix += 2 {
		entries = append(entries, logging.Entry(fmt.Sprint(keysAndValues[ix]), keysAndValues[ix+1]))
	}
	return entries
}
