package worker

import (
	"context"
	"errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type emptyInput struct{}

type countingService struct {
	calls int32
	err   error
}

func (s *countingService) Run(ctx context.Context, input emptyInput) (struct{}, error) {
	atomic.AddInt32(&s.calls, 1)
	return struct{}{}, s.err
}

func newWorker(t *testing.T, observer metrics.Observer, task Task) *Worker {
	w, err := New(logging.NewFakeLogger(), observer, Config{Name: "test", Schedule: "@every 1h"}, task)
	require.Nil(t, err)
	return w
}

func TestInvalidSchedule(t *testing.T) {
	_, err := New(
		logging.NewFakeLogger(),
		metrics.NopObserver{},
		Config{Name: "test", Schedule: "every minute"},
		func(context.Context) error { return nil },
	)

	require.NotNil(t, err)
}

func TestScheduleFormats(t *testing.T) {
	for _, schedule := range []string{"@every 30s", "0 8 * * *", "*/5 * * * *", "@daily"} {
		t.Run(schedule, func(t *testing.T) {
			_, err := New(
				logging.NewFakeLogger(),
				metrics.NopObserver{},
				Config{Name: "test", Schedule: schedule},
				func(context.Context) error { return nil },
			)
			require.Nil(t, err)
		})
	}
}

func TestTickObservesCycle(t *testing.T) {
	// Setup ---
	observer := metrics.NewFakeObserver()
	service := &countingService{}
	w := newWorker(t, observer, FromService[emptyInput, struct{}](service))

	// Exercise ---
	err := w.Tick(context.Background())

	// Verify ---
	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(int32(1), atomic.LoadInt32(&service.calls))
	assert.Equal(1, observer.CycleCount("test"))
	assert.Equal(0, observer.CycleErrors["test"])
}

func TestTickReturnsTaskError(t *testing.T) {
	observer := metrics.NewFakeObserver()
	service := &countingService{err: errors.New("db is down")}
	w := newWorker(t, observer, FromService[emptyInput, struct{}](service))

	err := w.Tick(context.Background())

	assert := require.New(t)
	assert.NotNil(err)
	assert.Equal(1, observer.CycleErrors["test"])
}

func TestTickAppliesTimeout(t *testing.T) {
	w, err := New(
		logging.NewFakeLogger(),
		metrics.NopObserver{},
		Config{Name: "test", Schedule: "@every 1h", Timeout: 10 * time.Millisecond},
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	)
	require.Nil(t, err)

	err = w.Tick(context.Background())

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOverlappingTicksAreSkipped(t *testing.T) {
	// Setup ---
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	w := newWorker(t, metrics.NopObserver{}, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.job.Run()
	}()
	<-started

	// Exercise ---
	w.job.Run()
	close(release)
	wg.Wait()

	// Verify ---
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStartStop(t *testing.T) {
	w := newWorker(t, metrics.NopObserver{}, func(context.Context) error { return nil })

	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestRunStopsWithContext(t *testing.T) {
	w := newWorker(t, metrics.NopObserver{}, func(context.Context) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.Nil(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
