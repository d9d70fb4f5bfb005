package metrics

import (
	"errors"
	"remindbot/internal/core/domain/metrics"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserver(t *testing.T) {
	// Setup ---
	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("", reg)
	require.Nil(t, err)

	// Exercise ---
	observer.ObserveCycle("dispatch_due_reminders", time.Second, nil)
	observer.ObserveCycle("dispatch_due_reminders", time.Second, errors.New("db is down"))
	observer.ObserveNotification("dispatch_due_reminders", metrics.OutcomeSent)
	observer.ObserveNotification("dispatch_due_reminders", metrics.OutcomeSent)
	observer.ObserveNotification("watch_upcoming_events", metrics.OutcomeFailed)

	// Verify ---
	assert := require.New(t)
	assert.Equal(1.0, testutil.ToFloat64(observer.cycleErrors.WithLabelValues("dispatch_due_reminders")))
	assert.Equal(2.0, testutil.ToFloat64(observer.notifications.WithLabelValues("dispatch_due_reminders", "sent")))
	assert.Equal(1.0, testutil.ToFloat64(observer.notifications.WithLabelValues("watch_upcoming_events", "failed")))
	assert.Equal(1, testutil.CollectAndCount(observer.cycleDuration))
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("remindbot", reg)
	require.Nil(t, err)
	second, err := NewPrometheusObserver("remindbot", reg)
	require.Nil(t, err)

	first.ObserveNotification("watch_upcoming_events", metrics.OutcomeSent)
	second.ObserveNotification("watch_upcoming_events", metrics.OutcomeSent)

	require.Equal(t, 2.0, testutil.ToFloat64(first.notifications.WithLabelValues("watch_upcoming_events", "sent")))
}
