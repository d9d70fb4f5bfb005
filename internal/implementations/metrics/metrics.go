package metrics

import (
	"fmt"
	"remindbot/internal/core/domain/metrics"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const DEFAULT_NAMESPACE = "remindbot"

// PrometheusObserver exports background task measurements.
type PrometheusObserver struct {
	cycleDuration *prometheus.HistogramVec
	cycleErrors   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = DEFAULT_NAMESPACE
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	cycleDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_cycle_duration_seconds",
		Help:      "Duration of background task cycles.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"task"}))
	if err != nil {
		return nil, err
	}
	cycleErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_cycle_errors_total",
		Help:      "Count of failed background task cycles.",
	}, []string{"task"}))
	if err != nil {
		return nil, err
	}
	notifications, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Count of notifications by task and outcome.",
	}, []string{"task", "outcome"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusObserver{
		cycleDuration: cycleDuration,
		cycleErrors:   cycleErrors,
		notifications: notifications,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, fmt.Errorf("register metric: %w", err)
	}
	return collector, nil
}

func (o *PrometheusObserver) ObserveCycle(task string, duration time.Duration, err error) {
	o.cycleDuration.WithLabelValues(task).Observe(duration.Seconds())
	if err != nil {
		o.cycleErrors.WithLabelValues(task).Inc()
	}
}

func (o *PrometheusObserver) ObserveNotification(task string, outcome metrics.Outcome) {
	o.notifications.WithLabelValues(task, string(outcome)).Inc()
}
