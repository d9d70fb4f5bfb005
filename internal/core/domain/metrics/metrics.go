package metrics

import "time"

type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Observer receives background task measurements.
type Observer interface {
	ObserveCycle(task string, duration time.Duration, err error)
	ObserveNotification(task string, outcome Outcome)
}

type NopObserver struct{}

func (NopObserver) ObserveCycle(string, time.Duration, error) {}

func (NopObserver) ObserveNotification(string, Outcome) {}
