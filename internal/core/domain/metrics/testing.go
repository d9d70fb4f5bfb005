package metrics

import (
	"sync"
	"time"
)

type FakeObserver struct {
	Cycles        map[string]int
	CycleErrors   map[string]int
	Notifications map[string]map[Outcome]int
	lock          sync.Mutex
}

func NewFakeObserver() *FakeObserver {
	return &FakeObserver{
		Cycles:        make(map[string]int),
		CycleErrors:   make(map[string]int),
		Notifications: make(map[string]map[Outcome]int),
	}
}

func (o *FakeObserver) ObserveCycle(task string, duration time.Duration, err error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.Cycles[task]++
	if err != nil {
		o.CycleErrors[task]++
	}
}

func (o *FakeObserver) ObserveNotification(task string, outcome Outcome) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.Notifications[task] == nil {
		o.Notifications[task] = make(map[Outcome]int)
	}
	o.Notifications[task][outcome]++
}

func (o *FakeObserver) Count(task string, outcome Outcome) int {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.Notifications[task][outcome]
}

func (o *FakeObserver) CycleCount(task string) int {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.Cycles[task]
}
