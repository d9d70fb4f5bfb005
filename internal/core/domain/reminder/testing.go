package reminder

import (
	"context"
	"sort"
	"sync"
	"time"
)

// FakeRepository is an in-memory Repository honouring ReadOptions.
type FakeRepository struct {
	CreateError       error
	ReadError         error
	MarkRemindedError error
	ReadWith          []ReadOptions
	MarkRemindedWith  []ID
	reminders         []Reminder
	lastID            ID
	lock              sync.Mutex
}

func NewFakeRepository(reminders ...Reminder) *FakeRepository {
	r := &FakeRepository{}
	for _, rem := range reminders {
		if rem.ID > r.lastID {
			r.lastID = rem.ID
		}
		r.reminders = append(r.reminders, rem)
	}
	return r
}

func (r *FakeRepository) Create(ctx context.Context, input CreateInput) (rem Reminder, err error) {
	if r.CreateError != nil {
		return rem, r.CreateError
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	r.lastID++
	rem = Reminder{
		ID:                  r.lastID,
		UserID:              input.UserID,
		ChannelID:           input.ChannelID,
		Title:               input.Title,
		ExecuteAt:           input.ExecuteAt,
		RemindBeforeMinutes: input.RemindBeforeMinutes,
		RemindAt:            input.RemindAt,
		CreatedAt:           input.CreatedAt,
		UpdatedAt:           input.CreatedAt,
	}
	r.reminders = append(r.reminders, rem)
	return rem, nil
}

func (r *FakeRepository) Read(ctx context.Context, options ReadOptions) ([]Reminder, error) {
	if r.ReadError != nil {
		return nil, r.ReadError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.ReadWith = append(r.ReadWith, options)

	result := make([]Reminder, 0)
	for _, rem := range r.reminders {
		if options.UserIDEquals.IsPresent && rem.UserID != options.UserIDEquals.Value {
			continue
		}
		if options.IsReminded.IsPresent && rem.IsReminded != options.IsReminded.Value {
			continue
		}
		if options.RemindAtNotAfter.IsPresent && rem.RemindAt.After(options.RemindAtNotAfter.Value) {
			continue
		}
		result = append(result, rem)
	}

	switch options.OrderBy {
	case OrderByIDAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	case OrderByRemindAtAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].RemindAt.Before(result[j].RemindAt) })
	}

	if options.Limit.IsPresent && uint(len(result)) > options.Limit.Value {
		result = result[:options.Limit.Value]
	}
	return result, nil
}

func (r *FakeRepository) MarkReminded(ctx context.Context, id ID, at time.Time) (rem Reminder, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.MarkRemindedWith = append(r.MarkRemindedWith, id)
	if r.MarkRemindedError != nil {
		return rem, r.MarkRemindedError
	}

	for ix := range r.reminders {
		if r.reminders[ix].ID != id {
			continue
		}
		if r.reminders[ix].IsReminded {
			return rem, ErrReminderAlreadySent
		}
		r.reminders[ix].IsReminded = true
		r.reminders[ix].UpdatedAt = at
		return r.reminders[ix], nil
	}
	return rem, ErrReminderDoesNotExist
}

// All returns a snapshot of stored reminders in insertion order.
func (r *FakeRepository) All() []Reminder {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := make([]Reminder, len(r.reminders))
	copy(result, r.reminders)
	return result
}
