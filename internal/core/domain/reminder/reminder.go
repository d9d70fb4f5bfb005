package reminder

import (
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"time"
)

type ID int64

type Reminder struct {
	ID                  ID
	UserID              chat.UserID
	ChannelID           chat.ChannelID
	Title               string
	ExecuteAt           time.Time
	RemindBeforeMinutes uint32
	RemindAt            time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	IsReminded          bool
}

func (r *Reminder) Validate() error {
	if r.Title == "" {
		return e.NewInvalidStateError("reminder title must not be empty")
	}
	if r.RemindAt.After(r.ExecuteAt) {
		return e.NewInvalidStateError("RemindAt must not be after ExecuteAt")
	}
	if !r.RemindAt.Equal(RemindAt(r.ExecuteAt, r.RemindBeforeMinutes)) {
		return e.NewInvalidStateError("RemindAt must be ExecuteAt minus RemindBeforeMinutes")
	}
	return nil
}

// IsDue reports whether the reminder should be delivered at the given moment.
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.IsReminded && !r.RemindAt.After(now)
}

func RemindAt(executeAt time.Time, remindBeforeMinutes uint32) time.Time {
	return executeAt.Add(-time.Duration(remindBeforeMinutes) * time.Minute)
}
