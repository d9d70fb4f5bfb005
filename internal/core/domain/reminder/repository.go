package reminder

import (
	"context"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	"time"
)

type CreateInput struct {
	UserID              chat.UserID
	ChannelID           chat.ChannelID
	Title               string
	ExecuteAt           time.Time
	RemindBeforeMinutes uint32
	RemindAt            time.Time
	CreatedAt           time.Time
}

type ReadOptions struct {
	UserIDEquals     c.Optional[chat.UserID]
	IsReminded       c.Optional[bool]
	RemindAtNotAfter c.Optional[time.Time]
	OrderBy          OrderBy
	Limit            c.Optional[uint]
}

type Repository interface {
	Create(ctx context.Context, input CreateInput) (Reminder, error)
	Read(ctx context.Context, options ReadOptions) ([]Reminder, error)
	// MarkReminded flips IsReminded of a pending reminder. It returns
	// ErrReminderAlreadySent if the reminder has been marked before.
	MarkReminded(ctx context.Context, id ID, at time.Time) (Reminder, error)
}
