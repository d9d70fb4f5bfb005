package remindlog

import (
	"context"
	"errors"
	"remindbot/internal/core/domain/chat"
	c "remindbot/internal/core/domain/common"
	"time"
)

type ID int64

// Entry records one calendar request received from chat.
type Entry struct {
	ID        ID
	UserID    chat.UserID
	UserName  string
	Text      string
	Title     string
	StartAt   c.Optional[time.Time]
	CreatedAt time.Time
}

type CreateInput struct {
	UserID    chat.UserID
	UserName  string
	Text      string
	Title     string
	StartAt   c.Optional[time.Time]
	CreatedAt time.Time
}

const LatestLimit = 100

var ErrStoreFailure = errors.New("remind log store failure")

type Repository interface {
	Create(ctx context.Context, input CreateInput) (Entry, error)
	// ReadLatest returns up to limit entries, newest first.
	ReadLatest(ctx context.Context, limit uint) ([]Entry, error)
}
