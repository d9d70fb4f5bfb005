package conversation

import (
	"context"
	"fmt"
	"remindbot/internal/core/domain/chat"
	"time"
)

// Key identifies a pending multi-turn exchange with one user in one channel.
type Key struct {
	UserID    chat.UserID
	ChannelID chat.ChannelID
}

func (k Key) String() string {
	return fmt.Sprintf("%s::%s", k.ChannelID, k.UserID)
}

// Store keeps short lived "waiting for the next message" sessions.
// Take consumes a session, so only one follow-up message is accepted.
type Store interface {
	Open(ctx context.Context, key Key, ttl time.Duration) error
	Take(ctx context.Context, key Key) (bool, error)
	Close(ctx context.Context, key Key) error
}
