package chat

import (
	"context"
	"errors"
	c "remindbot/internal/core/domain/common"
)

// UserID and ChannelID are opaque identifiers assigned by the chat platform.
type UserID string

type ChannelID string

type Channel struct {
	ID    ChannelID
	Title string
}

type Message struct {
	ChannelID ChannelID
	Text      string
	Mention   c.Optional[UserID]
}

var (
	ErrChannelNotFound = errors.New("chat channel not found")
	ErrNotifyFailure   = errors.New("could not deliver chat message")
)

type Sender interface {
	SendMessage(ctx context.Context, m Message) error
}

type ChannelResolver interface {
	GetChannel(ctx context.Context, id ChannelID) (Channel, error)
}
