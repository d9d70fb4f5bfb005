package livefeed

import (
	"context"
	"encoding/json"
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"time"

	"github.com/r3labs/sse/v2"
)

const STREAM = "notifications"

type Notification struct {
	ChannelID     chat.ChannelID `json:"channel_id"`
	Text          string         `json:"text"`
	MentionUserID *chat.UserID   `json:"mention_user_id,omitempty"`
	SentAt        time.Time      `json:"sent_at"`
}

// Publisher hands a delivered notification to the admin live feed.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// Sender publishes every delivered message to the admin live feed.
type Sender struct {
	log       logging.Logger
	inner     chat.Sender
	publisher Publisher
	now       func() time.Time
}

func New(log logging.Logger, publisher Publisher, now func() time.Time, inner chat.Sender) *Sender {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &Sender{log: log, inner: inner, publisher: publisher, now: now}
}

func (s *Sender) SendMessage(ctx context.Context, m chat.Message) error {
	if err := s.inner.SendMessage(ctx, m); err != nil {
		return err
	}

	notification := Notification{ChannelID: m.ChannelID, Text: m.Text, SentAt: s.now()}
	if m.Mention.IsPresent {
		userID := m.Mention.Value
		notification.MentionUserID = &userID
	}
	data, err := json.Marshal(notification)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("channelID", m.ChannelID))
		return nil
	}
	// The message is already delivered, a lost feed event is only logged.
	if err := s.publisher.Publish(ctx, data); err != nil {
		s.log.Warning(
			ctx,
			"Could not publish notification to the live feed.",
			logging.Entry("channelID", m.ChannelID),
			logging.Entry("err", err),
		)
	}
	return nil
}

// SSE publishes straight into an in-process SSE server.
type SSE struct {
	server *sse.Server
}

func NewSSE(server *sse.Server) *SSE {
	if server == nil {
		panic(e.NewNilArgumentError("server"))
	}
	if !server.StreamExists(STREAM) {
		server.CreateStream(STREAM)
	}
	return &SSE{server: server}
}

func (p *SSE) Publish(ctx context.Context, data []byte) error {
	p.server.Publish(STREAM, &sse.Event{Data: data})
	return nil
}
