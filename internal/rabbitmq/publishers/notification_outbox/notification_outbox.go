package notificationoutbox

import (
	"context"
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/rabbitmq/schema"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange string,
		key string,
		mandatory bool,
		immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ is a chat.Sender that enqueues messages for the delivery consumer.
type RabbitMQ struct {
	log     logging.Logger
	channel publisher
	queue   string
	now     func() time.Time
}

func NewRabbitMQ(log logging.Logger, channel publisher, queue string, now func() time.Time) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic(e.NewInvalidStateError("queue name must not be empty"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &RabbitMQ{log: log, channel: channel, queue: queue, now: now}
}

func (s *RabbitMQ) SendMessage(ctx context.Context, m chat.Message) error {
	notification := schema.Notification{
		ID:        uuid.New(),
		ChannelID: string(m.ChannelID),
		Text:      m.Text,
		CreatedAt: s.now(),
	}
	if m.Mention.IsPresent {
		notification.MentionUserID = string(m.Mention.Value)
	}
	body, err := notification.Marshal()
	if err != nil {
		return e.Kind(chat.ErrNotifyFailure, err)
	}

	err = s.channel.PublishWithContext(ctx, "", s.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    notification.ID.String(),
		Timestamp:    notification.CreatedAt,
		Body:         body,
	})
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("queue", s.queue))
		return e.Kind(chat.ErrNotifyFailure, err)
	}
	s.log.Info(
		ctx,
		"Notification has been published to the outbox.",
		logging.Entry("queue", s.queue),
		logging.Entry("notificationID", notification.ID),
		logging.Entry("channelID", m.ChannelID),
	)
	return nil
}
