package notificationready

import (
	"context"
	"remindbot/internal/core/domain/chat"
	"remindbot/internal/core/domain/common"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/rabbitmq/schema"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type consumer interface {
	Consume(
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp091.Table,
	) (<-chan amqp091.Delivery, error)
}

const DEFAULT_RETRY_DELAY = 5 * time.Second

// Consumer delivers queued notifications through the wrapped sender.
// A failed delivery is requeued after retryDelay until it succeeds.
type Consumer struct {
	log        logging.Logger
	channel    consumer
	queue      string
	sender     chat.Sender
	retryDelay time.Duration
}

func New(
	log logging.Logger,
	channel consumer,
	queue string,
	sender chat.Sender,
	retryDelay time.Duration,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic(e.NewInvalidStateError("queue name must not be empty"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if retryDelay <= 0 {
		retryDelay = DEFAULT_RETRY_DELAY
	}
	return &Consumer{log: log, channel: channel, queue: queue, sender: sender, retryDelay: retryDelay}
}

// Consume processes deliveries in the background until the channel closes
// or ctx is done.
func (c *Consumer) Consume(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		c.log.Info(ctx, "Start consuming notifications.", logging.Entry("queue", c.queue))
		for {
			select {
			case <-ctx.Done():
				c.log.Info(ctx, "Notification consumer stopped.")
				return
			case delivery, ok := <-deliveries:
				if !ok {
					c.log.Info(ctx, "Notification deliveries closed.")
					return
				}
				c.handle(ctx, delivery)
			}
		}
	}()

	return nil
}

func (c *Consumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	notification := schema.Notification{}
	if err := notification.Unmarshal(delivery.Body); err != nil {
		c.log.Error(
			ctx,
			"Could not decode notification, dropping it.",
			logging.Entry("err", err),
			logging.Entry("body", string(delivery.Body)),
		)
		c.ack(ctx, delivery)
		return
	}

	message := chat.Message{
		ChannelID: chat.ChannelID(notification.ChannelID),
		Text:      notification.Text,
	}
	if notification.MentionUserID != "" {
		message.Mention = common.Present(chat.UserID(notification.MentionUserID))
	}

	err := c.sender.SendMessage(ctx, message)
	if err == nil {
		c.log.Info(
			ctx,
			"Notification has been delivered.",
			logging.Entry("notificationID", notification.ID),
			logging.Entry("channelID", notification.ChannelID),
		)
		c.ack(ctx, delivery)
		return
	}

	entries := []logging.LogEntry{
		logging.Entry("notificationID", notification.ID),
		logging.Entry("channelID", notification.ChannelID),
		logging.Entry("redelivered", delivery.Redelivered),
		logging.Entry("err", err),
	}
	if delivery.Redelivered {
		c.log.Error(ctx, "Could not deliver notification again, requeue.", entries...)
	} else {
		c.log.Warning(ctx, "Could not deliver notification, requeue.", entries...)
	}

	// On shutdown the message goes back to the queue right away.
	select {
	case <-ctx.Done():
	case <-time.After(c.retryDelay):
	}
	if err := delivery.Nack(false, true); err != nil {
		logging.Error(ctx, c.log, err, logging.Entry("notificationID", notification.ID))
	}
}

func (c *Consumer) ack(ctx context.Context, delivery amqp091.Delivery) {
	if err := delivery.Ack(false); err != nil {
		logging.Error(ctx, c.log, err)
	}
}
