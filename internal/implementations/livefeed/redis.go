package livefeed

import (
	"context"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"

	"github.com/go-redis/redis/v9"
)

// REDIS_CHANNEL carries feed events from every process to the one serving
// the admin pages.
const REDIS_CHANNEL = "remindbot::livefeed"

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	return &Redis{client: client}
}

func (p *Redis) Publish(ctx context.Context, data []byte) error {
	return p.client.Publish(ctx, REDIS_CHANNEL, data).Err()
}

// Relay forwards feed events received over Redis to a local publisher.
type Relay struct {
	log    logging.Logger
	client *redis.Client
	target Publisher
}

func NewRelay(log logging.Logger, client *redis.Client, target Publisher) *Relay {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	if target == nil {
		panic(e.NewNilArgumentError("target"))
	}
	return &Relay{log: log, client: client, target: target}
}

// Start subscribes and relays in the background until ctx is done.
// It returns once the subscription is confirmed.
func (r *Relay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, REDIS_CHANNEL)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return err
	}

	messages := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		r.log.Info(ctx, "Live feed relay has started.", logging.Entry("channel", REDIS_CHANNEL))
		for {
			select {
			case <-ctx.Done():
				r.log.Info(context.Background(), "Live feed relay stopped.")
				return
			case message, ok := <-messages:
				if !ok {
					r.log.Info(ctx, "Live feed subscription closed.")
					return
				}
				if err := r.target.Publish(ctx, []byte(message.Payload)); err != nil {
					logging.Error(ctx, r.log, err)
				}
			}
		}
	}()
	return nil
}
