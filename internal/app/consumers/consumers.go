package consumers

import (
	"context"
	"remindbot/internal/app/deps"
	dl "remindbot/internal/core/domain/logging"
	"remindbot/internal/implementations/livefeed"
	notificationready "remindbot/internal/rabbitmq/consumers/notification_ready"
)

func initNotificationReadyConsumer(ctx context.Context, deps *deps.Deps) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(ctx, "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqNotificationQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(ctx, "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	consumer := notificationready.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.DirectSender,
		deps.Config.RabbitmqRetryDelay,
	)
	if err = consumer.Consume(ctx); err != nil {
		deps.Logger.Error(
			ctx,
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(ctx, "Consumer has started.", dl.Entry("queue", queue))
	return func() { rabbitmqChannel.Close() }
}

func initLiveFeedRelay(ctx context.Context, deps *deps.Deps) func() {
	relayCtx, cancel := context.WithCancel(ctx)
	relay := livefeed.NewRelay(deps.Logger, deps.Redis, livefeed.NewSSE(deps.SseServer))
	if err := relay.Start(relayCtx); err != nil {
		cancel()
		deps.Logger.Error(ctx, "Could not subscribe to the live feed.", dl.Entry("err", err))
		panic(err)
	}
	return cancel
}

// InitConsumers starts the live feed relay and, with RabbitMQ configured,
// the outbox consumer.
func InitConsumers(ctx context.Context, deps *deps.Deps) func() {
	shutdownLiveFeedRelay := initLiveFeedRelay(ctx, deps)

	if deps.Rabbitmq == nil {
		return shutdownLiveFeedRelay
	}

	shutdownNotificationReadyConsumer := initNotificationReadyConsumer(ctx, deps)

	return func() {
		shutdownNotificationReadyConsumer()
		shutdownLiveFeedRelay()
	}
}
