package deps

import (
	"context"
	"fmt"
	"remindbot/internal/config"
	"remindbot/internal/core/domain/calendar"
	"remindbot/internal/core/domain/chat"
	"remindbot/internal/core/domain/conversation"
	dl "remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"
	drl "remindbot/internal/core/domain/rate_limiter"
	"remindbot/internal/core/domain/reminder"
	"remindbot/internal/core/domain/remindlog"
	"remindbot/internal/db"
	dbreminder "remindbot/internal/db/reminder"
	dbremindlog "remindbot/internal/db/remindlog"
	conversationstore "remindbot/internal/implementations/conversation_store"
	googlecalendar "remindbot/internal/implementations/google_calendar"
	"remindbot/internal/implementations/livefeed"
	"remindbot/internal/implementations/logging"
	prometheusmetrics "remindbot/internal/implementations/metrics"
	notifiedset "remindbot/internal/implementations/notified_set"
	ratelimiter "remindbot/internal/implementations/rate_limiter"
	"remindbot/internal/implementations/telegram"
	"remindbot/internal/rabbitmq"
	notificationoutbox "remindbot/internal/rabbitmq/publishers/notification_outbox"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/r3labs/sse/v2"
)

type Deps struct {
	Config *config.Config
	Logger dl.Logger

	DB        *pgxpool.Pool
	Redis     *redis.Client
	Rabbitmq  *rabbitmq.Connection
	SseServer *sse.Server
	Registry  *prometheus.Registry

	Now func() time.Time

	ReminderRepository  reminder.Repository
	RemindLogRepository remindlog.Repository

	RateLimiter       drl.RateLimiter
	Observer          metrics.Observer
	NotifiedSet       calendar.NotifiedSet
	ConversationStore conversation.Store

	Telegram        *telegram.Client
	ChannelResolver chat.ChannelResolver
	Calendar        calendar.Provider

	// DirectSender delivers to Telegram right away and mirrors the message
	// to the live feed over Redis, so every process reaches the admin page.
	DirectSender chat.Sender
	// NotificationSender is used by background tasks. It is the outbox when
	// RabbitMQ is configured and DirectSender otherwise.
	NotificationSender chat.Sender
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	flushSentry := deps.initSentry()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()
	closeSseServer := deps.initSseServer()
	deps.initMetrics()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.ReminderRepository = dbreminder.NewPgxReminderRepository(deps.DB)
	deps.RemindLogRepository = dbremindlog.NewPgxRemindLogRepository(deps.DB)
	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
	deps.NotifiedSet = deps.initNotifiedSet()
	deps.ConversationStore = deps.initConversationStore()

	deps.Telegram = telegram.New(
		deps.Config.TelegramBaseURL,
		deps.Config.TelegramToken,
		deps.Config.TelegramRequestTimeout,
		deps.Config.TelegramRatePerSecond,
	)
	deps.ChannelResolver = deps.Telegram
	deps.DirectSender = livefeed.New(deps.Logger, livefeed.NewRedis(deps.Redis), deps.Now, deps.Telegram)
	deps.Calendar = deps.initCalendar()

	closeOutbox := deps.initNotificationSender()

	return deps, func() {
		closeFuncs := []func(){
			closeSseServer,
			closeOutbox,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
			flushSentry,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.IsDebug)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	err := db.ApplyMigrations(deps.Config.MigrationsPath, deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}

	pool, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = pool
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		pool.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	if !deps.Config.IsOutboxEnabled() {
		deps.Logger.Info(context.Background(), "RabbitMQ is disabled, notifications are sent directly.")
		return func() {}
	}

	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initSseServer() func() {
	deps.SseServer = sse.New()
	deps.SseServer.AutoStream = false
	deps.SseServer.AutoReplay = false
	deps.SseServer.CreateStream(livefeed.STREAM)
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down SSE server.")
		deps.SseServer.Close()
		deps.Logger.Info(context.Background(), "SSE server shut down.")
	}
}

func (deps *Deps) initMetrics() {
	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer, err := prometheusmetrics.NewPrometheusObserver(prometheusmetrics.DEFAULT_NAMESPACE, deps.Registry)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not register metrics.", dl.Entry("err", err))
		panic(err)
	}
	deps.Observer = observer
}

func (deps *Deps) initNotifiedSet() calendar.NotifiedSet {
	if deps.Config.NotifiedSetBackend == config.NOTIFIED_SET_REDIS {
		return notifiedset.NewRedis(deps.Redis, notifiedset.DEFAULT_TTL)
	}
	return notifiedset.NewMemory(notifiedset.DEFAULT_SIZE, deps.Now)
}

func (deps *Deps) initConversationStore() conversation.Store {
	if deps.Config.IsTestMode {
		return conversationstore.NewMemory(deps.Now)
	}
	return conversationstore.NewRedis(deps.Redis)
}

func (deps *Deps) initCalendar() calendar.Provider {
	service, err := googlecalendar.NewService(context.Background(), deps.Config.GoogleCredentialsFile)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create Google Calendar client.", dl.Entry("err", err))
		panic(err)
	}
	return googlecalendar.New(service, deps.Config.GoogleCalendarID, deps.Config.GoogleRequestTimeout)
}

func (deps *Deps) initNotificationSender() func() {
	if deps.Rabbitmq == nil {
		deps.NotificationSender = deps.DirectSender
		return func() {}
	}

	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	if err := rabbitmqChannel.DeclareQueue(deps.Config.RabbitmqNotificationQueue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	deps.NotificationSender = notificationoutbox.NewRabbitMQ(
		deps.Logger,
		rabbitmqChannel,
		deps.Config.RabbitmqNotificationQueue,
		deps.Now,
	)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down notification outbox.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Notification outbox shut down.")
	}
}

func (deps *Deps) initSentry() func() {
	if deps.Config.SentryDsn != nil {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              deps.Config.SentryDsn.String(),
			TracesSampleRate: 0.01,
		})
		if err != nil {
			panic(fmt.Sprintf("could not init Sentry: %v\n", err))
		}
		deps.Logger.Info(context.Background(), "Sentry has been successfully initialized.")
		return func() {
			ok := sentry.Flush(5 * time.Second)
			deps.Logger.Info(context.Background(), "Sentry events flushed.", dl.Entry("ok", ok))
		}
	}

	deps.Logger.Info(context.Background(), "Sentry is disabled.")
	return func() {}
}
