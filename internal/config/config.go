package config

import (
	"errors"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
)

const (
	NOTIFIED_SET_MEMORY = "memory"
	NOTIFIED_SET_REDIS  = "redis"
)

// LOCAL_ENV_FILE is loaded before parsing when present. Variables that are
// already set in the environment win.
const LOCAL_ENV_FILE = ".env.local"

type Config struct {
	IsTestMode bool `env:"TEST_MODE" envDefault:"false"`
	IsDebug    bool `env:"DEBUG" envDefault:"false"`
	Port       uint `env:"PORT" envDefault:"9090"`

	// SchedulerMetricsPort serves /metrics of the scheduler process.
	SchedulerMetricsPort uint `env:"SCHEDULER_METRICS_PORT" envDefault:"9091"`

	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	RedisURL       string `env:"REDIS_URL,required"`

	RabbitmqURL               string        `env:"RABBITMQ_URL"`
	RabbitmqNotificationQueue string        `env:"RABBITMQ_NOTIFICATION_QUEUE" envDefault:"notifications"`
	RabbitmqRetryDelay        time.Duration `env:"RABBITMQ_RETRY_DELAY" envDefault:"5s"`

	TelegramBaseURL        url.URL       `env:"TELEGRAM_BASE_URL" envDefault:"https://api.telegram.org"`
	TelegramToken          string        `env:"TELEGRAM_TOKEN,required"`
	TelegramURLSecret      string        `env:"TELEGRAM_URL_SECRET,required"`
	TelegramRequestTimeout time.Duration `env:"TELEGRAM_REQUEST_TIMEOUT" envDefault:"5s"`
	TelegramRatePerSecond  float64       `env:"TELEGRAM_RATE_PER_SECOND" envDefault:"20"`

	BaseURL        url.URL  `env:"BASE_URL,required"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	GoogleCredentialsFile string        `env:"GOOGLE_CREDENTIALS_FILE,required"`
	GoogleCalendarID      string        `env:"GOOGLE_CALENDAR_ID" envDefault:"primary"`
	GoogleRequestTimeout  time.Duration `env:"GOOGLE_REQUEST_TIMEOUT" envDefault:"10s"`

	NotifyChannelID string `env:"NOTIFY_CHANNEL_ID,required"`

	DispatchSchedule    string        `env:"DISPATCH_SCHEDULE" envDefault:"@every 30s"`
	WatchSchedule       string        `env:"WATCH_SCHEDULE" envDefault:"@every 60s"`
	WatchHorizon        time.Duration `env:"WATCH_HORIZON" envDefault:"10m"`
	DailyAgendaSchedule string        `env:"DAILY_AGENDA_SCHEDULE" envDefault:"0 8 * * *"`
	CycleTimeout        time.Duration `env:"CYCLE_TIMEOUT" envDefault:"25s"`

	NotifiedSetBackend       string        `env:"NOTIFIED_SET_BACKEND" envDefault:"memory"`
	AddSessionTTL            time.Duration `env:"ADD_SESSION_TTL" envDefault:"60s"`
	CreateRateLimitPerMinute uint16        `env:"CREATE_RATE_LIMIT_PER_MINUTE" envDefault:"10"`

	SentryDsn *url.URL `env:"SENTRY_DSN"`
}

func (c *Config) IsOutboxEnabled() bool {
	return c.RabbitmqURL != ""
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Max(uint(65535))),
		validation.Field(&c.SchedulerMetricsPort, validation.Required, validation.Max(uint(65535))),
		validation.Field(&c.TelegramRequestTimeout, validation.Required),
		validation.Field(&c.TelegramRatePerSecond, validation.Required, validation.Min(0.1)),
		validation.Field(&c.GoogleRequestTimeout, validation.Required),
		validation.Field(&c.WatchHorizon, validation.Required),
		validation.Field(&c.CycleTimeout, validation.Required),
		validation.Field(&c.AddSessionTTL, validation.Required),
		validation.Field(&c.CreateRateLimitPerMinute, validation.Required),
		validation.Field(
			&c.NotifiedSetBackend,
			validation.Required,
			validation.In(NOTIFIED_SET_MEMORY, NOTIFIED_SET_REDIS),
		),
		validation.Field(&c.RabbitmqNotificationQueue, validation.Required),
		validation.Field(&c.RabbitmqRetryDelay, validation.Required),
	)
}

func Load() (*Config, error) {
	err := godotenv.Load(LOCAL_ENV_FILE)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return parse(env.Options{})
}

func parse(options env.Options) (*Config, error) {
	config := &Config{}
	if err := env.Parse(config, options); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
