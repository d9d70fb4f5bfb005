package app

import (
	"fmt"
	"net/http"
	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	"remindbot/internal/http/handlers/admin"
	"remindbot/internal/http/handlers/telegram"
	"remindbot/internal/implementations/livefeed"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	telegramRouter := chi.NewRouter()
	telegramRouter.Method(
		http.MethodPost,
		"/updates/{secret}",
		telegram.New(deps.Logger, deps.Config.TelegramURLSecret, s.HandleChatMessage, deps.Telegram),
	)

	adminHandler := admin.New(deps.Logger, deps.RemindLogRepository, deps.SseServer, livefeed.STREAM)
	adminRouter := chi.NewRouter()
	adminRouter.Get("/", adminHandler.Index)
	adminRouter.Get("/reminds", adminHandler.Reminds)
	adminRouter.Get("/events", adminHandler.Events)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/telegram", telegramRouter)
	router.Mount("/admin", adminRouter)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Handler:           router,
		Addr:              fmt.Sprintf("0.0.0.0:%d", deps.Config.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// InitMetricsServer exposes only /metrics, for processes without the bot API.
func InitMetricsServer(deps *deps.Deps, port uint) *http.Server {
	router := chi.NewRouter()
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Handler:           router,
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
