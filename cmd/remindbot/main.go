package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"remindbot/internal/app"
	"remindbot/internal/app/consumers"
	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	"syscall"
	"time"

	dl "remindbot/internal/core/domain/logging"

	"golang.org/x/sync/errgroup"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	services := services.InitServices(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownConsumers := consumers.InitConsumers(ctx, deps)
	httpServer := app.InitHttpServer(deps, services)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		deps.Logger.Info(
			groupCtx,
			"HTTP server has started.",
			dl.Entry("address", httpServer.Addr),
			dl.Entry("isTestMode", deps.Config.IsTestMode),
			dl.Entry("isOutboxEnabled", deps.Config.IsOutboxEnabled()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		deps.Logger.Info(context.Background(), "HTTP service is stopping gracefully.")
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return shutdown(httpServer, shutdownConsumers)
	})

	if err := group.Wait(); err != nil {
		deps.Logger.Error(context.Background(), "HTTP server stopped with error.", dl.Entry("err", err))
	}
	shutdownDeps()
}

func shutdown(server *http.Server, shutdownConsumers func()) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	shutdownConsumers()
	return server.Shutdown(ctx)
}
