package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"remindbot/internal/app"
	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	"remindbot/internal/app/workers"
	"remindbot/internal/core/domain/logging"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	log := deps.Logger
	defer shutdownDeps()

	services := services.InitServices(deps)
	jobs, err := workers.InitWorkers(deps, services)
	if err != nil {
		log.Error(context.Background(), "Could not create workers.", logging.Entry("err", err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := app.InitMetricsServer(deps, deps.Config.SchedulerMetricsPort)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		group.Go(func() error {
			log.Info(groupCtx, "Starting periodic task.", logging.Entry("task", job.Name()))
			err := job.Run(groupCtx)
			log.Info(context.Background(), "Periodic task stopped.", logging.Entry("task", job.Name()))
			return err
		})
	}
	group.Go(func() error {
		log.Info(groupCtx, "Metrics server has started.", logging.Entry("address", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error(context.Background(), "Scheduler stopped with error.", logging.Entry("err", err))
	}
}
