package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/blog"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/handlers"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/jobs"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/log"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/newsletter"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, os.Stdout)

	client := api.NewClient(cfg.Backend, logger)

	feed := blog.NewFeed(client, logger)
	startupCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.RequestTimeout())
	if err := feed.Refresh(startupCtx); err != nil {
		logger.Warn().Err(err).Msg("initial feed refresh failed, serving empty feed")
	}
	cancel()

	handlerSet := handlers.NewHandlerSet(logger, cfg, feed, newsletter.NewService(client, logger), client)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Every(cfg.Feed.RefreshCron, "feed", feed); err != nil {
		logger.Fatal().Err(err).Str("spec", cfg.Feed.RefreshCron).Msg("invalid feed refresh schedule")
	}
	limiter := handlerSet.Limiter()
	if err := scheduler.Every("0 * * * * *", "ratelimit-sweep", jobs.RefreshFunc(func(context.Context) error {
		limiter.Sweep()
		return nil
	})); err != nil {
		logger.Fatal().Err(err).Msg("rate limit sweep schedule failed")
	}
	scheduler.Start()

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("site gateway failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("scheduled jobs still running at exit")
	}

	logger.Info().Msg("site gateway exited cleanly")
}
