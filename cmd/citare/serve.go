package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ternarybob/citare/internal/app"
	"github.com/ternarybob/citare/internal/server"
)

// runServe starts the HTTP server and the scheduled queue poll, then blocks
// until an interrupt.
func runServe() int {
	application, err := app.New(config)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(config.Queue.PollSchedule, func() {
		application.Worker.Poll(application.Context())
	}); err != nil {
		logger.Error().Err(err).Str("schedule", config.Queue.PollSchedule).Msg("Invalid poll schedule")
		return 1
	}
	if _, err := scheduler.AddFunc("@every 10m", func() {
		if err := application.StorageManager.Maintenance(application.Context()); err != nil {
			logger.Warn().Err(err).Msg("Storage maintenance failed")
		}
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to schedule storage maintenance")
		return 1
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(application)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Str("poll_schedule", config.Queue.PollSchedule).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
	return 0
}
