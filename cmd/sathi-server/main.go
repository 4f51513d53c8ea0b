package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"rbb-sathi-backend/internal/config"
	"rbb-sathi-backend/internal/logger"
	"rbb-sathi-backend/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "sathi-server"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := server.NewServer(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}
	defer s.Close()

	sweeper := cron.New(cron.WithLocation(time.UTC))
	if _, err := sweeper.AddFunc(cfg.SessionSweepSchedule, func() { s.SweepSessions(time.Now()) }); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SessionSweepSchedule).Msg("invalid session sweep schedule")
	}
	sweeper.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("RBB Sathi server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down")

	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}
