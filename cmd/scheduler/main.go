package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"invoicer/internal/auth"
	"invoicer/internal/config"
	"invoicer/internal/logger"
	"invoicer/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("scheduler exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tokens scheduler.TokenIssuer
	if cfg.Auth.Enabled() {
		tokens = auth.NewTokenManager(&cfg.Auth)
	}
	trigger := scheduler.NewReminderTrigger(cfg.Scheduler.ServerURL, nil, tokens)

	s, err := scheduler.New(ctx, cfg.Scheduler.Cron, cfg.App.Location(), trigger)
	if err != nil {
		return err
	}
	s.Start()
	log.Info().
		Str("cron", cfg.Scheduler.Cron).
		Str("server", cfg.Scheduler.ServerURL).
		Str("timezone", cfg.App.Timezone).
		Msg("reminder scheduler started")

	<-ctx.Done()
	log.Info().Msg("stopping scheduler")
	return s.Shutdown()
}
