package main

// @title						Invoicer API
// @version					1.0
// @description				Invoicing and client management backend.
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"invoicer/internal/app"
	"invoicer/internal/auth"
	"invoicer/internal/config"
	"invoicer/internal/handler"
	"invoicer/internal/logger"
	"invoicer/internal/repository/postgres"
	"invoicer/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
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

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	adapters, err := app.NewAdapters(ctx, cfg)
	if err != nil {
		return err
	}
	svcs := app.NewServices(db, adapters, cfg)

	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Client:   handler.NewClientHandler(svcs.Clients),
		Invoice:  handler.NewInvoiceHandler(svcs.Invoices),
		Template: handler.NewTemplateHandler(svcs.Templates),
		Settings: handler.NewSettingsHandler(svcs.Settings),
		Dispatch: handler.NewDispatchHandler(svcs.Dispatch),
		Job:      handler.NewJobHandler(svcs.Reminders, svcs.Summary),
		Stats:    handler.NewStatsHandler(svcs.Stats),
	}

	opts := router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableSwagger:  cfg.Server.Environment != "production",
	}
	if cfg.Auth.Enabled() {
		opts.Tokens = auth.NewTokenManager(&cfg.Auth)
	} else {
		log.Warn().Msg("auth secret not set, API routes are unauthenticated")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.Setup(handlers, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Str("environment", cfg.Server.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
