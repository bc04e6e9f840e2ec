package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"invoicer/internal/app"
	"invoicer/internal/config"
	"invoicer/internal/logger"
	"invoicer/internal/repository/postgres"
)

var version = "dev"

// env is built lazily so that commands like "token" need no database.
type env struct {
	cfg  *config.Config
	db   *sqlx.DB
	svcs *app.Services
}

var current = &env{}

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Operator CLI for the invoicer backend",
	Long: `invoicectl runs invoicer operations directly against the database and
configured adapters, without going through the HTTP server.

Configuration is read from the same INVOICER_* environment variables and
.env file as the server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		level := cfg.Log.Level
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			level = "warn"
		}
		if err := logger.Setup(level, "console"); err != nil {
			return fmt.Errorf("failed to configure logger: %w", err)
		}
		current.cfg = cfg
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current.db != nil {
			return current.db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log at the configured level instead of warn")
}

// services connects to the database and builds every service on first use.
func services(ctx context.Context) (*app.Services, error) {
	if current.svcs != nil {
		return current.svcs, nil
	}
	db, err := postgres.NewDB(&current.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	adapters, err := app.NewAdapters(ctx, current.cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	current.db = db
	current.svcs = app.NewServices(db, adapters, current.cfg)
	return current.svcs, nil
}
