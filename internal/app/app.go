// Package app wires configuration into repositories, adapters and services.
// Both the HTTP server and the operator CLI build their dependencies here.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"invoicer/internal/archive/gdrive"
	rediscache "invoicer/internal/cache/redis"
	"invoicer/internal/config"
	"invoicer/internal/email/noop"
	"invoicer/internal/email/resend"
	"invoicer/internal/email/ses"
	"invoicer/internal/logger"
	"invoicer/internal/pdf"
	"invoicer/internal/port"
	"invoicer/internal/repository/postgres"
	"invoicer/internal/service"
	"invoicer/internal/storage/minio"
	s3storage "invoicer/internal/storage/s3"
	"invoicer/internal/summarizer/openai"
)

// Services holds every service built from configuration.
type Services struct {
	Clients   service.ClientService
	Invoices  service.InvoiceService
	Templates service.TemplateService
	Settings  service.SettingsService
	Dispatch  service.DispatchService
	Reminders service.ReminderService
	Summary   service.SummaryService
	Stats     service.StatsService
}

// Adapters holds the external collaborators. URLCache and Archiver are nil
// when their backends are not configured.
type Adapters struct {
	Storage    port.ObjectStorage
	Mailer     port.Mailer
	URLCache   port.URLCache
	Archiver   port.FolderArchiver
	Summarizer port.Summarizer
}

// NewAdapters connects the external collaborators selected by cfg.
func NewAdapters(ctx context.Context, cfg *config.Config) (*Adapters, error) {
	log := logger.WithComponent("app")
	a := &Adapters{}

	var err error
	a.Storage, err = newStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.Mailer, err = newMailer(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		a.URLCache = rediscache.NewURLCache(ctx, &cfg.Redis)
	} else {
		log.Info().Msg("redis not configured, signed URLs will not be cached")
	}

	if cfg.Drive.Configured() {
		archiver, err := gdrive.NewDriveClient(ctx, &cfg.Drive, &http.Client{Timeout: cfg.External.Timeout})
		if err != nil {
			return nil, fmt.Errorf("initializing google drive: %w", err)
		}
		a.Archiver = archiver
	} else {
		log.Info().Msg("google drive credentials not configured, archival disabled")
	}

	a.Summarizer = openai.NewSummarizer(&cfg.Summarizer)
	logAdapters(log, cfg)
	return a, nil
}

func newStorage(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	switch strings.ToLower(cfg.Provider) {
	case "minio":
		store, err := minio.NewMinioClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing minio storage: %w", err)
		}
		return store, nil
	case "s3", "":
		store, err := s3storage.NewS3Client(cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing s3 storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func newMailer(cfg *config.Config) (port.Mailer, error) {
	switch strings.ToLower(cfg.Email.Provider) {
	case "ses":
		mailer, err := ses.NewSESSender(cfg.Email.Region)
		if err != nil {
			return nil, fmt.Errorf("initializing ses mailer: %w", err)
		}
		return mailer, nil
	case "resend":
		return resend.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.ResendEndpoint, cfg.External.Timeout), nil
	case "noop", "":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}

func logAdapters(log zerolog.Logger, cfg *config.Config) {
	log.Info().
		Str("storage", cfg.Storage.Provider).
		Str("bucket", cfg.Storage.Bucket).
		Str("email", cfg.Email.Provider).
		Str("summarizer_model", cfg.Summarizer.Model).
		Str("timezone", cfg.App.Timezone).
		Msg("adapters initialized")
}

// NewServices builds every service on top of db and the adapters.
func NewServices(db *sqlx.DB, a *Adapters, cfg *config.Config) *Services {
	clientRepo := postgres.NewClientRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	templateRepo := postgres.NewTemplateRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	clock := service.SystemClock(cfg.App.Location())

	return &Services{
		Clients:   service.NewClientService(clientRepo, templateRepo),
		Templates: service.NewTemplateService(templateRepo),
		Settings:  service.NewSettingsService(settingsRepo),
		Invoices: service.NewInvoiceService(
			invoiceRepo, clientRepo, settingsRepo, a.Storage, a.URLCache,
			cfg.Storage.Bucket, cfg.App.DefaultTerms, clock,
		),
		Dispatch: service.NewDispatchService(
			invoiceRepo, templateRepo, settingsRepo, a.Storage, a.URLCache, a.Mailer, a.Archiver,
			pdf.NewRenderer(),
			service.DispatchConfig{
				Bucket:        cfg.Storage.Bucket,
				PresignExpiry: cfg.Storage.PresignExpiry,
				DefaultFrom:   cfg.Email.DefaultFrom(),
				DefaultTerms:  cfg.App.DefaultTerms,
				Timeout:       cfg.External.Timeout,
			},
			clock,
		),
		Reminders: service.NewReminderService(clientRepo, invoiceRepo, settingsRepo, a.Mailer, clock, cfg.External.Timeout),
		Summary:   service.NewSummaryService(a.Summarizer),
		Stats:     service.NewStatsService(statsRepo, clock),
	}
}
