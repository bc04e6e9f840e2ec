package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Email      EmailConfig
	Drive      DriveConfig
	Summarizer SummarizerConfig
	Redis      RedisConfig
	App        AppConfig
	External   ExternalConfig
	Scheduler  SchedulerConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether bearer tokens are required.
func (a AuthConfig) Enabled() bool {
	return a.Secret != ""
}

// StorageConfig holds object storage settings for invoice PDFs.
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider       string `mapstructure:"provider"`
	Region         string `mapstructure:"region"`
	FromAddress    string `mapstructure:"from_address"`
	FromName       string `mapstructure:"from_name"`
	ResendAPIKey   string `mapstructure:"resend_api_key"`
	ResendEndpoint string `mapstructure:"resend_endpoint"`
}

// DefaultFrom formats the fallback sender address.
func (e EmailConfig) DefaultFrom() string {
	if e.FromName == "" {
		return e.FromAddress
	}
	return fmt.Sprintf("%s <%s>", e.FromName, e.FromAddress)
}

// DriveConfig holds the OAuth client used for Google Drive archival.
type DriveConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// Configured reports whether all credentials are present.
func (d DriveConfig) Configured() bool {
	return d.ClientID != "" && d.ClientSecret != "" && d.RefreshToken != ""
}

// SummarizerConfig points at an OpenAI-compatible chat endpoint.
type SummarizerConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// RedisConfig holds the signed URL cache settings. An empty address disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AppConfig holds business behavior settings.
type AppConfig struct {
	Timezone     string `mapstructure:"timezone"`
	DefaultTerms string `mapstructure:"default_terms"`
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExternalConfig bounds calls to external collaborators.
type ExternalConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig drives the reminder trigger process.
type SchedulerConfig struct {
	Cron      string `mapstructure:"cron"`
	ServerURL string `mapstructure:"server_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from a .env file, when present, and environment
// variables with the INVOICER_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("INVOICER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoicer")
	v.SetDefault("db.password", "invoicer_secret")
	v.SetDefault("db.name", "invoicer_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Auth defaults
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "invoicer")
	v.SetDefault("auth.token_ttl", "5m")

	// Storage defaults
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "invoices")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.presign_expiry", 300)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "invoices@example.com")
	v.SetDefault("email.from_name", "Invoicer")
	v.SetDefault("email.resend_endpoint", "https://api.resend.com/emails")

	// Summarizer defaults (Ollama's OpenAI-compatible API)
	v.SetDefault("summarizer.base_url", "http://host.docker.internal:11434/v1")
	v.SetDefault("summarizer.api_key", "ollama")
	v.SetDefault("summarizer.model", "llama3.2")
	v.SetDefault("summarizer.temperature", 0.3)
	v.SetDefault("summarizer.max_tokens", 50)
	v.SetDefault("summarizer.timeout_secs", 60)

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)

	// App defaults
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.default_terms", "Please make the payment by the due date.")

	v.SetDefault("external.timeout", "30s")

	// Scheduler defaults: every day at 20:00
	v.SetDefault("scheduler.cron", "0 20 * * *")
	v.SetDefault("scheduler.server_url", "http://localhost:8080")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "INVOICER_SERVER_PORT",
		"server.read_timeout":     "INVOICER_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "INVOICER_SERVER_WRITE_TIMEOUT",
		"server.environment":      "INVOICER_SERVER_ENVIRONMENT",
		"db.host":                 "INVOICER_DB_HOST",
		"db.port":                 "INVOICER_DB_PORT",
		"db.user":                 "INVOICER_DB_USER",
		"db.password":             "INVOICER_DB_PASSWORD",
		"db.name":                 "INVOICER_DB_NAME",
		"db.sslmode":              "INVOICER_DB_SSLMODE",
		"db.max_open":             "INVOICER_DB_MAX_OPEN",
		"db.max_idle":             "INVOICER_DB_MAX_IDLE",
		"auth.secret":             "INVOICER_AUTH_SECRET",
		"auth.issuer":             "INVOICER_AUTH_ISSUER",
		"auth.token_ttl":          "INVOICER_AUTH_TOKEN_TTL",
		"storage.provider":        "INVOICER_STORAGE_PROVIDER",
		"storage.region":          "INVOICER_STORAGE_REGION",
		"storage.bucket":          "INVOICER_STORAGE_BUCKET",
		"storage.endpoint":        "INVOICER_STORAGE_ENDPOINT",
		"storage.access_key":      "INVOICER_STORAGE_ACCESS_KEY",
		"storage.secret_key":      "INVOICER_STORAGE_SECRET_KEY",
		"storage.use_ssl":         "INVOICER_STORAGE_USE_SSL",
		"storage.presign_expiry":  "INVOICER_STORAGE_PRESIGN_EXPIRY",
		"email.provider":          "INVOICER_EMAIL_PROVIDER",
		"email.region":            "INVOICER_EMAIL_REGION",
		"email.from_address":      "INVOICER_EMAIL_FROM_ADDRESS",
		"email.from_name":         "INVOICER_EMAIL_FROM_NAME",
		"email.resend_endpoint":   "INVOICER_EMAIL_RESEND_ENDPOINT",
		"summarizer.base_url":     "INVOICER_SUMMARIZER_BASE_URL",
		"summarizer.api_key":      "INVOICER_SUMMARIZER_API_KEY",
		"summarizer.model":        "INVOICER_SUMMARIZER_MODEL",
		"summarizer.temperature":  "INVOICER_SUMMARIZER_TEMPERATURE",
		"summarizer.max_tokens":   "INVOICER_SUMMARIZER_MAX_TOKENS",
		"summarizer.timeout_secs": "INVOICER_SUMMARIZER_TIMEOUT_SECS",
		"redis.addr":              "INVOICER_REDIS_ADDR",
		"redis.password":          "INVOICER_REDIS_PASSWORD",
		"redis.db":                "INVOICER_REDIS_DB",
		"app.timezone":            "INVOICER_APP_TIMEZONE",
		"app.default_terms":       "INVOICER_APP_DEFAULT_TERMS",
		"external.timeout":        "INVOICER_EXTERNAL_TIMEOUT",
		"scheduler.cron":          "INVOICER_SCHEDULER_CRON",
		"scheduler.server_url":    "INVOICER_SCHEDULER_SERVER_URL",
		"log.level":               "INVOICER_LOG_LEVEL",
		"log.format":              "INVOICER_LOG_FORMAT",
		"cors.allowed_origins":    "INVOICER_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// Keys that also honor the variable names used by existing deployments.
	aliasBindings := map[string][]string{
		"drive.client_id":      {"INVOICER_DRIVE_CLIENT_ID", "GOOGLE_CLIENT_ID"},
		"drive.client_secret":  {"INVOICER_DRIVE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET"},
		"drive.refresh_token":  {"INVOICER_DRIVE_REFRESH_TOKEN", "GOOGLE_REFRESH_TOKEN"},
		"email.resend_api_key": {"INVOICER_EMAIL_RESEND_API_KEY", "RESEND_API_KEY"},
	}
	for key, envs := range aliasBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Auth = AuthConfig{
		Secret:   v.GetString("auth.secret"),
		Issuer:   v.GetString("auth.issuer"),
		TokenTTL: v.GetDuration("auth.token_ttl"),
	}
	cfg.Storage = StorageConfig{
		Provider:      strings.ToLower(v.GetString("storage.provider")),
		Region:        v.GetString("storage.region"),
		Bucket:        v.GetString("storage.bucket"),
		Endpoint:      v.GetString("storage.endpoint"),
		AccessKey:     v.GetString("storage.access_key"),
		SecretKey:     v.GetString("storage.secret_key"),
		UseSSL:        v.GetBool("storage.use_ssl"),
		PresignExpiry: v.GetInt64("storage.presign_expiry"),
	}
	cfg.Email = EmailConfig{
		Provider:       strings.ToLower(v.GetString("email.provider")),
		Region:         v.GetString("email.region"),
		FromAddress:    v.GetString("email.from_address"),
		FromName:       v.GetString("email.from_name"),
		ResendAPIKey:   v.GetString("email.resend_api_key"),
		ResendEndpoint: v.GetString("email.resend_endpoint"),
	}
	cfg.Drive = DriveConfig{
		ClientID:     v.GetString("drive.client_id"),
		ClientSecret: v.GetString("drive.client_secret"),
		RefreshToken: v.GetString("drive.refresh_token"),
	}
	cfg.Summarizer = SummarizerConfig{
		BaseURL:     v.GetString("summarizer.base_url"),
		APIKey:      v.GetString("summarizer.api_key"),
		Model:       v.GetString("summarizer.model"),
		Temperature: float32(v.GetFloat64("summarizer.temperature")),
		MaxTokens:   v.GetInt("summarizer.max_tokens"),
		TimeoutSecs: v.GetInt("summarizer.timeout_secs"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.App = AppConfig{
		Timezone:     v.GetString("app.timezone"),
		DefaultTerms: v.GetString("app.default_terms"),
	}
	cfg.External = ExternalConfig{
		Timeout: v.GetDuration("external.timeout"),
	}
	cfg.Scheduler = SchedulerConfig{
		Cron:      v.GetString("scheduler.cron"),
		ServerURL: v.GetString("scheduler.server_url"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return nil, fmt.Errorf("invalid app timezone %q: %w", cfg.App.Timezone, err)
	}

	return cfg, nil
}
