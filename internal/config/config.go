package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"karhubty-backend/internal/storage"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Events    EventsConfig    `yaml:"events"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// ServerConfig contains HTTP and gRPC health server settings
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	HealthPort      int      `yaml:"health_port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSec int      `yaml:"write_timeout_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// EmailConfig selects the email backend
type EmailConfig struct {
	Provider       string `yaml:"provider"` // "smtp", "sendgrid" or "log"
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromName       string `yaml:"from_name"`
	FrontendURL    string `yaml:"frontend_url"` // Base of links embedded in emails
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	Type                string `yaml:"type"`       // "local" or "s3"
	UploadDir           string `yaml:"upload_dir"` // For local storage
	BaseURL             string `yaml:"base_url"`   // Server base URL for local download links
	PresignedExpiration string `yaml:"presigned_expiration"`
	S3Bucket            string `yaml:"s3_bucket"`
	S3Region            string `yaml:"s3_region"`
	S3Endpoint          string `yaml:"s3_endpoint"`
	S3AccessKeyID       string `yaml:"s3_access_key_id"`
	S3SecretAccessKey   string `yaml:"s3_secret_access_key"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig tunes the booking engine
type BookingConfig struct {
	// SameDayTurnover lets a rental start on the day another one ends.
	SameDayTurnover bool `yaml:"same_day_turnover"`
}

// EventsConfig sizes the domain event dispatcher
type EventsConfig struct {
	Workers        int `yaml:"workers"`
	QueueSize      int `yaml:"queue_size"`
	MaxRetries     int `yaml:"max_retries"`
	BaseBackoffMs  int `yaml:"base_backoff_ms"`
	ShutdownWaitMs int `yaml:"shutdown_wait_ms"`
}

// RabbitMQConfig enables forwarding of domain events to a broker
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CompleteEndedRentals      string `yaml:"complete_ended_rentals"`
	ExpireStalePendingRentals string `yaml:"expire_stale_pending_rentals"`
	RemindPendingDocuments    string `yaml:"remind_pending_documents"`
}

// RateLimitConfig throttles API clients by IP
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`

	// TrustedProxies lists CIDRs or IPs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML, applying environment overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	// SMTP
	envString("SMTP_HOST", &c.SMTP.Host)
	envInt("SMTP_PORT", &c.SMTP.Port)
	envString("SMTP_USER", &c.SMTP.User)
	envString("SMTP_PASSWORD", &c.SMTP.Password)
	envString("SMTP_FROM", &c.SMTP.From)

	// Email
	envString("EMAIL_PROVIDER", &c.Email.Provider)
	envString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	envString("FRONTEND_URL", &c.Email.FrontendURL)

	// JWT
	envString("JWT_SECRET", &c.JWT.Secret)

	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)
	envInt("SERVER_HEALTH_PORT", &c.Server.HealthPort)

	// Storage
	envString("STORAGE_TYPE", &c.Storage.Type)
	envString("UPLOAD_DIR", &c.Storage.UploadDir)
	envString("STORAGE_BASE_URL", &c.Storage.BaseURL)
	envString("STORAGE_S3_BUCKET", &c.Storage.S3Bucket)
	envString("STORAGE_S3_REGION", &c.Storage.S3Region)
	envString("STORAGE_S3_ENDPOINT", &c.Storage.S3Endpoint)
	envString("AWS_ACCESS_KEY_ID", &c.Storage.S3AccessKeyID)
	envString("AWS_SECRET_ACCESS_KEY", &c.Storage.S3SecretAccessKey)

	// RabbitMQ
	envString("AMQP_URL", &c.RabbitMQ.URL)
	envBool("AMQP_ENABLED", &c.RabbitMQ.Enabled)

	// Booking
	envBool("BOOKING_SAME_DAY_TURNOVER", &c.Booking.SameDayTurnover)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.HealthPort < 0 || c.Server.HealthPort > 65535 {
		return fmt.Errorf("invalid health port: %d", c.Server.HealthPort)
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 15
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 30
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Email validation
	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	switch c.Email.Provider {
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	case "log":
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "KarHubty"
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 24 * 60
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	// RabbitMQ validation
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("AMQP url is required when rabbitmq is enabled")
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "karhubty.events"
	}

	// Events defaults
	if c.Events.Workers == 0 {
		c.Events.Workers = 2
	}
	if c.Events.QueueSize == 0 {
		c.Events.QueueSize = 256
	}
	if c.Events.MaxRetries == 0 {
		c.Events.MaxRetries = 3
	}
	if c.Events.BaseBackoffMs == 0 {
		c.Events.BaseBackoffMs = 1000
	}
	if c.Events.ShutdownWaitMs == 0 {
		c.Events.ShutdownWaitMs = 10000
	}

	// Rate limit defaults
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}

	// Scheduler defaults
	if c.Scheduler.CompleteEndedRentals == "" {
		c.Scheduler.CompleteEndedRentals = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.ExpireStalePendingRentals == "" {
		c.Scheduler.ExpireStalePendingRentals = "0 30 1 * * *" // 1:30 AM UTC
	}
	if c.Scheduler.RemindPendingDocuments == "" {
		c.Scheduler.RemindPendingDocuments = "0 0 9 * * *" // Daily at 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP API address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHealthAddress returns the gRPC health address, or "" when disabled
func (c *Config) GetHealthAddress() string {
	if c.Server.HealthPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HealthPort)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

func (e EventsConfig) BaseBackoff() time.Duration {
	return time.Duration(e.BaseBackoffMs) * time.Millisecond
}

func (e EventsConfig) ShutdownWait() time.Duration {
	return time.Duration(e.ShutdownWaitMs) * time.Millisecond
}

// StorageConfig converts the storage section for storage.NewStorage.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Type:                c.Storage.Type,
		LocalDir:            c.Storage.UploadDir,
		BaseURL:             c.Storage.BaseURL,
		PresignedExpiration: c.Storage.PresignedExpiration,
		S3Bucket:            c.Storage.S3Bucket,
		S3Region:            c.Storage.S3Region,
		S3Endpoint:          c.Storage.S3Endpoint,
		S3AccessKeyID:       c.Storage.S3AccessKeyID,
		S3SecretAccessKey:   c.Storage.S3SecretAccessKey,
	}
}
