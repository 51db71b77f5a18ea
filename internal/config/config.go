package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the exporter.
type Config struct {
	App          AppConfig
	API          APIConfig
	Files        FilesConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Status       StatusServerConfig
	Notification NotificationConfig
}

// AppConfig holds process level settings.
type AppConfig struct {
	Name                    string
	Env                     string
	Version                 string
	ProgressIntervalSeconds int
}

// APIConfig describes the remote ticket API.
type APIConfig struct {
	Endpoint              string
	Key                   string
	RequestDelayMS        int
	RequestTimeoutSeconds int
}

// FilesConfig holds the input and output CSV locations.
type FilesConfig struct {
	InputPath        string
	IDColumn         int
	AllTicketsPath   string
	StatusCountsPath string
}

// PostgresConfig holds DB connection values. An empty DSN disables the sink.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables the sink.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// StatusServerConfig controls the optional progress server.
type StatusServerConfig struct {
	Host string
	Port string
}

// NotificationConfig holds the optional run webhook.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	idColumn, err := strconv.Atoi(getEnv("INPUT_ID_COLUMN", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid INPUT_ID_COLUMN: %w", err)
	}
	delayMS, err := strconv.Atoi(getEnv("REQUEST_DELAY_MS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_DELAY_MS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticket-status-exporter"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),

			ProgressIntervalSeconds: getEnvAsInt("PROGRESS_LOG_INTERVAL_SECONDS", 30),
		},
		API: APIConfig{
			Endpoint:              strings.TrimSpace(os.Getenv("API_ENDPOINT")),
			Key:                   os.Getenv("API_KEY"),
			RequestDelayMS:        delayMS,
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Files: FilesConfig{
			InputPath:        getEnv("INPUT_PATH", "tickets.csv"),
			IDColumn:         idColumn,
			AllTicketsPath:   getEnv("EXPORT_ALL_TICKETS_PATH", "all_tickets_export.csv"),
			StatusCountsPath: getEnv("EXPORT_STATUS_COUNTS_PATH", "statuses_count_export.csv"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			TTLSeconds: getEnvAsInt("REDIS_TTL_SECONDS", 7*24*3600),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Status: StatusServerConfig{
			Host: getEnv("STATUS_HOST", "127.0.0.1"),
			Port: os.Getenv("STATUS_PORT"),
		},
		Notification: NotificationConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Validate reports configuration that would only surface later as failed requests.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Endpoint == "" {
		errs = append(errs, errors.New("API_ENDPOINT is required"))
	} else if u, err := url.Parse(c.API.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_ENDPOINT must be an absolute http(s) URL, got %q", c.API.Endpoint))
	}
	if c.API.Key == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	if c.API.RequestDelayMS < 0 {
		errs = append(errs, fmt.Errorf("REQUEST_DELAY_MS must not be negative, got %d", c.API.RequestDelayMS))
	}
	if c.API.RequestTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("HTTP_REQUEST_TIMEOUT_SECONDS must not be negative, got %d", c.API.RequestTimeoutSeconds))
	}
	if c.Files.IDColumn < 0 {
		errs = append(errs, fmt.Errorf("INPUT_ID_COLUMN must not be negative, got %d", c.Files.IDColumn))
	}
	if c.Files.InputPath == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if c.Files.AllTicketsPath == "" || c.Files.StatusCountsPath == "" {
		errs = append(errs, errors.New("both export paths are required"))
	}

	return errors.Join(errs...)
}

// ProgressInterval returns how often run progress is logged; zero disables it.
func (a AppConfig) ProgressInterval() time.Duration {
	if a.ProgressIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(a.ProgressIntervalSeconds) * time.Second
}

// RequestDelay returns the pause between two ticket requests.
func (a APIConfig) RequestDelay() time.Duration {
	return time.Duration(a.RequestDelayMS) * time.Millisecond
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Enabled reports whether the progress server should be started.
func (s StatusServerConfig) Enabled() bool {
	return s.Port != ""
}

// Addr returns the progress server bind address.
func (s StatusServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// TTL returns how long snapshot keys live in Redis.
func (r RedisConfig) TTL() time.Duration {
	if r.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
