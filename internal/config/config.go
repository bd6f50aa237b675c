package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           int    `env:"PORT" validate:"min=1,max=65535"`
	LogLevel       string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat      string `env:"LOG_FORMAT" validate:"oneof=text json"`
	Environment    string `env:"ENVIRONMENT" validate:"required"`
	ServiceVersion string `env:"SERVICE_VERSION"`

	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBHost            string        `env:"DB_HOST"`
	DBPort            string        `env:"DB_PORT"`
	DBName            string        `env:"DB_NAME"`
	DBMaxConns        int           `env:"DB_MAX_CONNS" validate:"min=1"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE" validate:"min=1s"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" validate:"min=1s"`

	StorageBackend       string        `env:"STORAGE_BACKEND" validate:"oneof=postgres memory"`
	CatalogFile          string        `env:"CATALOG_FILE"`
	LockTimeout          time.Duration `env:"LOCK_TIMEOUT" validate:"min=1ms"`
	ReleaseTimeout       time.Duration `env:"RELEASE_TIMEOUT" validate:"min=1ms"`
	RarityTableCacheSize int           `env:"RARITY_TABLE_CACHE_SIZE" validate:"min=1"`

	EventMaxRetries int           `env:"EVENT_MAX_RETRIES" validate:"min=0"`
	EventRetryDelay time.Duration `env:"EVENT_RETRY_DELAY" validate:"min=1ms"`
	DeadLetterPath  string        `env:"EVENT_DEADLETTER_PATH" validate:"required"`

	EventLogRetention       time.Duration `env:"EVENT_LOG_RETENTION" validate:"min=1h"`
	EventLogCleanupInterval time.Duration `env:"EVENT_LOG_CLEANUP_INTERVAL" validate:"min=1s"`
	WorkerCount             int           `env:"WORKER_COUNT" validate:"min=1"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"min=1ms"`

	APIKey string `env:"API_KEY"` // API key for authentication
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		Environment:    getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceVersion: getEnv("SERVICE_VERSION", DefaultServiceVersion),

		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", DefaultDBName),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		StorageBackend:       strings.ToLower(getEnv("STORAGE_BACKEND", StorageBackendPostgres)),
		CatalogFile:          getEnv("CATALOG_FILE", ""),
		LockTimeout:          getEnvAsDuration("LOCK_TIMEOUT", DefaultLockTimeout),
		ReleaseTimeout:       getEnvAsDuration("RELEASE_TIMEOUT", DefaultReleaseTimeout),
		RarityTableCacheSize: getEnvAsInt("RARITY_TABLE_CACHE_SIZE", DefaultRarityTableCacheSize),

		EventMaxRetries: getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries),
		EventRetryDelay: getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay),
		DeadLetterPath:  getEnv("EVENT_DEADLETTER_PATH", DefaultDeadLetterPath),

		EventLogRetention:       getEnvAsDuration("EVENT_LOG_RETENTION", DefaultEventLogRetention),
		EventLogCleanupInterval: getEnvAsDuration("EVENT_LOG_CLEANUP_INTERVAL", DefaultEventLogCleanupInterval),
		WorkerCount:             getEnvAsInt("WORKER_COUNT", DefaultWorkerCount),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),

		APIKey: getEnv("API_KEY", ""),
	}

	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidPort, err)
	}
	cfg.Port = port

	if cfg.APIKey == "" {
		return nil, errors.New(ErrMsgAPIKeyMissing)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct constraints and reports every failing field by its env name.
func (c *Config) Validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", ErrMsgInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf(ErrMsgFieldConstraint, envName(fe.StructField()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%s: %s", ErrMsgInvalidConfig, strings.Join(msgs, "; "))
}

// UsesMemoryStorage reports whether the in-memory backend is selected.
func (c *Config) UsesMemoryStorage() bool {
	return c.StorageBackend == StorageBackendMemory
}

// GetDBConnString returns a postgres:// URL. Credentials are escaped, so
// passwords may contain any character.
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default when unset or malformed
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a Go duration string, falling back to the default when unset or malformed
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
