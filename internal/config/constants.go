package config

import "time"

// Storage backends
const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

// Defaults applied when an environment variable is unset
const (
	DefaultPort                 = 8080
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
	DefaultEnvironment          = "dev"
	DefaultServiceVersion       = "dev"
	DefaultDBName               = "packopener"
	DefaultDBMaxConns           = 20
	DefaultDBMaxConnIdleTime    = 5 * time.Minute
	DefaultDBMaxConnLifetime    = 30 * time.Minute
	DefaultLockTimeout          = 5 * time.Second
	DefaultReleaseTimeout       = 3 * time.Second
	DefaultRarityTableCacheSize = 256
	DefaultEventMaxRetries      = 5
	DefaultEventRetryDelay      = 2 * time.Second
	DefaultDeadLetterPath       = "logs/event_deadletter.jsonl"
	DefaultShutdownTimeout      = 10 * time.Second
)

// Event log retention defaults
const (
	DefaultEventLogRetention       = 30 * 24 * time.Hour
	DefaultEventLogCleanupInterval = time.Hour
	DefaultWorkerCount             = 2
)

// Error messages
const (
	ErrMsgInvalidPort     = "invalid PORT value"
	ErrMsgAPIKeyMissing   = "API_KEY environment variable must be set for security"
	ErrMsgInvalidConfig   = "invalid configuration"
	ErrMsgFieldConstraint = "%s failed %q constraint (value %v)"
)

// Startup warnings
const (
	WarnMsgSchemaUnset             = "ENV_SCHEMA_VERSION is not set (expected %s); your .env may predate this release"
	WarnMsgSchemaMismatch          = "ENV_SCHEMA_VERSION mismatch: expected %s, got %s"
	WarnMsgExampleAPIKey           = "API_KEY is the example value; generate one with: openssl rand -hex 32"
	WarnMsgExamplePassword         = "DB_PASSWORD is the example value"
	WarnMsgDemoCatalog             = "STORAGE_BACKEND is memory without CATALOG_FILE; the demo catalog will be loaded"
	WarnMsgReleaseExceedsLock      = "RELEASE_TIMEOUT %s exceeds LOCK_TIMEOUT %s"
	WarnMsgLockExceedsShutdown     = "LOCK_TIMEOUT %s is not below SHUTDOWN_TIMEOUT %s; in-flight openings may be cut off"
	WarnMsgCleanupExceedsRetention = "EVENT_LOG_CLEANUP_INTERVAL %s exceeds EVENT_LOG_RETENTION %s"
)
