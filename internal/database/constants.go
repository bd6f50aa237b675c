package database

// Pool settings
const (
	DefaultMinConnections int32 = 2

	ApplicationName             = "pack-opener"
	RuntimeParamApplicationName = "application_name"
	RuntimeParamLockTimeout     = "lock_timeout"
)

// Migration Constants
const (
	MigrationDialect = "postgres"
	MigrationsDir    = "migrations"
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToSetDialect      = "failed to set migration dialect"
	ErrMsgFailedToMigrate         = "failed to apply migrations"
)

// Error Messages - Provisioning
const (
	ErrMsgFailedToConnectAdmin   = "failed to connect to admin database"
	ErrMsgFailedToCheckDatabase  = "failed to check database existence"
	ErrMsgFailedToDropDatabase   = "failed to drop database"
	ErrMsgFailedToCreateDatabase = "failed to create database"
)

// Log Messages
const (
	LogMsgConnected               = "Connected to the database"
	LogMsgMigrationsApplied       = "Database migrations applied"
	LogMsgDatabaseCreated         = "Database created"
	LogMsgDatabaseDropped         = "Database dropped"
	LogMsgTerminateSessionsFailed = "Failed to terminate database sessions"
)
