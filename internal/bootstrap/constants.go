package bootstrap

// DirPermission is the permission for directories created at startup
const DirPermission = 0755

// Log messages for startup
const (
	LogMsgStarting            = "Starting PackOpener"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgEnvWarning          = "Environment warning"
)

// Event system
const (
	LogMsgEventSystemInitialized     = "Event system initialized"
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgEventLogSubscribed         = "Event log subscribed"
	ErrMsgFailedCreateDeadLetterDir  = "failed to create dead-letter directory"
	ErrMsgFailedOpenDeadLetter       = "failed to open dead-letter file"
)

// Storage
const (
	LogMsgStorageInitialized = "Storage initialized"
	LogMsgDemoCatalogSeeded  = "Demo catalog seeded"
	LogMsgSetActivatedAtBoot = "Card set activated at startup"
	ErrMsgFailedConnect      = "failed to connect to database"
	ErrMsgFailedMigrate      = "failed to run migrations"
	ErrMsgFailedLoadCatalog  = "failed to load catalog"
	ErrMsgFailedActivateSet  = "failed to activate card set"
	ErrMsgUnknownStorage     = "unknown storage backend"
)

// Background workers
const (
	LogMsgWorkersStarted = "Background workers started"
)

// Shutdown
const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgDeadLetterCloseFailed      = "Dead-letter close failed"
	LogMsgShuttingDownWorkers        = "Shutting down background workers..."
	LogMsgWorkerPoolStopFailed       = "Worker pool stop failed"
)
