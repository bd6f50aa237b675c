package logger

// Level names accepted in LOG_LEVEL
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Handler formats accepted in LOG_FORMAT
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

const (
	DefaultServiceName = "pack-opener"
	DefaultVersion     = "dev"
)

// Environments that change logging defaults
const (
	EnvironmentDev         = "dev"
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "prod"
)

// Attribute keys attached by this package
const (
	AttrKeyService        = "service"
	AttrKeyVersion        = "version"
	AttrKeyEnvironment    = "environment"
	AttrKeyRequestID      = "request_id"
	AttrKeyUserID         = "user_id"
	AttrKeyIdempotencyKey = "idempotency_key"
)
