package server

import "time"

// HTTP error messages for middleware responses
const (
	ErrMsgUnauthorized    = "Invalid or missing API key"
	ErrMsgTooManyRequests = "Too many requests. Please try again later."
)

// Error envelope status codes emitted by middleware
const (
	StatusUnauthorized = "unauthorized"
	StatusRateLimited  = "rate_limited"
)

// Security alert messages
const (
	SecurityAlertFailedAuth = "SECURITY ALERT: repeated failed authentication attempts"
	SecurityAlertHighRate   = "SECURITY ALERT: blocking high request rate"
)

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting   = "Server starting"
	LogMsgServerStopping   = "Server stopping"
	LogMsgRequestStarted   = "Request started"
	LogMsgRequestCompleted = "Request completed"
	LogMsgRequestHeaders   = "Request headers"
	LogMsgAuthFailed       = "Authentication failed"
)

// HTTP header names
const (
	HeaderAPIKey         = "X-API-Key"
	HeaderAuthorization  = "Authorization"
	HeaderRequestID      = "X-Request-ID"
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderContentType    = "X-Content-Type-Options"
	HeaderFrameOptions   = "X-Frame-Options"
	HeaderXSSProtection  = "X-XSS-Protection"
	HeaderReferrerPolicy = "Referrer-Policy"
)

// Security header values
const (
	HeaderValueNoSniff              = "nosniff"
	HeaderValueSameOrigin           = "SAMEORIGIN"
	HeaderValueXSSBlock             = "1; mode=block"
	HeaderValueReferrerStrictOrigin = "strict-origin-when-cross-origin"
)

// Request limits
const (
	MaxRequestBodyBytes = 64 << 10
	MaxRequestIDHeader  = 128
	ReadHeaderTimeout   = 5 * time.Second
)

// Rate limiting defaults
const (
	DefaultRateWindow        = 5 * time.Minute
	DefaultMaxRequestsPerIP  = 1000
	DefaultFailedAuthAlertAt = 5
)

// SwaggerPath serves the API documentation UI
const SwaggerPath = "/swagger/"

// PublicPaths bypass authentication
var PublicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
	"/version",
	SwaggerPath,
}

// RedactedValue replaces secrets in logged headers
const RedactedValue = "[REDACTED]"
