package metrics

// ============================================================================
// Metric Names
// ============================================================================

// UnmatchedRoute labels requests that matched no chi route.
const UnmatchedRoute = "unmatched"

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Opening metric names
const (
	MetricNameOpeningsTotal        = "openings_total"
	MetricNameOpeningDuration      = "opening_duration_seconds"
	MetricNameOpeningsCommitted    = "openings_committed_total"
	MetricNameOpeningValue         = "opening_value_minor_units_total"
	MetricNameCardsDrawn           = "cards_drawn_total"
	MetricNameReplays              = "opening_replays_total"
	MetricNameCompensatingReleases = "stock_compensating_releases_total"
	MetricNameLockWait             = "user_lock_wait_seconds"
	MetricNameLockTimeouts         = "user_lock_timeouts_total"
	MetricNameInventoryDrift       = "inventory_drift_repairs_total"
	MetricNameSetActivations       = "card_set_activations_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Opening metric help text
const (
	HelpTextOpeningsTotal        = "Total number of opening requests by product kind and outcome"
	HelpTextOpeningDuration      = "Opening latency in seconds from request to commit"
	HelpTextOpeningsCommitted    = "Total number of openings committed to the ledger"
	HelpTextOpeningValue         = "Total snapshot value credited to inventories"
	HelpTextCardsDrawn           = "Total number of cards drawn by rarity"
	HelpTextReplays              = "Total number of requests answered from the dedup record"
	HelpTextCompensatingReleases = "Total number of stock reservations released after a failed opening"
	HelpTextLockWait             = "Time spent waiting for the per-user lock"
	HelpTextLockTimeouts         = "Total number of per-user lock acquisitions that timed out"
	HelpTextInventoryDrift       = "Total number of inventories whose cached totals were repaired"
	HelpTextSetActivations       = "Total number of card set activation attempts by outcome"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelKind    = "kind"
	LabelOutcome = "outcome"
	LabelRarity  = "rarity"
)

// Outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeFailed   = "failed"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, ranging from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// LockWaitBuckets spans uncontended acquisition up to the default lock timeout.
var LockWaitBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgPayloadDecodeFailed = "Failed to decode event payload for metrics"
)
