package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Opening Metrics
var (
	OpeningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOpeningsTotal,
			Help: HelpTextOpeningsTotal,
		},
		[]string{LabelKind, LabelOutcome},
	)

	OpeningDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameOpeningDuration,
			Help:    HelpTextOpeningDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelKind},
	)

	OpeningsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOpeningsCommitted,
			Help: HelpTextOpeningsCommitted,
		},
		[]string{LabelKind},
	)

	OpeningValue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameOpeningValue,
			Help: HelpTextOpeningValue,
		},
	)

	CardsDrawn = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCardsDrawn,
			Help: HelpTextCardsDrawn,
		},
		[]string{LabelRarity},
	)

	Replays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameReplays,
			Help: HelpTextReplays,
		},
		[]string{LabelKind},
	)

	CompensatingReleases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCompensatingReleases,
			Help: HelpTextCompensatingReleases,
		},
		[]string{LabelKind, LabelOutcome},
	)
)

// Ledger Metrics
var (
	LockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameLockWait,
			Help:    HelpTextLockWait,
			Buckets: LockWaitBuckets,
		},
	)

	LockTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLockTimeouts,
			Help: HelpTextLockTimeouts,
		},
	)

	InventoryDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameInventoryDrift,
			Help: HelpTextInventoryDrift,
		},
	)

	SetActivations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSetActivations,
			Help: HelpTextSetActivations,
		},
		[]string{LabelOutcome},
	)
)
