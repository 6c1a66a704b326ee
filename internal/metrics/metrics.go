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

// Business Metrics
var (
	VisitsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameVisitsAccepted,
			Help: HelpTextVisitsAccepted,
		},
		[]string{LabelKind},
	)

	VisitsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameVisitsRejected,
			Help: HelpTextVisitsRejected,
		},
		[]string{LabelKind, LabelReason},
	)

	XPGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameXPGranted,
			Help: HelpTextXPGranted,
		},
	)

	ClaimPointsGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameClaimPoints,
			Help: HelpTextClaimPoints,
		},
	)

	LevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLevelUps,
			Help: HelpTextLevelUps,
		},
	)

	LootSpawned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLootSpawned,
			Help: HelpTextLootSpawned,
		},
	)

	LootCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLootCollected,
			Help: HelpTextLootCollected,
		},
	)

	LootExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLootExpired,
			Help: HelpTextLootExpired,
		},
	)

	ClaimDecaySweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameClaimDecaySweeps,
			Help: HelpTextClaimDecaySweeps,
		},
	)

	BuffsGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBuffsGranted,
			Help: HelpTextBuffsGranted,
		},
	)

	PlayersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePlayersRegistered,
			Help: HelpTextPlayersRegistered,
		},
	)
)
