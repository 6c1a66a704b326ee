package metrics

// ============================================================================
// Metric Names
// ============================================================================

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

// Business metric names
const (
	MetricNameVisitsAccepted    = "visits_accepted_total"
	MetricNameVisitsRejected    = "visits_rejected_total"
	MetricNameXPGranted         = "xp_granted_total"
	MetricNameClaimPoints       = "claim_points_granted_total"
	MetricNameLevelUps          = "level_ups_total"
	MetricNameLootSpawned       = "loot_spawned_total"
	MetricNameLootCollected     = "loot_collected_total"
	MetricNameLootExpired       = "loot_expired_total"
	MetricNameClaimDecaySweeps  = "claim_decay_sweeps_total"
	MetricNameBuffsGranted      = "buffs_granted_total"
	MetricNamePlayersRegistered = "players_registered_total"
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

// Business metric help text
const (
	HelpTextVisitsAccepted    = "Total number of accepted visit logs"
	HelpTextVisitsRejected    = "Total number of rejected visit attempts"
	HelpTextXPGranted         = "Total XP granted to players"
	HelpTextClaimPoints       = "Total claim points granted to players"
	HelpTextLevelUps          = "Total number of player level ups"
	HelpTextLootSpawned       = "Total number of loot spots spawned"
	HelpTextLootCollected     = "Total number of loot spots collected"
	HelpTextLootExpired       = "Total number of loot spots expired uncollected"
	HelpTextClaimDecaySweeps  = "Total number of claim decay sweeps"
	HelpTextBuffsGranted      = "Total number of buffs granted"
	HelpTextPlayersRegistered = "Total number of players registered"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelKind   = "kind"   // auto or manual
	LabelReason = "reason" // rejection reason
)

// Visit rejection reasons
const (
	ReasonCooldown   = "cooldown"
	ReasonOutOfRange = "out_of_range"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
)
