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

// Notification metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventPublishErrors = "event_publish_errors_total"
	MetricNameEventsHandled      = "events_handled_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
	MetricNameEventsDeduplicated = "events_deduplicated_total"
)

// Business metric names
const (
	MetricNameTradesCreated       = "trades_created_total"
	MetricNameTradesResolved      = "trades_resolved_total"
	MetricNameTradeConflicts      = "trade_conflicts_total"
	MetricNameSwapInconsistencies = "swap_inconsistencies_total"
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

// Notification metric help text
const (
	HelpTextEventsPublished    = "Total number of notification events published"
	HelpTextEventPublishErrors = "Total number of notification publish failures"
	HelpTextEventsHandled      = "Total number of notification events handled"
	HelpTextEventHandlerErrors = "Total number of notification handler errors"
	HelpTextEventsDeduplicated = "Total number of redelivered events absorbed by the dedupe cache"
)

// Business metric help text
const (
	HelpTextTradesCreated       = "Total number of trades created"
	HelpTextTradesResolved      = "Total number of trades resolved to a terminal status"
	HelpTextTradeConflicts      = "Total number of trade acceptances aborted by a swap conflict"
	HelpTextSwapInconsistencies = "Total number of swaps that left inventories needing manual reconciliation"
)

// ============================================================================
// Metric Label Names
// ============================================================================

const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
