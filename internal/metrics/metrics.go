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

// Notification Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventPublishErrors,
			Help: HelpTextEventPublishErrors,
		},
		[]string{LabelType},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsHandled,
			Help: HelpTextEventsHandled,
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

	EventsDeduplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsDeduplicated,
			Help: HelpTextEventsDeduplicated,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	TradesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTradesCreated,
			Help: HelpTextTradesCreated,
		},
	)

	TradesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTradesResolved,
			Help: HelpTextTradesResolved,
		},
		[]string{LabelStatus},
	)

	TradeConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTradeConflicts,
			Help: HelpTextTradeConflicts,
		},
	)

	SwapInconsistencies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSwapInconsistencies,
			Help: HelpTextSwapInconsistencies,
		},
	)
)
