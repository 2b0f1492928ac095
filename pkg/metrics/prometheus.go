// Package metrics provides Prometheus metrics for the risk dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Inbound HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Outbound calls to the scoring / visualization service
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	// Document store lookups
	personalLookups        *prometheus.CounterVec
	personalLookupDuration prometheus.Histogram

	// Business outcomes
	predictions         *prometheus.CounterVec
	feedbackSubmissions *prometheus.CounterVec
	visualizations      *prometheus.CounterVec
	topicSelections     *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry *prometheus.Registry //nolint:gochecknoglobals // private registry without default collectors

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init rebuilds the global manager on a fresh private registry. Call it once
// at startup, before any request is served; a registry passed through
// WithPrometheusRegistry is ignored.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a metrics manager. Collectors register on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "riskboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Inbound HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "Inbound HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Calls to the scoring service by operation and outcome",
		ConstLabels: m.constLabels,
	}, []string{"operation", "outcome"})

	m.upstreamDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_request_duration_milliseconds",
		Help:        "Scoring service call duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.personalLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "personal_lookups_total",
		Help:        "Document store personal-data lookups by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.personalLookupDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "personal_lookup_duration_milliseconds",
		Help:        "Document store lookup duration including connect and disconnect",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "predictions_total",
		Help:        "Predictions rendered by risk category",
		ConstLabels: m.constLabels,
	}, []string{"category"})

	m.feedbackSubmissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feedback_submissions_total",
		Help:        "Feedback submissions by sentiment and result",
		ConstLabels: m.constLabels,
	}, []string{"sentiment", "result"})

	m.visualizations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "visualizations_total",
		Help:        "Visualization requests by analysis type and result",
		ConstLabels: m.constLabels,
	}, []string{"analysis_type", "result"})

	m.topicSelections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "topic_selections_total",
		Help:        "Sidebar topic renders by topic code",
		ConstLabels: m.constLabels,
	}, []string{"topic"})
}

// RecordHTTPRequest counts one inbound request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordUpstream counts one scoring service call.
func (m *Manager) RecordUpstream(operation, outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
	m.upstreamDuration.WithLabelValues(operation).Observe(durationMs)
}

// RecordPersonalLookup counts one document store lookup.
func (m *Manager) RecordPersonalLookup(outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.personalLookups.WithLabelValues(outcome).Inc()
	m.personalLookupDuration.Observe(durationMs)
}

// RecordPrediction counts one rendered prediction.
func (m *Manager) RecordPrediction(category string) {
	if !m.enabled {
		return
	}
	m.predictions.WithLabelValues(category).Inc()
}

// RecordFeedback counts one feedback submission.
func (m *Manager) RecordFeedback(sentiment, result string) {
	if !m.enabled {
		return
	}
	m.feedbackSubmissions.WithLabelValues(sentiment, result).Inc()
}

// RecordVisualization counts one visualization request.
func (m *Manager) RecordVisualization(analysisType, result string) {
	if !m.enabled {
		return
	}
	m.visualizations.WithLabelValues(analysisType, result).Inc()
}

// RecordTopicSelection counts one sidebar topic render.
func (m *Manager) RecordTopicSelection(topic string) {
	if !m.enabled {
		return
	}
	m.topicSelections.WithLabelValues(topic).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordHTTPRequest records an inbound request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordUpstream records a scoring service call on the global manager.
func RecordUpstream(operation, outcome string, durationMs float64) {
	globalManager.RecordUpstream(operation, outcome, durationMs)
}

// RecordPersonalLookup records a document store lookup on the global manager.
func RecordPersonalLookup(outcome string, durationMs float64) {
	globalManager.RecordPersonalLookup(outcome, durationMs)
}

// RecordPrediction records a prediction on the global manager.
func RecordPrediction(category string) {
	globalManager.RecordPrediction(category)
}

// RecordFeedback records a feedback submission on the global manager.
func RecordFeedback(sentiment, result string) {
	globalManager.RecordFeedback(sentiment, result)
}

// RecordVisualization records a visualization request on the global manager.
func RecordVisualization(analysisType, result string) {
	globalManager.RecordVisualization(analysisType, result)
}

// RecordTopicSelection records a topic render on the global manager.
func RecordTopicSelection(topic string) {
	globalManager.RecordTopicSelection(topic)
}

// GetRegistry returns the private registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
