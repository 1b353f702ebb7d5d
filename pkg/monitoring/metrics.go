package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Service name for metrics
	ServiceName = "osmsurvey"
)

var (
	// Location metrics
	LocationFixesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_location_fixes_total",
			Help: "Total number of location requests by result",
		},
		[]string{"result"}, // accepted, low_accuracy, error
	)

	LocationAccuracy = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "osmsurvey_location_accuracy_meters",
			Help:    "Reported accuracy of location fixes",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)

	// Building fetch metrics
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_fetches_total",
			Help: "Total number of building fetches by status",
		},
		[]string{"status"}, // success, error, skipped
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "osmsurvey_fetch_duration_seconds",
			Help:    "Building fetch duration in seconds, query and reconstruction",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
	)

	PolygonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_polygons_total",
			Help: "Building polygons by what happened to them",
		},
		[]string{"outcome"}, // drawn, duplicate, missing_node, degenerate
	)

	ShapesOnMap = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmsurvey_shapes_on_map",
			Help: "Number of building shapes currently drawn",
		},
	)

	// Tagging session metrics
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_sessions_total",
			Help: "Total number of tagging sessions by outcome",
		},
		[]string{"outcome"}, // submitted, cancelled, failed
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmsurvey_active_sessions",
			Help: "Number of tagging sessions waiting on note submission",
		},
	)

	// External service metrics
	ExternalServiceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_external_service_requests_total",
			Help: "Total number of external service requests",
		},
		[]string{"service", "operation", "status"},
	)

	ExternalServiceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmsurvey_external_service_request_duration_seconds",
			Help:    "External service request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"service", "operation"},
	)

	// Rate limiting metrics
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_rate_limit_exceeded_total",
			Help: "Total number of rate limit exceeded events",
		},
		[]string{"service"},
	)

	RateLimitWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmsurvey_rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for rate limits",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmsurvey_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osmsurvey_system_info",
			Help: "System information",
		},
		[]string{"version", "go_version", "build_commit", "build_date"},
	)

	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmsurvey_goroutines",
			Help: "Number of goroutines",
		},
	)

	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "osmsurvey_memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
	)
)

// Service health and info structures
type ServiceHealth struct {
	Service       string                 `json:"service"`
	Version       string                 `json:"version"`
	Status        string                 `json:"status"` // "healthy", "degraded", "unhealthy"
	Uptime        time.Duration          `json:"uptime"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	StartTime     time.Time              `json:"start_time,omitempty"`
	Connections   map[string]ConnStatus  `json:"connections"`
	Metrics       map[string]interface{} `json:"metrics,omitempty"`
}

type ConnStatus struct {
	Status    string `json:"status"`               // "connected", "degraded", "error"
	Latency   int64  `json:"latency_ms,omitempty"` // Last request latency in milliseconds
	LastError string `json:"last_error,omitempty"` // Last error message if any
}

// Helper functions for common metric updates
func RecordLocationFix(result string, accuracy float64) {
	LocationFixesTotal.WithLabelValues(result).Inc()
	if accuracy > 0 {
		LocationAccuracy.Observe(accuracy)
	}
}

func RecordFetch(status string, duration time.Duration) {
	FetchesTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		FetchDuration.Observe(duration.Seconds())
	}
}

func RecordPolygons(outcome string, n int) {
	if n > 0 {
		PolygonsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

func UpdateShapesOnMap(n int) {
	ShapesOnMap.Set(float64(n))
}

func RecordSession(outcome string) {
	SessionsTotal.WithLabelValues(outcome).Inc()
}

func RecordExternalServiceRequest(service, operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ExternalServiceRequestsTotal.WithLabelValues(service, operation, status).Inc()
	ExternalServiceRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func RecordRateLimitExceeded(service string) {
	RateLimitExceeded.WithLabelValues(service).Inc()
}

func RecordRateLimitWait(service string, duration time.Duration) {
	RateLimitWaitTime.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
