package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ecktables",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecktables",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ecktables",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	dragSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecktables",
			Subsystem: "floorplan",
			Name:      "drag_sessions_total",
			Help:      "Total number of drag sessions started.",
		},
	)

	commits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ecktables",
			Subsystem: "floorplan",
			Name:      "commits_total",
			Help:      "Position commits by result.",
		},
		[]string{"result"},
	)

	abandoned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ecktables",
			Subsystem: "floorplan",
			Name:      "drag_abandoned_total",
			Help:      "Drag sessions ended without a commit.",
		},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ecktables",
			Subsystem: "websocket",
			Name:      "connections",
			Help:      "Currently open floor plan websocket connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		dragSessions,
		commits,
		abandoned,
		wsConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func IncrementInFlight() { httpInFlight.Inc() }
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDragStarted counts a new drag session.
func RecordDragStarted() { dragSessions.Inc() }

// RecordDragAbandoned counts a session ended without a commit.
func RecordDragAbandoned() { abandoned.Inc() }

// RecordCommit counts a commit outcome.
func RecordCommit(err error) {
	if err != nil {
		commits.WithLabelValues("failure").Inc()
		return
	}
	commits.WithLabelValues("success").Inc()
}

// WebsocketOpened and WebsocketClosed track open connections.
func WebsocketOpened() { wsConnections.Inc() }
func WebsocketClosed() { wsConnections.Dec() }
