package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GriffinCanCode/trussfs/internal/shared/handle"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Handle table metrics
	HandlesLive   *prometheus.GaugeVec
	HandleEvents  *prometheus.CounterVec
	ContextsAlive prometheus.Gauge

	// Operation metrics
	OpsTotal   *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec

	// Archive metrics
	ArchivesMounted  *prometheus.CounterVec
	ArchiveBytesRead prometheus.Counter

	// Watcher metrics
	WatcherEvents  *prometheus.CounterVec
	WatcherDropped prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	TotalOps        int64   `json:"total_ops"`
	FailedOps       int64   `json:"failed_ops"`
	LiveHandles     int64   `json:"live_handles"`
	BytesRead       int64   `json:"bytes_read"`
	WatcherEvents   int64   `json:"watcher_events"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	AvgRequestMilli float64 `json:"avg_request_ms"`
	totalDuration   float64
}

// NewMetrics creates a metrics collector registered on reg. A nil reg gets a
// private registry so independent contexts never collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trussfs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trussfs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trussfs_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trussfs_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Handle table metrics
		HandlesLive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trussfs_handles_live",
				Help: "Number of live handles by resource kind",
			},
			[]string{"kind"},
		),
		HandleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trussfs_handle_events_total",
				Help: "Handle allocations, frees and rejected lookups",
			},
			[]string{"kind", "event"},
		),
		ContextsAlive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trussfs_contexts_alive",
				Help: "Number of open contexts",
			},
		),

		// Operation metrics
		OpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trussfs_operations_total",
				Help: "Total number of context operations by outcome",
			},
			[]string{"op", "status"},
		),
		OpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trussfs_operation_duration_seconds",
				Help:    "Context operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),

		// Archive metrics
		ArchivesMounted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trussfs_archives_mounted_total",
				Help: "Total number of archives mounted by container format",
			},
			[]string{"format"},
		),
		ArchiveBytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "trussfs_archive_bytes_read_total",
				Help: "Bytes copied out of archive entries",
			},
		),

		// Watcher metrics
		WatcherEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trussfs_watcher_events_total",
				Help: "Change records queued by watchers",
			},
			[]string{"kind"},
		),
		WatcherDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "trussfs_watcher_dropped_total",
				Help: "Change records lost to queue overflow",
			},
		),

		// Session metrics
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trussfs_sessions_active",
				Help: "Number of active bridge sessions",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trussfs_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trussfs_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "trussfs_uptime_seconds",
			Help: "Seconds since the collector was created",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOp records one context operation. status is "ok" or an error kind.
func (m *Metrics) RecordOp(op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OpsTotal.WithLabelValues(op, status).Inc()
	m.OpDuration.WithLabelValues(op).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalOps++
	if status != StatusOK {
		m.snapshot.FailedOps++
	}
	m.mu.Unlock()
}

// RecordArchiveMount counts a mounted archive by container format.
func (m *Metrics) RecordArchiveMount(format string) {
	if m == nil {
		return
	}
	m.ArchivesMounted.WithLabelValues(format).Inc()
}

// AddArchiveBytes counts bytes copied out of an archive.
func (m *Metrics) AddArchiveBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ArchiveBytesRead.Add(float64(n))
	m.mu.Lock()
	m.snapshot.BytesRead += int64(n)
	m.mu.Unlock()
}

// RecordWatcherEvent counts a queued change record.
func (m *Metrics) RecordWatcherEvent(kind string) {
	if m == nil {
		return
	}
	m.WatcherEvents.WithLabelValues(kind).Inc()
	m.mu.Lock()
	m.snapshot.WatcherEvents++
	m.mu.Unlock()
}

// RecordWatcherDropped counts a change record lost to overflow.
func (m *Metrics) RecordWatcherDropped() {
	if m == nil {
		return
	}
	m.WatcherDropped.Inc()
}

// HandleAllocated implements handle.Observer.
func (m *Metrics) HandleAllocated(kind handle.Kind) {
	if m == nil {
		return
	}
	m.HandlesLive.WithLabelValues(kind.String()).Inc()
	m.HandleEvents.WithLabelValues(kind.String(), "allocate").Inc()
	m.mu.Lock()
	m.snapshot.LiveHandles++
	m.mu.Unlock()
}

// HandleFreed implements handle.Observer.
func (m *Metrics) HandleFreed(kind handle.Kind) {
	if m == nil {
		return
	}
	m.HandlesLive.WithLabelValues(kind.String()).Dec()
	m.HandleEvents.WithLabelValues(kind.String(), "free").Inc()
	m.mu.Lock()
	m.snapshot.LiveHandles--
	m.mu.Unlock()
}

// HandleRejected implements handle.Observer.
func (m *Metrics) HandleRejected(kind handle.Kind) {
	if m == nil {
		return
	}
	m.HandleEvents.WithLabelValues(kind.String(), "reject").Inc()
}

// IncContexts increments open contexts
func (m *Metrics) IncContexts() {
	if m != nil {
		m.ContextsAlive.Inc()
	}
}

// DecContexts decrements open contexts
func (m *Metrics) DecContexts() {
	if m != nil {
		m.ContextsAlive.Dec()
	}
}

// SetSessionsActive sets the number of active sessions
func (m *Metrics) SetSessionsActive(count int) {
	if m != nil {
		m.SessionsActive.Set(float64(count))
	}
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m != nil {
		m.WSMessages.WithLabelValues(direction, msgType).Inc()
	}
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m != nil {
		m.WSConnections.Inc()
	}
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m != nil {
		m.WSConnections.Dec()
	}
}

// Snapshot returns the current values for the JSON stats endpoint.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	if s.TotalRequests > 0 {
		s.AvgRequestMilli = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	return s
}
