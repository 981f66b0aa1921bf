package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Supervisor status label values, kept in sync with the pipeline package.
var statusLabels = []string{"ok", "producer_only", "consumer_only", "failure"}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Record flow metrics
	RecordsSent     prometheus.Counter
	RecordsDropped  prometheus.Counter
	RecordsReceived prometheus.Counter
	AllocFailures   *prometheus.CounterVec
	ChannelDepth    prometheus.Gauge

	// Consumer escalation metrics
	ReceiveTimeouts prometheus.Counter
	ConsumerAlerts  prometheus.Counter
	Recoveries      prometheus.Counter
	RecordsReset    prometheus.Counter
	TimeoutStreak   prometheus.Gauge

	// Supervisor metrics
	SupervisorCycles *prometheus.CounterVec
	SupervisorStatus *prometheus.GaugeVec

	// Watchdog metrics
	WatchdogFeeds    *prometheus.CounterVec
	WatchdogExpiries *prometheus.CounterVec

	// Task metrics
	CycleDuration *prometheus.HistogramVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	Sent       int64  `json:"sent"`
	Dropped    int64  `json:"dropped"`
	Received   int64  `json:"received"`
	Timeouts   int64  `json:"timeouts"`
	Alerts     int64  `json:"alerts"`
	Recoveries int64  `json:"recoveries"`
	Expiries   int64  `json:"watchdog_expiries"`
	Status     string `json:"status"`
}

// NewMetrics creates a new metrics collector registered on reg. Passing
// prometheus.DefaultRegisterer exposes the metrics on promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// Record flow metrics
		RecordsSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_records_sent_total",
				Help: "Total number of records accepted by the channel",
			},
		),
		RecordsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_records_dropped_total",
				Help: "Total number of records discarded because the slot was occupied",
			},
		),
		RecordsReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_records_received_total",
				Help: "Total number of records processed by the consumer",
			},
		),
		AllocFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtpipe_alloc_failures_total",
				Help: "Total number of record allocation failures",
			},
			[]string{"stage"},
		),
		ChannelDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rtpipe_channel_depth",
				Help: "Records currently held by the channel slot",
			},
		),

		// Consumer escalation metrics
		ReceiveTimeouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_receive_timeouts_total",
				Help: "Total number of empty receive windows",
			},
		),
		ConsumerAlerts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_consumer_alerts_total",
				Help: "Total number of consumer escalation alerts",
			},
		),
		Recoveries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_recoveries_total",
				Help: "Total number of channel resets",
			},
		),
		RecordsReset: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rtpipe_records_reset_total",
				Help: "Total number of records discarded by channel resets",
			},
		),
		TimeoutStreak: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rtpipe_consumer_timeout_streak",
				Help: "Current number of consecutive empty receive windows",
			},
		),

		// Supervisor metrics
		SupervisorCycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtpipe_supervisor_cycles_total",
				Help: "Total number of supervision cycles by classification",
			},
			[]string{"status"},
		),
		SupervisorStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rtpipe_supervisor_status",
				Help: "1 for the classification of the latest supervision cycle, 0 otherwise",
			},
			[]string{"status"},
		),

		// Watchdog metrics
		WatchdogFeeds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtpipe_watchdog_feeds_total",
				Help: "Total number of watchdog liaison resets",
			},
			[]string{"task"},
		),
		WatchdogExpiries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtpipe_watchdog_expiries_total",
				Help: "Total number of watchdog expiries",
			},
			[]string{"task"},
		),

		// Task metrics
		CycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtpipe_cycle_duration_seconds",
				Help:    "Task cycle duration in seconds, including waits",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"task", "outcome"},
		),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtpipe_http_requests_total",
				Help: "Total number of status HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rtpipe_http_request_duration_seconds",
				Help:    "Status HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "rtpipe_uptime_seconds",
			Help: "Pipeline uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordSent records a record accepted by the channel
func (m *Metrics) RecordSent() {
	m.RecordsSent.Inc()
	m.mu.Lock()
	m.snapshot.Sent++
	m.mu.Unlock()
}

// RecordDropped records a record rejected by the full slot
func (m *Metrics) RecordDropped() {
	m.RecordsDropped.Inc()
	m.mu.Lock()
	m.snapshot.Dropped++
	m.mu.Unlock()
}

// RecordReceived records a processed record
func (m *Metrics) RecordReceived() {
	m.RecordsReceived.Inc()
	m.mu.Lock()
	m.snapshot.Received++
	m.mu.Unlock()
}

// RecordAllocFailure records an allocation failure in stage
func (m *Metrics) RecordAllocFailure(stage string) {
	m.AllocFailures.WithLabelValues(stage).Inc()
}

// SetChannelDepth sets the number of records held by the slot
func (m *Metrics) SetChannelDepth(n int) {
	m.ChannelDepth.Set(float64(n))
}

// RecordTimeout records an empty receive window and the resulting streak
func (m *Metrics) RecordTimeout(streak int) {
	m.ReceiveTimeouts.Inc()
	m.TimeoutStreak.Set(float64(streak))
	m.mu.Lock()
	m.snapshot.Timeouts++
	m.mu.Unlock()
}

// ResetStreak clears the consumer timeout streak gauge
func (m *Metrics) ResetStreak() {
	m.TimeoutStreak.Set(0)
}

// RecordAlert records a consumer escalation alert
func (m *Metrics) RecordAlert() {
	m.ConsumerAlerts.Inc()
	m.mu.Lock()
	m.snapshot.Alerts++
	m.mu.Unlock()
}

// RecordRecovery records a channel reset and the records it discarded
func (m *Metrics) RecordRecovery(discarded int) {
	m.Recoveries.Inc()
	m.RecordsReset.Add(float64(discarded))
	m.TimeoutStreak.Set(0)
	m.mu.Lock()
	m.snapshot.Recoveries++
	m.mu.Unlock()
}

// RecordStatus records the classification of a supervision cycle
func (m *Metrics) RecordStatus(status string) {
	m.SupervisorCycles.WithLabelValues(status).Inc()
	for _, label := range statusLabels {
		value := 0.0
		if label == status {
			value = 1
		}
		m.SupervisorStatus.WithLabelValues(label).Set(value)
	}
	m.mu.Lock()
	m.snapshot.Status = status
	m.mu.Unlock()
}

// RecordFeed records a watchdog liaison reset
func (m *Metrics) RecordFeed(task string) {
	m.WatchdogFeeds.WithLabelValues(task).Inc()
}

// RecordExpiry records a watchdog expiry for task
func (m *Metrics) RecordExpiry(task string) {
	m.WatchdogExpiries.WithLabelValues(task).Inc()
	m.mu.Lock()
	m.snapshot.Expiries++
	m.mu.Unlock()
}

// RecordHTTPRequest records a status HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// StartTime returns when the collector was created
func (m *Metrics) StartTime() time.Time {
	return m.startTime
}
