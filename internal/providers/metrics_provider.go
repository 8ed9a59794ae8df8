package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fivemon/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncTicksTotal(result string)
	ObserveTickDuration(duration time.Duration)
	IncFetchFailures(endpoint string)
	SetPlayersOnline(count int)
	IncJoins()
	IncLeaves(reason string)
	IncStoreWriteFailures(op string)
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	ticksTotal          *prometheus.CounterVec
	tickDuration        prometheus.Histogram
	fetchFailures       *prometheus.CounterVec
	playersOnline       prometheus.Gauge
	joinsTotal          prometheus.Counter
	leavesTotal         *prometheus.CounterVec
	storeWriteFailures  *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncTicksTotal(result string) {
	m.ticksTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveTickDuration(duration time.Duration) {
	m.tickDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncFetchFailures(endpoint string) {
	m.fetchFailures.WithLabelValues(endpoint).Inc()
}

func (m *MetricsProvider) SetPlayersOnline(count int) {
	m.playersOnline.Set(float64(count))
}

func (m *MetricsProvider) IncJoins() {
	m.joinsTotal.Inc()
}

func (m *MetricsProvider) IncLeaves(reason string) {
	m.leavesTotal.WithLabelValues(reason).Inc()
}

func (m *MetricsProvider) IncStoreWriteFailures(op string) {
	m.storeWriteFailures.WithLabelValues(op).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fivemon_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fivemon_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		ticksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fivemon_ticks_total",
			Help: "Total number of poll ticks by result",
		}, []string{"result"}),

		tickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fivemon_tick_duration_seconds",
			Help:    "Poll tick duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		fetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fivemon_fetch_failures_total",
			Help: "Total number of status-source fetch failures by endpoint",
		}, []string{"endpoint"}),

		playersOnline: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fivemon_players_online",
			Help: "Currently tracked online players",
		}),

		joinsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fivemon_joins_total",
			Help: "Total number of observed player joins",
		}),

		leavesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fivemon_leaves_total",
			Help: "Total number of observed player leaves by reason",
		}, []string{"reason"}),

		storeWriteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fivemon_store_write_failures_total",
			Help: "Total number of failed persistence writes by operation",
		}, []string{"op"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fivemon_persistence_duration_seconds",
			Help:    "Presence state file save duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	return m
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncTicksTotal(_ string)                           {}
func (n *noopMetrics) ObserveTickDuration(_ time.Duration)              {}
func (n *noopMetrics) IncFetchFailures(_ string)                        {}
func (n *noopMetrics) SetPlayersOnline(_ int)                           {}
func (n *noopMetrics) IncJoins()                                        {}
func (n *noopMetrics) IncLeaves(_ string)                               {}
func (n *noopMetrics) IncStoreWriteFailures(_ string)                   {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
