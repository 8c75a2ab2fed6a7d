package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync outcome label values.
const (
	SyncResultOK       = "ok"
	SyncResultFailed   = "failed"
	SyncResultSkipped  = "skipped"
	SyncResultMismatch = "user_mismatch"
	SyncResultEmpty    = "empty"
)

type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter
	CounterSyncs              *prometheus.CounterVec
	CounterSensorReadings     prometheus.Counter
	CounterSensorResets       prometheus.Counter
	CounterCacheReinits       prometheus.Counter
	CounterFlushedSteps       prometheus.Counter
	CounterRateLimited        prometheus.Counter

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeLifeSignal     prometheus.Gauge
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistSyncDuration         prometheus.Histogram
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fitsync", "test_agent", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitsync", "test_agent", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterSyncs := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sync",
		Help:      "The total number of sync attempts, by trigger and result",
	}, []string{"trigger", "result"})
	counterSensorReadings := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sensor_readings",
		Help:      "The total number of cumulative step readings received",
	})
	counterSensorResets := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sensor_resets",
		Help:      "Number of times the step sensor counter went backwards",
	})
	counterCacheReinits := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "cache_reinits",
		Help:      "Number of local cache re-initializations (foreign or corrupt cache)",
	})
	counterFlushedSteps := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "flushed_steps",
		Help:      "The total number of steps flushed to the remote store",
	})
	counterRateLimited := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeActiveSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_sessions",
		Help:      "Whether a user session is currently active on this device",
	})

	histSyncDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sync_duration_seconds",
		Help:      "Duration of a single flush of the local cache to the remote store",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})
	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:           counterRequests,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		CounterSyncs:              counterSyncs,
		CounterSensorReadings:     counterSensorReadings,
		CounterSensorResets:       counterSensorResets,
		CounterCacheReinits:       counterCacheReinits,
		CounterFlushedSteps:       counterFlushedSteps,
		CounterRateLimited:        counterRateLimited,
		GaugeRequests:             gaugeRequests,
		GaugeLifeSignal:           gaugeLifeSignal,
		GaugeActiveSessions:       gaugeActiveSessions,
		HistSyncDuration:          histSyncDuration,
		HistogramRequestDuration:  histogramRequestDuration,
	}
}

// ObserveSync counts a sync attempt made by the given trigger.
// Nil receiver is allowed, so components can run without metrics in tests.
func (m *Manager) ObserveSync(trigger, result string) {
	if m == nil {
		return
	}
	m.CounterSyncs.WithLabelValues(trigger, result).Inc()
}
