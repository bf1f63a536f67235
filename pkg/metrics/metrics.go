// Package metrics exposes Prometheus instrumentation for the config manager,
// embedding cache, pressure accumulator, and the shared retry helper.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sovlcore"

// RetryMetrics records outcomes of the shared retry-with-backoff helper.
type RetryMetrics struct {
	AttemptsTotal      *prometheus.CounterVec
	DurationSeconds    *prometheus.HistogramVec
	BackoffSeconds     *prometheus.HistogramVec
	FinalAttemptsTotal *prometheus.HistogramVec
}

var (
	retryOnce     sync.Once
	retryMetrics  *RetryMetrics
)

// NewRetryMetrics returns the process-wide RetryMetrics singleton,
// registering its collectors with the default registry on first call.
func NewRetryMetrics() *RetryMetrics {
	retryOnce.Do(func() {
		retryMetrics = &RetryMetrics{
			AttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "attempts_total",
				Help:      "Outcomes of individual retry attempts.",
			}, []string{"operation", "outcome"}),
			DurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "attempt_duration_seconds",
				Help:      "Duration of individual retry attempts.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation", "outcome"}),
			BackoffSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "backoff_seconds",
				Help:      "Delay waited before the next retry attempt.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"operation"}),
			FinalAttemptsTotal: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retry",
				Name:      "final_attempts",
				Help:      "Number of attempts taken until an operation settled.",
				Buckets:   []float64{1, 2, 3, 4, 5, 10},
			}, []string{"operation", "outcome"}),
		}
	})
	return retryMetrics
}

// RecordAttempt records the outcome of a single attempt.
func (m *RetryMetrics) RecordAttempt(operation, outcome, _errorType string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(operation, outcome).Inc()
	m.DurationSeconds.WithLabelValues(operation, outcome).Observe(durationSeconds)
}

// RecordBackoff records the delay waited before a retry.
func (m *RetryMetrics) RecordBackoff(operation string, delaySeconds float64) {
	if m == nil {
		return
	}
	m.BackoffSeconds.WithLabelValues(operation).Observe(delaySeconds)
}

// RecordFinalAttempt records how many attempts an operation took to settle.
func (m *RetryMetrics) RecordFinalAttempt(operation, outcome string, attempts int) {
	if m == nil {
		return
	}
	m.FinalAttemptsTotal.WithLabelValues(operation, outcome).Observe(float64(attempts))
}

// ConfigMetrics records config manager activity.
type ConfigMetrics struct {
	UpdatesTotal    *prometheus.CounterVec
	RollbacksTotal  prometheus.Counter
	FreezeToggles   *prometheus.CounterVec
	SubscriberCalls *prometheus.CounterVec
}

var (
	configOnce    sync.Once
	configMetrics *ConfigMetrics
)

// NewConfigMetrics returns the process-wide ConfigMetrics singleton.
func NewConfigMetrics() *ConfigMetrics {
	configOnce.Do(func() {
		configMetrics = &ConfigMetrics{
			UpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "updates_total",
				Help:      "Config key updates, by outcome.",
			}, []string{"outcome"}),
			RollbacksTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "rollbacks_total",
				Help:      "Batch updates that rolled back after a failed save.",
			}),
			FreezeToggles: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "freeze_toggles_total",
				Help:      "Freeze/unfreeze calls.",
			}, []string{"state"}),
			SubscriberCalls: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "subscriber_calls_total",
				Help:      "Subscriber callback invocations, by outcome.",
			}, []string{"outcome"}),
		}
	})
	return configMetrics
}

// CacheMetrics records embedding cache activity.
type CacheMetrics struct {
	Size           prometheus.Gauge
	EvictionsTotal *prometheus.CounterVec
	SpillsTotal    prometheus.Counter
}

var (
	cacheOnce    sync.Once
	cacheMetrics *CacheMetrics
)

// NewCacheMetrics returns the process-wide CacheMetrics singleton.
func NewCacheMetrics() *CacheMetrics {
	cacheOnce.Do(func() {
		cacheMetrics = &CacheMetrics{
			Size: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "embed_cache",
				Name:      "entries",
				Help:      "Current number of cached embedding entries.",
			}),
			EvictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "embed_cache",
				Name:      "evictions_total",
				Help:      "Puts that triggered eviction, by trigger (soft_cap, hard_cap).",
			}, []string{"trigger"}),
			SpillsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "embed_cache",
				Name:      "spills_total",
				Help:      "Evicted batches written to the spill file.",
			}),
		}
	})
	return cacheMetrics
}

// PressureMetrics records pressure accumulator activity.
type PressureMetrics struct {
	Current    prometheus.Gauge
	Eruptions  prometheus.Counter
}

var (
	pressureOnce    sync.Once
	pressureMetrics *PressureMetrics
)

// NewPressureMetrics returns the process-wide PressureMetrics singleton.
func NewPressureMetrics() *PressureMetrics {
	pressureOnce.Do(func() {
		pressureMetrics = &PressureMetrics{
			Current: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pressure",
				Name:      "current",
				Help:      "Current curiosity pressure level.",
			}),
			Eruptions: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pressure",
				Name:      "eruptions_total",
				Help:      "Pressure eruption events.",
			}),
		}
	})
	return pressureMetrics
}
