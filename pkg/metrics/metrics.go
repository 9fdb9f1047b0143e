// Package metrics exposes the store's operation counters and compaction
// timings as Prometheus metrics, grounded on the corpus's
// pkg/observability/prometheus use of promauto registration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the store's Prometheus collectors. A nil *Recorder is
// valid and every method is a no-op on it, so callers that don't
// configure a metrics endpoint pay nothing beyond a nil check.
type Recorder struct {
	opsTotal           *prometheus.CounterVec
	uncompactedBytes   prometheus.Gauge
	compactionDuration prometheus.Histogram
}

// New registers the store's collectors against a fresh registry and
// returns a Recorder plus the http.Handler that serves them.
func New() (*Recorder, http.Handler) {
	registry := prometheus.NewRegistry()
	registerer := promauto.With(registry)

	r := &Recorder{
		opsTotal: registerer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ignite_operations_total",
				Help: "Total number of engine operations by kind.",
			},
			[]string{"op"},
		),
		uncompactedBytes: registerer.NewGauge(
			prometheus.GaugeOpts{
				Name: "ignite_uncompacted_bytes",
				Help: "Bytes of superseded records awaiting compaction.",
			},
		),
		compactionDuration: registerer.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ignite_compaction_duration_seconds",
				Help:    "Wall-clock duration of compaction runs.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	return r, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// IncSet increments the set operation counter.
func (r *Recorder) IncSet() {
	if r == nil {
		return
	}
	r.opsTotal.WithLabelValues("set").Inc()
}

// IncGet increments the get operation counter.
func (r *Recorder) IncGet() {
	if r == nil {
		return
	}
	r.opsTotal.WithLabelValues("get").Inc()
}

// IncRemove increments the remove operation counter.
func (r *Recorder) IncRemove() {
	if r == nil {
		return
	}
	r.opsTotal.WithLabelValues("remove").Inc()
}

// SetUncompactedBytes records the current uncompacted byte count.
func (r *Recorder) SetUncompactedBytes(n uint64) {
	if r == nil {
		return
	}
	r.uncompactedBytes.Set(float64(n))
}

// StartCompaction marks the start of a compaction run and returns a
// function to call when it completes, recording its duration.
func (r *Recorder) StartCompaction() func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.compactionDuration.Observe(time.Since(start).Seconds())
	}
}
