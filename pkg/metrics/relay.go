package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics records outbox relay throughput and failures.
type RelayMetrics struct {
	published prometheus.Counter
	failed    prometheus.Counter
	deadLtr   prometheus.Counter
	batchTime prometheus.Histogram
}

// NewRelayMetrics registers the relay metrics on the provided registerer.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	if reg == nil {
		return &RelayMetrics{}
	}
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events published to Pub/Sub.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that errored.",
	})
	deadLtr := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_dead_lettered_total",
		Help: "Outbox events moved to the dead letter table.",
	})
	batchTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox relay batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failed, deadLtr, batchTime)
	return &RelayMetrics{
		published: published,
		failed:    failed,
		deadLtr:   deadLtr,
		batchTime: batchTime,
	}
}

// IncPublished counts one successfully published event.
func (r *RelayMetrics) IncPublished() {
	if r == nil || r.published == nil {
		return
	}
	r.published.Inc()
}

// IncFailed counts one failed publish attempt.
func (r *RelayMetrics) IncFailed() {
	if r == nil || r.failed == nil {
		return
	}
	r.failed.Inc()
}

// IncDeadLettered counts one event routed to the DLQ.
func (r *RelayMetrics) IncDeadLettered() {
	if r == nil || r.deadLtr == nil {
		return
	}
	r.deadLtr.Inc()
}

// ObserveBatch records the duration of one relay batch.
func (r *RelayMetrics) ObserveBatch(duration time.Duration) {
	if r == nil || r.batchTime == nil {
		return
	}
	r.batchTime.Observe(duration.Seconds())
}
