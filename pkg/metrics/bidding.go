package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BiddingMetrics records bid submission outcomes.
type BiddingMetrics struct {
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	retries  prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewBiddingMetrics registers the bid submission metrics on the provided registerer.
func NewBiddingMetrics(reg prometheus.Registerer) *BiddingMetrics {
	if reg == nil {
		return &BiddingMetrics{}
	}
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bids_accepted_total",
		Help: "Accepted bid submissions.",
	}, []string{"category"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bids_rejected_total",
		Help: "Rejected bid submissions by reason.",
	}, []string{"reason"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bid_submit_conflict_retries_total",
		Help: "Retries triggered by concurrent auction updates.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bid_submit_duration_seconds",
		Help:    "End-to-end duration of bid submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(accepted, rejected, retries, duration)
	return &BiddingMetrics{
		accepted: accepted,
		rejected: rejected,
		retries:  retries,
		duration: duration,
	}
}

// IncAccepted increments the accepted counter for the product category.
func (b *BiddingMetrics) IncAccepted(category string) {
	if b == nil || b.accepted == nil {
		return
	}
	b.accepted.WithLabelValues(normalizeLabel(category)).Inc()
}

// IncRejected increments the rejected counter for the given reason.
func (b *BiddingMetrics) IncRejected(reason string) {
	if b == nil || b.rejected == nil {
		return
	}
	b.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncConflictRetry counts one optimistic-concurrency retry.
func (b *BiddingMetrics) IncConflictRetry() {
	if b == nil || b.retries == nil {
		return
	}
	b.retries.Inc()
}

// ObserveSubmitDuration records the duration for a submission outcome.
func (b *BiddingMetrics) ObserveSubmitDuration(outcome string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
