package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records purchase outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	fulfilled *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	failure   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	fulfilled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_lines_fulfilled",
		Help: "Cart lines successfully reserved during checkout.",
	}, []string{"outcome"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_lines_dropped",
		Help: "Cart lines skipped during checkout for lack of stock.",
	}, []string{"outcome"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure",
		Help: "Checkout executions that produced no ticket.",
	}, []string{"reason"})
	reg.MustRegister(duration, fulfilled, dropped, failure)
	return &CheckoutMetrics{
		duration:  duration,
		fulfilled: fulfilled,
		dropped:   dropped,
		failure:   failure,
	}
}

// ObserveDuration records the duration of a checkout with the given outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// AddFulfilled counts lines that were reserved and billed.
func (c *CheckoutMetrics) AddFulfilled(outcome string, n int) {
	if c == nil || c.fulfilled == nil || n <= 0 {
		return
	}
	c.fulfilled.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// AddDropped counts lines left unprocessed for lack of stock.
func (c *CheckoutMetrics) AddDropped(outcome string, n int) {
	if c == nil || c.dropped == nil || n <= 0 {
		return
	}
	c.dropped.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// IncFailure increments the failure counter for the named reason.
func (c *CheckoutMetrics) IncFailure(reason string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
