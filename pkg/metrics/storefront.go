package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	OutcomeConfirmed   = "confirmed"
	OutcomeFailed      = "failed"
	OutcomeEmptyCart   = "empty_cart"
	OutcomeInvalidForm = "invalid_form"
	OutcomeInFlight    = "in_flight"
)

// StorefrontMetrics counts cart mutations and checkout submissions.
type StorefrontMetrics struct {
	cartMutations *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
	submitLatency prometheus.Histogram
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graingrove_cart_mutations_total",
		Help: "Cart mutations by operation and result.",
	}, []string{"op", "result"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "graingrove_checkout_submissions_total",
		Help: "Checkout submissions by outcome.",
	}, []string{"outcome"})
	submitLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "graingrove_order_submit_duration_seconds",
		Help:    "Latency of order submission to the order store.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(cartMutations, checkouts, submitLatency)
	return &StorefrontMetrics{
		cartMutations: cartMutations,
		checkouts:     checkouts,
		submitLatency: submitLatency,
	}
}

// ObserveCartMutation counts one cart operation; err decides the result label.
func (s *StorefrontMetrics) ObserveCartMutation(op string, err error) {
	if s == nil || s.cartMutations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op), result).Inc()
}

// IncCheckout counts one checkout submission outcome.
func (s *StorefrontMetrics) IncCheckout(outcome string) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSubmit records how long the order store took to accept or reject an order.
func (s *StorefrontMetrics) ObserveSubmit(duration time.Duration) {
	if s == nil || s.submitLatency == nil {
		return
	}
	s.submitLatency.Observe(duration.Seconds())
}
