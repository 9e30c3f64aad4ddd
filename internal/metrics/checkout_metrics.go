package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeBackendError    = "backend_error"
)

// CheckoutMetrics tracks checkout stage results.
type CheckoutMetrics struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	ordersPlaced  prometheus.Counter
	cacheInvalid  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout collectors on registerer, or on
// the default registerer when nil.
func NewCheckoutMetrics(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		stageTotal: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_stage_total",
			Help: "Checkout stage executions by stage and outcome",
		}, []string{"stage", "outcome"})),
		stageDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_checkout_stage_duration_seconds",
			Help:    "Duration of checkout stages in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"stage"})),
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed",
		})),
		cacheInvalid: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cache_invalidations_total",
			Help: "Cache tag invalidations by tag",
		}, []string{"tag"})),
	}
}

// register reuses a collector that is already registered under the same
// descriptor, so tests and reloads can build the metrics twice.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %v", err))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// ObserveStage records one stage execution. Nil receivers are no-ops.
func (m *CheckoutMetrics) ObserveStage(stage, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.WithLabelValues(stage, outcome).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *CheckoutMetrics) IncOrdersPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *CheckoutMetrics) IncCacheInvalidation(tag string) {
	if m == nil {
		return
	}
	m.cacheInvalid.WithLabelValues(tag).Inc()
}
