// Package metrics exposes Prometheus instrumentation for loan estimation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics of the estimation service.
type Metrics struct {
	EstimatesTotal   *prometheus.CounterVec // labels: periodicity
	EstimateFailures *prometheus.CounterVec // labels: reason
	ResolveDur       prometheus.Histogram
	PaymentsPerLoan  prometheus.Histogram

	HolidayCacheHits   prometheus.Counter
	HolidayCacheMisses prometheus.Counter
}

// New registers and returns all metrics on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EstimatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loanengine_estimates_total",
			Help: "Loan estimates created, by payment periodicity",
		}, []string{"periodicity"}),
		EstimateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loanengine_estimate_failures_total",
			Help: "Rejected or failed loan estimates, by reason",
		}, []string{"reason"}),
		ResolveDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanengine_resolve_duration_seconds",
			Help:    "Schedule resolution latency",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		PaymentsPerLoan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanengine_payments_per_loan",
			Help:    "Number of expected payments per estimated loan",
			Buckets: []float64{1, 2, 4, 8, 15, 30, 60},
		}),
		HolidayCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loanengine_holiday_cache_hits_total",
			Help: "Holiday calendar lookups served from cache",
		}),
		HolidayCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loanengine_holiday_cache_misses_total",
			Help: "Holiday calendar lookups that had to be computed",
		}),
	}

	reg.MustRegister(
		m.EstimatesTotal,
		m.EstimateFailures,
		m.ResolveDur,
		m.PaymentsPerLoan,
		m.HolidayCacheHits,
		m.HolidayCacheMisses,
	)

	return m
}

// CacheHit implements calendar.CacheObserver.
func (m *Metrics) CacheHit() { m.HolidayCacheHits.Inc() }

// CacheMiss implements calendar.CacheObserver.
func (m *Metrics) CacheMiss() { m.HolidayCacheMisses.Inc() }
