package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SchedulesComputed *prometheus.CounterVec   // policy, result=ok|invalid
	ComputeDuration   *prometheus.HistogramVec // policy
	GrantsStored      prometheus.Gauge
	TranchesVested    *prometheus.CounterVec // policy
}

// NewMetrics creates the collectors and registers them on reg.
// Tests pass prometheus.NewRegistry() to stay off the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SchedulesComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vesting_schedules_computed_total",
				Help: "Schedule computations by rounding policy and result",
			},
			[]string{"policy", "result"},
		),
		ComputeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vesting_compute_duration_seconds",
				Help:    "Time spent computing a schedule",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us .. ~160ms
			},
			[]string{"policy"},
		),
		GrantsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vesting_grants_stored",
			Help: "Number of grant definitions in the store",
		}),
		TranchesVested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vesting_tranches_vested_total",
				Help: "Tranches seen vesting by the monitor, by rounding policy",
			},
			[]string{"policy"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.SchedulesComputed,
			m.ComputeDuration,
			m.GrantsStored,
			m.TranchesVested,
		)
	}

	return m
}

// ObserveCompute records one schedule computation.
func (m *Metrics) ObserveCompute(policy string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	m.SchedulesComputed.WithLabelValues(policy, result).Inc()
	m.ComputeDuration.WithLabelValues(policy).Observe(time.Since(started).Seconds())
}
