package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Denied   prometheus.Counter
	Degraded prometheus.Counter
	Errors   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Denied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_ratelimit_denied_total",
			Help: "Complaint submissions rejected by the per-student limiter",
		}),
		Degraded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_ratelimit_degraded_checks_total",
			Help: "Limiter checks served by the in-memory fallback while the circuit is open",
		}),
		Errors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_ratelimit_store_errors_total",
			Help: "Primary limiter store failures",
		}),
	}
}

func (m *Metrics) IncDenied() {
	if m == nil {
		return
	}
	m.Denied.Inc()
}

func (m *Metrics) IncDegraded() {
	if m == nil {
		return
	}
	m.Degraded.Inc()
}

func (m *Metrics) IncErrors() {
	if m == nil {
		return
	}
	m.Errors.Inc()
}
