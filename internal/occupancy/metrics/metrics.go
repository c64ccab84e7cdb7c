package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts check-in outcomes and occupant-id retries.
type Metrics struct {
	CheckIns  *prometheus.CounterVec
	Retries   prometheus.Counter
	CheckOuts prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		CheckIns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodgeguard_check_ins_total",
			Help: "Check-in attempts, by outcome (ok or the failure reason)",
		}, []string{"outcome"}),
		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_check_in_retries_total",
			Help: "Check-in transactions retried after an occupant id conflict",
		}),
		CheckOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_check_outs_total",
			Help: "Occupancies ended",
		}),
	}
}

func (m *Metrics) IncCheckIn(outcome string) {
	if m == nil {
		return
	}
	m.CheckIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) IncCheckOut() {
	if m == nil {
		return
	}
	m.CheckOuts.Inc()
}
