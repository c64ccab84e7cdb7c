package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers unit lifecycle changes and trust recalculation.
type Metrics struct {
	Escalations    *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	RecalcDuration prometheus.Histogram
	AuditResolved  prometheus.Counter
	UnitsReopened  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Escalations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodgeguard_audit_escalations_total",
			Help: "Audit logs opened, by trigger type",
		}, []string{"trigger"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodgeguard_unit_transitions_total",
			Help: "Unit status transitions, by source and target status",
		}, []string{"from", "to"}),
		RecalcDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lodgeguard_trust_recalc_duration_seconds",
			Help:    "Duration of trust recalculation and audit evaluation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		AuditResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_audit_logs_resolved_total",
			Help: "Audit logs resolved by an administrator",
		}),
		UnitsReopened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lodgeguard_units_reopened_total",
			Help: "Units returned to approved after their last audit log was resolved",
		}),
	}
}

func (m *Metrics) IncEscalation(trigger string) {
	if m == nil {
		return
	}
	m.Escalations.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// ObserveRecalc takes the start time of the operation.
func (m *Metrics) ObserveRecalc(start time.Time) {
	if m == nil {
		return
	}
	m.RecalcDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncAuditResolved(reopened bool) {
	if m == nil {
		return
	}
	m.AuditResolved.Inc()
	if reopened {
		m.UnitsReopened.Inc()
	}
}
