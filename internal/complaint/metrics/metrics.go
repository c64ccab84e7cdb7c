package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts complaint intake and resolution.
type Metrics struct {
	Recorded *prometheus.CounterVec
	Resolved *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodgeguard_complaints_recorded_total",
			Help: "Complaints recorded, by incident type",
		}, []string{"incident_type"}),
		Resolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lodgeguard_complaints_resolved_total",
			Help: "Complaints resolved, by whether the SLA deadline was met",
		}, []string{"sla"}),
	}
}

func (m *Metrics) IncRecorded(incidentType string) {
	if m == nil {
		return
	}
	m.Recorded.WithLabelValues(incidentType).Inc()
}

func (m *Metrics) IncResolved(late bool) {
	if m == nil {
		return
	}
	label := "met"
	if late {
		label = "late"
	}
	m.Resolved.WithLabelValues(label).Inc()
}
