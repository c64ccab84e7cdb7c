// Package trigger decides when a unit's complaint history forces an audit.
//
// Evaluation is pull based: SLA breaches are derived from timestamps at the
// moment of evaluation, so no timer ever fires.
package trigger

import (
	"time"

	"lodgeguard/internal/governance/models"
)

const (
	Window             = 60 * 24 * time.Hour
	DensityThreshold   = 5
	SLABreachThreshold = 3
	IncidentThreshold  = 1
)

const (
	ReasonDensity   = "Auto-triggered: complaint density threshold reached (5 complaints in 60 days)"
	ReasonIncident  = "Auto-triggered: severe incident complaint raised"
	ReasonSLABreach = "Auto-triggered: repeated SLA breaches detected in 60 days"
)

// Complaint is the slice of a complaint the evaluator needs.
type Complaint struct {
	CreatedAt    time.Time
	SLADeadline  time.Time
	Resolved     bool
	ResolvedAt   *time.Time
	IncidentFlag bool
}

// Result holds the per-condition outcome of one evaluation.
type Result struct {
	Density   bool
	Incident  bool
	SLABreach bool

	RecentCount   int
	IncidentCount int
	BreachCount   int
}

func (r Result) Any() bool {
	return r.Density || r.Incident || r.SLABreach
}

// Primary returns the trigger and reason for the log an escalation writes.
// Priority is density, then incident, then SLA breach. ok is false when no
// condition fired.
func (r Result) Primary() (trigger models.TriggerType, reason string, ok bool) {
	switch {
	case r.Density:
		return models.TriggerComplaintDensity, ReasonDensity, true
	case r.Incident:
		return models.TriggerIncident, ReasonIncident, true
	case r.SLABreach:
		return models.TriggerSLABreach, ReasonSLABreach, true
	}
	return "", "", false
}

// Evaluate checks the three conditions over the window ending at now.
func Evaluate(complaints []Complaint, now time.Time) Result {
	cutoff := now.Add(-Window)
	var r Result
	for _, c := range complaints {
		if !c.CreatedAt.Before(cutoff) {
			r.RecentCount++
			if c.IncidentFlag {
				r.IncidentCount++
			}
		}
		if c.Resolved && c.ResolvedAt != nil && !c.ResolvedAt.Before(cutoff) && c.ResolvedAt.After(c.SLADeadline) {
			r.BreachCount++
		}
	}
	r.Density = r.RecentCount >= DensityThreshold
	r.Incident = r.IncidentCount >= IncidentThreshold
	r.SLABreach = r.BreachCount >= SLABreachThreshold
	return r
}

// Decision is what the caller must do with a unit after evaluation.
type Decision struct {
	AuditRequired bool
	// Escalate is true only on the false to true edge. The caller writes one
	// log and suspends the unit.
	Escalate bool
	Trigger  models.TriggerType
	Reason   string
}

// Decide combines the stored flag with a fresh result. The flag is sticky;
// only audit resolution clears it.
func Decide(auditRequired bool, r Result) Decision {
	d := Decision{AuditRequired: auditRequired || r.Any()}
	if auditRequired || !r.Any() {
		return d
	}
	d.Escalate = true
	d.Trigger, d.Reason, _ = r.Primary()
	return d
}
