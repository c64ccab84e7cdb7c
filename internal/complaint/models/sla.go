package models

import (
	"time"

	dErrors "lodgeguard/pkg/domain-errors"
)

// SLAStatus is derived at read time; nothing stores it.
type SLAStatus string

const (
	SLAOpen     SLAStatus = "open"
	SLAResolved SLAStatus = "resolved"
	SLALate     SLAStatus = "late"
	SLABreached SLAStatus = "sla_breached"
)

func ParseSLAStatus(s string) (SLAStatus, error) {
	switch st := SLAStatus(s); st {
	case SLAOpen, SLAResolved, SLALate, SLABreached:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "status must be open, resolved, late or sla_breached")
	}
}

func (c *Complaint) SLAStatus(now time.Time) SLAStatus {
	switch {
	case c.ResolvedLate():
		return SLALate
	case c.Resolved:
		return SLAResolved
	case now.After(c.SLADeadline):
		return SLABreached
	default:
		return SLAOpen
	}
}

// TrustImpact is the per-complaint share of the trust penalty, ignoring the
// recurrence term.
func (c *Complaint) TrustImpact() int {
	impact := c.Severity * 2
	if !c.Resolved {
		impact += 5
	}
	if c.ResolvedLate() {
		impact += 3
	}
	return impact
}

// View is the list representation with SLA fields computed at now.
type View struct {
	*Complaint
	SLAStatus       SLAStatus `json:"sla_status"`
	SLACountdownMs  *int64    `json:"sla_countdown_ms"`
	TrustImpactHint int       `json:"trust_impact_hint"`
}

func NewView(c *Complaint, now time.Time) View {
	v := View{
		Complaint:       c,
		SLAStatus:       c.SLAStatus(now),
		TrustImpactHint: -c.TrustImpact(),
	}
	if !c.Resolved {
		ms := c.SLADeadline.Sub(now).Milliseconds()
		v.SLACountdownMs = &ms
	}
	return v
}
