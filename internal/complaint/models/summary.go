package models

import (
	"math"
	"time"
)

// Filter narrows a complaint list. Zero values match everything.
type Filter struct {
	Status       SLAStatus
	IncidentType IncidentType
}

func (f Filter) Match(c *Complaint, now time.Time) bool {
	if f.IncidentType != "" && c.IncidentType != f.IncidentType {
		return false
	}
	if f.Status != "" && c.SLAStatus(now) != f.Status {
		return false
	}
	return true
}

// Summary aggregates a filtered complaint list for landlord dashboards.
type Summary struct {
	Total                  int      `json:"total"`
	OpenComplaints         int      `json:"open_complaints"`
	LateComplaints         int      `json:"late_complaints"`
	ComplaintsLast30Days   int      `json:"complaints_last_30_days"`
	ComplaintsLast60Days   int      `json:"complaints_last_60_days"`
	SLACompliance          *float64 `json:"sla_compliance"`
	AverageResolutionHours *float64 `json:"average_resolution_hours"`
}

// Summarize computes the dashboard figures at now. Compliance is the share
// of resolved complaints closed within the deadline, as a percentage; both
// ratios are nil without resolved complaints.
func Summarize(cs []*Complaint, now time.Time) Summary {
	s := Summary{Total: len(cs)}
	var resolved, late int
	var hours float64
	for _, c := range cs {
		if !c.CreatedAt.Before(now.AddDate(0, 0, -30)) {
			s.ComplaintsLast30Days++
		}
		if !c.CreatedAt.Before(now.AddDate(0, 0, -60)) {
			s.ComplaintsLast60Days++
		}
		if !c.Resolved {
			s.OpenComplaints++
			continue
		}
		resolved++
		if c.ResolvedLate() {
			late++
		}
		if c.ResolvedAt != nil {
			hours += c.ResolvedAt.Sub(c.CreatedAt).Hours()
		}
	}
	s.LateComplaints = late
	if resolved > 0 {
		compliance := round2(float64(resolved-late) / float64(resolved) * 100)
		avg := round2(hours / float64(resolved))
		s.SLACompliance = &compliance
		s.AverageResolutionHours = &avg
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
