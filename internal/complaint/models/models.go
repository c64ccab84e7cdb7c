package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"lodgeguard/internal/governance/trigger"
	"lodgeguard/internal/trust"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

const (
	// SLAWindow is the time a landlord has to resolve a complaint.
	SLAWindow        = 48 * time.Hour
	MaxMessageLength = 1200
	MinSeverity      = 1
	MaxSeverity      = 5
)

// IncidentType classifies a complaint. Everything except other counts as an
// incident for audit triggering.
type IncidentType string

const (
	IncidentSafety     IncidentType = "safety"
	IncidentInjury     IncidentType = "injury"
	IncidentFire       IncidentType = "fire"
	IncidentHarassment IncidentType = "harassment"
	IncidentWater      IncidentType = "water"
	IncidentCommonArea IncidentType = "common_area"
	IncidentOther      IncidentType = "other"
)

var incidentTypes = map[IncidentType]bool{
	IncidentSafety: true, IncidentInjury: true, IncidentFire: true, IncidentHarassment: true,
	IncidentWater: true, IncidentCommonArea: true, IncidentOther: true,
}

// ParseIncidentType defaults an empty value to other.
func ParseIncidentType(s string) (IncidentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IncidentOther, nil
	}
	t := IncidentType(s)
	if !incidentTypes[t] {
		return "", dErrors.New(dErrors.CodeValidation, "invalid incident type")
	}
	return t, nil
}

func (t IncidentType) IsIncident() bool {
	return t != IncidentOther
}

// Complaint is a tenant report against a unit. Only the resolution fields
// change after creation.
//
// Invariants:
//   - 1 <= Severity <= 5
//   - SLADeadline == CreatedAt + SLAWindow
//   - ResolvedAt is set iff Resolved
//   - IncidentFlag == IncidentType.IsIncident()
type Complaint struct {
	ID               id.ComplaintID `json:"id"`
	UnitID           id.UnitID      `json:"unit_id"`
	StudentID        id.StudentID   `json:"student_id"`
	OccupantPublicID string         `json:"occupant_id,omitempty"`
	Severity         int            `json:"severity"`
	IncidentType     IncidentType   `json:"incident_type"`
	IncidentFlag     bool           `json:"incident_flag"`
	Message          string         `json:"message,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	SLADeadline      time.Time      `json:"sla_deadline"`
	Resolved         bool           `json:"resolved"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
}

func NewComplaint(complaintID id.ComplaintID, unitID id.UnitID, studentID id.StudentID, occupantPublicID string, severity int, incident IncidentType, message string, now time.Time) (*Complaint, error) {
	if severity < MinSeverity || severity > MaxSeverity {
		return nil, dErrors.New(dErrors.CodeValidation, "severity must be an integer between 1 and 5")
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, dErrors.New(dErrors.CodeValidation, "message must be at most 1200 characters")
	}
	if incident == "" {
		incident = IncidentOther
	}
	return &Complaint{
		ID:               complaintID,
		UnitID:           unitID,
		StudentID:        studentID,
		OccupantPublicID: occupantPublicID,
		Severity:         severity,
		IncidentType:     incident,
		IncidentFlag:     incident.IsIncident(),
		Message:          message,
		CreatedAt:        now,
		SLADeadline:      now.Add(SLAWindow),
	}, nil
}

// Resolve marks the complaint resolved. It reports false when it already was.
func (c *Complaint) Resolve(now time.Time) bool {
	if c.Resolved {
		return false
	}
	c.Resolved = true
	c.ResolvedAt = &now
	return true
}

// ResolvedLate reports a resolution strictly after the deadline.
func (c *Complaint) ResolvedLate() bool {
	return c.Resolved && c.ResolvedAt != nil && c.ResolvedAt.After(c.SLADeadline)
}

func (c *Complaint) TrustInput() trust.Complaint {
	return trust.Complaint{
		Severity:    c.Severity,
		CreatedAt:   c.CreatedAt,
		SLADeadline: c.SLADeadline,
		Resolved:    c.Resolved,
		ResolvedAt:  c.ResolvedAt,
	}
}

func (c *Complaint) TriggerInput() trigger.Complaint {
	return trigger.Complaint{
		CreatedAt:    c.CreatedAt,
		SLADeadline:  c.SLADeadline,
		Resolved:     c.Resolved,
		ResolvedAt:   c.ResolvedAt,
		IncidentFlag: c.IncidentFlag,
	}
}

// TrustInputs converts a history for trust.Score.
func TrustInputs(cs []*Complaint) []trust.Complaint {
	out := make([]trust.Complaint, len(cs))
	for i, c := range cs {
		out[i] = c.TrustInput()
	}
	return out
}

// TriggerInputs converts a history for trigger.Evaluate.
func TriggerInputs(cs []*Complaint) []trigger.Complaint {
	out := make([]trigger.Complaint, len(cs))
	for i, c := range cs {
		out[i] = c.TriggerInput()
	}
	return out
}
