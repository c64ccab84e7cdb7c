package models

import (
	"strings"
	"time"

	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// TriggerType records why an audit log was opened.
type TriggerType string

const (
	TriggerComplaintDensity  TriggerType = "complaint_density"
	TriggerSLABreach         TriggerType = "sla_breach"
	TriggerIncident          TriggerType = "incident"
	TriggerCapacityViolation TriggerType = "capacity_violation"
	TriggerMisrepresentation TriggerType = "misrepresentation"
	TriggerRandomSample      TriggerType = "random_sample"
	TriggerManual            TriggerType = "manual"
)

// Fixed reasons written by automatic escalation paths.
const (
	ReasonCapacityViolation = "Capacity breach attempt: landlord tried to check in beyond approved unit capacity"
	ReasonRandomSample      = "Random audit sample: high-trust unit selected for verification"
	misrepresentationPrefix = "Self-declaration misrepresentation: "
)

// MisrepresentationReason formats the reason for a self-declaration penalty.
func MisrepresentationReason(detail string) string {
	return misrepresentationPrefix + strings.TrimSpace(detail)
}

// AuditLog is an escalation requiring corrective action. Only the resolution
// and corrective-plan fields change after creation.
//
// Invariants:
//   - Reason is non-empty
//   - ResolvedAt is set iff Resolved
type AuditLog struct {
	ID                 id.AuditLogID `json:"id"`
	UnitID             id.UnitID     `json:"unit_id"`
	TriggerType        TriggerType   `json:"trigger_type"`
	Reason             string        `json:"reason"`
	CorrectiveAction   string        `json:"corrective_action,omitempty"`
	CorrectiveDeadline *time.Time    `json:"corrective_deadline,omitempty"`
	Resolved           bool          `json:"resolved"`
	ResolvedAt         *time.Time    `json:"resolved_at,omitempty"`
	VerificationNotes  string        `json:"verification_notes,omitempty"`
	// Declaration snapshots the operational self-declaration a
	// misrepresentation penalty refers to.
	Declaration string    `json:"declaration,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewAuditLog(logID id.AuditLogID, unitID id.UnitID, trigger TriggerType, reason string, now time.Time) (*AuditLog, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "audit log reason cannot be empty")
	}
	return &AuditLog{
		ID:          logID,
		UnitID:      unitID,
		TriggerType: trigger,
		Reason:      reason,
		CreatedAt:   now,
	}, nil
}

// SetCorrectivePlan records the action the landlord must take. A nil
// deadline clears any previous one.
func (l *AuditLog) SetCorrectivePlan(action string, deadline *time.Time) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return dErrors.New(dErrors.CodeValidation, "corrective action is required")
	}
	l.CorrectiveAction = action
	l.CorrectiveDeadline = deadline
	return nil
}

// Resolve closes the log. Resolving twice keeps the first resolution time
// and only refreshes the notes.
func (l *AuditLog) Resolve(notes string, now time.Time) {
	if notes = strings.TrimSpace(notes); notes != "" {
		l.VerificationNotes = notes
	}
	if l.Resolved {
		return
	}
	l.Resolved = true
	l.ResolvedAt = &now
}
