package models

import (
	"fmt"
	"time"

	"lodgeguard/internal/occupancy/codec"
	"lodgeguard/internal/trust"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// Unit is the aggregate root for a rental listing.
//
// Invariants:
//   - Capacity >= 1
//   - 0 <= TrustScore <= 100
//   - HostelCode and RoomNumber fit three digits
//   - Status == approved implies both approval flags, TrustScore >= 50 and
//     !AuditRequired
//   - AuditRequired implies at least one unresolved audit log (enforced by
//     the service, which only sets the flag alongside a new log)
//   - archived is terminal and never suspended automatically
type Unit struct {
	ID                          id.UnitID     `json:"id"`
	CorridorID                  id.CorridorID `json:"corridor_id"`
	LandlordID                  id.LandlordID `json:"landlord_id"`
	Capacity                    int           `json:"capacity"`
	HostelCode                  int           `json:"hostel_code"`
	RoomNumber                  int           `json:"room_number"`
	Status                      UnitStatus    `json:"status"`
	StructuralApproved          bool          `json:"structural_approved"`
	OperationalBaselineApproved bool          `json:"operational_baseline_approved"`
	TrustScore                  int           `json:"trust_score"`
	AuditRequired               bool          `json:"audit_required"`
	FalseDeclarationCount       int           `json:"false_declaration_count"`
	CreatedAt                   time.Time     `json:"created_at"`
	UpdatedAt                   time.Time     `json:"updated_at"`
}

// NewUnit creates a draft unit at the base trust score.
func NewUnit(unitID id.UnitID, corridorID id.CorridorID, landlordID id.LandlordID, capacity, hostelCode, roomNumber int, now time.Time) (*Unit, error) {
	if capacity < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "capacity must be at least 1")
	}
	if err := (codec.Location{HostelCode: hostelCode, RoomNumber: roomNumber}).Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	return &Unit{
		ID:         unitID,
		CorridorID: corridorID,
		LandlordID: landlordID,
		Capacity:   capacity,
		HostelCode: hostelCode,
		RoomNumber: roomNumber,
		Status:     UnitStatusDraft,
		TrustScore: trust.BaseScore,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (u *Unit) OwnedBy(landlordID id.LandlordID) bool {
	return u.LandlordID == landlordID
}

func (u *Unit) IsArchived() bool {
	return u.Status == UnitStatusArchived
}

// CanApprove checks the approval gate against the current flags.
func (u *Unit) CanApprove() error {
	return u.canApproveWith(u.StructuralApproved, u.OperationalBaselineApproved)
}

func (u *Unit) canApproveWith(structural, operational bool) error {
	if !structural || !operational {
		return dErrors.New(dErrors.CodeValidation, "cannot set status to approved: both structural and operational baselines must be approved")
	}
	if u.TrustScore < trust.VisibilityThreshold {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("cannot set status to approved: trust score must be at least %d", trust.VisibilityThreshold))
	}
	if u.AuditRequired {
		return dErrors.New(dErrors.CodeValidation, "cannot set status to approved while audit is required")
	}
	return nil
}

// CanTransitionTo validates target against the guard table and, for
// approved, the approval gate.
func (u *Unit) CanTransitionTo(target UnitStatus) error {
	if u.Status == target {
		return nil
	}
	if !u.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("cannot move unit from %s to %s", u.Status, target))
	}
	if target == UnitStatusApproved {
		return u.CanApprove()
	}
	return nil
}

// ApplyTransition moves to target. rejected clears both approval flags.
// Call CanTransitionTo first.
func (u *Unit) ApplyTransition(target UnitStatus, now time.Time) {
	u.Status = target
	if target == UnitStatusRejected {
		u.StructuralApproved = false
		u.OperationalBaselineApproved = false
	}
	u.UpdatedAt = now
}

// TransitionTo validates and applies in one call.
func (u *Unit) TransitionTo(target UnitStatus, now time.Time) error {
	if err := u.CanTransitionTo(target); err != nil {
		return err
	}
	u.ApplyTransition(target, now)
	return nil
}

// RequireAudit sets the sticky audit flag and suspends the unit unless it is
// archived. The caller writes the matching audit log.
func (u *Unit) RequireAudit(now time.Time) {
	u.AuditRequired = true
	if !u.IsArchived() {
		u.Status = UnitStatusSuspended
	}
	u.UpdatedAt = now
}

// ClearAudit drops the audit flag once no unresolved log remains. When reopen
// is requested and the approval gate holds, the unit returns to approved.
func (u *Unit) ClearAudit(reopen bool, now time.Time) bool {
	u.AuditRequired = false
	u.UpdatedAt = now
	if !reopen || u.IsArchived() || u.CanApprove() != nil {
		return false
	}
	u.Status = UnitStatusApproved
	return true
}

// SetStructuralApproved updates the flag and demotes an approved unit whose
// flag was cleared.
func (u *Unit) SetStructuralApproved(v bool, now time.Time) {
	u.StructuralApproved = v
	u.demoteIfUnapproved(now)
}

// SetOperationalApproved updates the flag and demotes an approved unit whose
// flag was cleared.
func (u *Unit) SetOperationalApproved(v bool, now time.Time) {
	u.OperationalBaselineApproved = v
	u.demoteIfUnapproved(now)
}

// SetApproval routes to the flag of kind.
func (u *Unit) SetApproval(kind ChecklistKind, v bool, now time.Time) {
	if kind == ChecklistStructural {
		u.SetStructuralApproved(v, now)
		return
	}
	u.SetOperationalApproved(v, now)
}

// demoteIfUnapproved keeps approved units inside the approval gate: losing a
// flag or dropping below the visibility threshold sends them to admin_review.
func (u *Unit) demoteIfUnapproved(now time.Time) {
	if u.Status == UnitStatusApproved &&
		(!u.StructuralApproved || !u.OperationalBaselineApproved || u.TrustScore < trust.VisibilityThreshold) {
		u.Status = UnitStatusAdminReview
	}
	u.UpdatedAt = now
}

// ApplyTrustScore stores a recomputed score, clamped to the valid range.
func (u *Unit) ApplyTrustScore(score int, now time.Time) {
	u.TrustScore = trust.Clamp(score)
	u.demoteIfUnapproved(now)
}

// ApplyPenalty subtracts points from the trust score and counts a false
// declaration.
func (u *Unit) ApplyPenalty(points int, now time.Time) {
	u.TrustScore = trust.Clamp(u.TrustScore - points)
	u.FalseDeclarationCount++
	u.demoteIfUnapproved(now)
}

// RevokeStructural clears the structural flag after a capacity breach.
// The caller follows up with RequireAudit, so no demotion is needed here.
func (u *Unit) RevokeStructural(now time.Time) {
	u.StructuralApproved = false
	u.UpdatedAt = now
}

// MaxOccupants is the allocator ceiling, bounded by the single digit index.
func (u *Unit) MaxOccupants() int {
	return min(u.Capacity, codec.MaxOccupantIndex)
}
