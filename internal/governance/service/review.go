package service

import (
	"context"

	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/trust"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/requestcontext"
)

// ReviewPatch is an administrator's review decision. Nil fields are left
// unchanged.
type ReviewPatch struct {
	StructuralApproved          *bool
	OperationalBaselineApproved *bool
	Status                      *models.UnitStatus
}

func (p ReviewPatch) empty() bool {
	return p.StructuralApproved == nil && p.OperationalBaselineApproved == nil && p.Status == nil
}

// ReviewUnit applies approval flags and an optional status in one step.
//
// A flag can only be set true over a complete checklist. Without an explicit
// status, setting both flags true promotes the unit to approved when the
// gate holds, and a submitted unit otherwise moves to admin_review.
func (s *Service) ReviewUnit(ctx context.Context, unitID id.UnitID, patch ReviewPatch) (*models.Unit, error) {
	if patch.empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "No review updates provided")
	}
	var result *models.Unit
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		now := requestcontext.Now(ctx)
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		checklists, err := store.FindChecklists(ctx, unitID)
		if err != nil {
			return translate(err, "checklist not found", "failed to load checklists")
		}

		from := unit.Status
		var touched []*models.Checklist
		for _, f := range []struct {
			kind  models.ChecklistKind
			value *bool
		}{
			{models.ChecklistStructural, patch.StructuralApproved},
			{models.ChecklistOperational, patch.OperationalBaselineApproved},
		} {
			if f.value == nil {
				continue
			}
			c := checklists.Of(f.kind)
			if *f.value && !c.Complete() {
				return dErrors.New(dErrors.CodeValidation,
					"cannot approve "+string(f.kind)+" baseline: all "+string(f.kind)+" checklist items must be true")
			}
			c.Approved = *f.value
			unit.SetApproval(f.kind, *f.value, now)
			touched = append(touched, c)
		}

		target := s.reviewTarget(unit, from, patch)
		if target != "" {
			if err := unit.TransitionTo(target, now); err != nil {
				return err
			}
		}
		if unit.Status == models.UnitStatusRejected {
			touched = clearApprovals(checklists)
		}

		for _, c := range touched {
			if err := store.SaveChecklist(ctx, c); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save checklist")
			}
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		s.metrics.IncTransition(string(from), string(unit.Status))
		s.logger.InfoContext(ctx, "unit reviewed",
			"request_id", requestcontext.RequestID(ctx),
			"unit_id", unit.ID,
			"from", from,
			"to", unit.Status,
		)
		result = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reviewTarget picks the status a review moves to. An empty result keeps
// whatever status flag application left.
func (s *Service) reviewTarget(unit *models.Unit, from models.UnitStatus, patch ReviewPatch) models.UnitStatus {
	if patch.Status != nil {
		return *patch.Status
	}
	bothSet := patch.StructuralApproved != nil && *patch.StructuralApproved &&
		patch.OperationalBaselineApproved != nil && *patch.OperationalBaselineApproved
	if bothSet && unit.TrustScore >= trust.VisibilityThreshold && !unit.AuditRequired &&
		unit.Status.CanTransitionTo(models.UnitStatusApproved) {
		return models.UnitStatusApproved
	}
	if from == models.UnitStatusSubmitted {
		return models.UnitStatusAdminReview
	}
	return ""
}

// SetStatus is a manual transition. It enforces the guard table and the
// approval gate; rejection clears both approval flags.
func (s *Service) SetStatus(ctx context.Context, unitID id.UnitID, status models.UnitStatus) (*models.Unit, error) {
	var result *models.Unit
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		from := unit.Status
		if err := unit.TransitionTo(status, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if status == models.UnitStatusRejected {
			checklists, err := store.FindChecklists(ctx, unitID)
			if err != nil {
				return translate(err, "checklist not found", "failed to load checklists")
			}
			for _, c := range clearApprovals(checklists) {
				if err := store.SaveChecklist(ctx, c); err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save checklist")
				}
			}
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		s.metrics.IncTransition(string(from), string(unit.Status))
		s.logger.InfoContext(ctx, "unit status changed",
			"request_id", requestcontext.RequestID(ctx),
			"unit_id", unit.ID,
			"from", from,
			"to", unit.Status,
		)
		result = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func clearApprovals(cs *models.Checklists) []*models.Checklist {
	cs.Structural.Approved = false
	cs.Operational.Approved = false
	return []*models.Checklist{cs.Structural, cs.Operational}
}
