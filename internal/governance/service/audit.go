package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	cmodels "lodgeguard/internal/complaint/models"
	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/governance/trigger"
	"lodgeguard/internal/trust"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/requestcontext"
)

const (
	DefaultPenaltyPoints = 8
	DefaultSampleSize    = 3
	MaxSampleSize        = 20
)

// RecalcResult is the outcome of a trust recalculation.
type RecalcResult struct {
	UnitID        id.UnitID        `json:"unit_id"`
	TrustScore    int              `json:"trust_score"`
	TrustBand     trust.Band       `json:"trust_band"`
	AuditRequired bool             `json:"audit_required"`
	Escalated     *models.AuditLog `json:"audit_log,omitempty"`
}

// RecalcTrustAndAudit recomputes the trust score from the full complaint
// history and evaluates the audit triggers. The score always overwrites the
// stored value. On the first trigger the unit is suspended and exactly one
// log is written; the audit flag is read under the unit lock, so concurrent
// callers cannot both escalate.
func (s *Service) RecalcTrustAndAudit(ctx context.Context, unitID id.UnitID) (*RecalcResult, error) {
	ctx, span := s.tracer.Start(ctx, "governance.RecalcTrustAndAudit")
	defer span.End()
	span.SetAttributes(attribute.String("unit_id", unitID.String()))
	defer s.metrics.ObserveRecalc(time.Now())

	var result *RecalcResult
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		now := requestcontext.Now(ctx)
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		complaints, err := s.complaints.ListByUnit(ctx, unitID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaints")
		}

		unit.ApplyTrustScore(trust.Score(cmodels.TrustInputs(complaints), now), now)
		decision := trigger.Decide(unit.AuditRequired, trigger.Evaluate(cmodels.TriggerInputs(complaints), now))

		result = &RecalcResult{UnitID: unit.ID}
		if decision.Escalate {
			log, err := s.openAuditLog(ctx, store, unit, decision.Trigger, decision.Reason)
			if err != nil {
				return err
			}
			result.Escalated = log
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		result.TrustScore = unit.TrustScore
		result.TrustBand = trust.BandOf(unit.TrustScore)
		result.AuditRequired = unit.AuditRequired
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recalc failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("trust_score", result.TrustScore), attribute.Bool("escalated", result.Escalated != nil))
	return result, nil
}

// OpenAuditLog is a manual escalation by an administrator.
func (s *Service) OpenAuditLog(ctx context.Context, unitID id.UnitID, reason string) (*models.AuditLog, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	var log *models.AuditLog
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		log, err = s.openAuditLog(ctx, store, unit, models.TriggerManual, reason)
		if err != nil {
			return err
		}
		return s.saveUnit(ctx, store, unit)
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// PenaltyResult reports a misrepresentation penalty.
type PenaltyResult struct {
	UnitID        id.UnitID        `json:"unit_id"`
	PenaltyPoints int              `json:"penalty_points"`
	TrustScore    int              `json:"trust_score"`
	AuditLog      *models.AuditLog `json:"audit_log"`
}

// PenalizeMisrepresentation deducts points for a false self-declaration and
// puts the unit under audit. A later recalculation recomputes the score from
// complaints alone and so discards the deduction.
func (s *Service) PenalizeMisrepresentation(ctx context.Context, unitID id.UnitID, reason string, points int) (*PenaltyResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if points == 0 {
		points = DefaultPenaltyPoints
	}
	if points < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "penaltyPoints must be a positive number")
	}
	var result *PenaltyResult
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		checklists, err := store.FindChecklists(ctx, unitID)
		if err != nil {
			return translate(err, "checklist not found", "failed to load checklists")
		}
		unit.ApplyPenalty(points, requestcontext.Now(ctx))
		log, err := s.openAuditLog(ctx, store, unit, models.TriggerMisrepresentation, models.MisrepresentationReason(reason),
			func(l *models.AuditLog) { l.Declaration = checklists.Operational.SelfDeclaration })
		if err != nil {
			return err
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		result = &PenaltyResult{UnitID: unit.ID, PenaltyPoints: points, TrustScore: unit.TrustScore, AuditLog: log}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SampledUnit is one unit picked for a random audit.
type SampledUnit struct {
	ID         id.UnitID         `json:"id"`
	TrustScore int               `json:"trust_score"`
	TrustBand  trust.Band        `json:"trust_band"`
	Status     models.UnitStatus `json:"status"`
	AuditLogID *id.AuditLogID    `json:"audit_log_id,omitempty"`
}

type SampleResult struct {
	CorridorID     id.CorridorID `json:"corridor_id"`
	CandidateCount int           `json:"candidate_count"`
	SampledCount   int           `json:"sampled_count"`
	SampledUnits   []SampledUnit `json:"sampled_units"`
}

// SampleRandomAudit picks up to count approved priority-band units of a
// corridor at random. A nil count means DefaultSampleSize. With open set,
// each picked unit is escalated with a random_sample log.
func (s *Service) SampleRandomAudit(ctx context.Context, corridorID id.CorridorID, count *int, open bool) (*SampleResult, error) {
	size := DefaultSampleSize
	if count != nil {
		size = *count
	}
	if size < 1 || size > MaxSampleSize {
		return nil, dErrors.New(dErrors.CodeValidation, "count must be between 1 and 20")
	}
	units, err := s.store.ListUnitsByCorridor(ctx, corridorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list units")
	}
	var candidates []*models.Unit
	for _, u := range units {
		if u.Status == models.UnitStatusApproved && u.TrustScore >= trust.PriorityThreshold {
			candidates = append(candidates, u)
		}
	}
	s.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	picked := candidates[:min(size, len(candidates))]

	result := &SampleResult{
		CorridorID:     corridorID,
		CandidateCount: len(candidates),
		SampledCount:   len(picked),
		SampledUnits:   make([]SampledUnit, 0, len(picked)),
	}
	for _, u := range picked {
		entry := SampledUnit{ID: u.ID, TrustScore: u.TrustScore, TrustBand: trust.BandOf(u.TrustScore), Status: u.Status}
		if open {
			log, err := s.escalateSample(ctx, u.ID)
			if err != nil {
				return nil, err
			}
			if log != nil {
				entry.AuditLogID = &log.ID
				entry.Status = models.UnitStatusSuspended
			}
		}
		result.SampledUnits = append(result.SampledUnits, entry)
	}
	return result, nil
}

// escalateSample opens a random_sample log unless the unit left the
// candidate set since it was listed.
func (s *Service) escalateSample(ctx context.Context, unitID id.UnitID) (*models.AuditLog, error) {
	var log *models.AuditLog
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		if unit.Status != models.UnitStatusApproved {
			return nil
		}
		log, err = s.openAuditLog(ctx, store, unit, models.TriggerRandomSample, models.ReasonRandomSample)
		if err != nil {
			return err
		}
		return s.saveUnit(ctx, store, unit)
	})
	return log, err
}

// SetCorrectivePlan records the required action on an audit log.
func (s *Service) SetCorrectivePlan(ctx context.Context, logID id.AuditLogID, action string, deadline *time.Time) (*models.AuditLog, error) {
	log, err := s.store.FindAuditLog(ctx, logID)
	if err != nil {
		return nil, translate(err, "audit log not found", "failed to load audit log")
	}
	if err := log.SetCorrectivePlan(action, deadline); err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, log.UnitID, func(ctx context.Context, store Store) error {
		if _, err := lockUnit(ctx, store, log.UnitID); err != nil {
			return err
		}
		current, err := store.FindAuditLog(ctx, logID)
		if err != nil {
			return translate(err, "audit log not found", "failed to load audit log")
		}
		if err := current.SetCorrectivePlan(action, deadline); err != nil {
			return err
		}
		if err := store.SaveAuditLog(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save audit log")
		}
		log = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// ResolveRequest carries an administrator's verification outcome.
type ResolveRequest struct {
	VerificationNotes string
	// ReopenUnit defaults to true when nil.
	ReopenUnit *bool
}

type ResolveResult struct {
	AuditLog            *models.AuditLog `json:"audit_log"`
	Unit                *models.Unit     `json:"unit"`
	UnresolvedAuditLogs int              `json:"unresolved_audit_logs"`
	Reopened            bool             `json:"reopened"`
}

// ResolveAuditLog closes a log. The audit flag clears only when it was the
// last unresolved one; the unit then returns to approved if reopening was
// requested and the approval gate holds.
func (s *Service) ResolveAuditLog(ctx context.Context, logID id.AuditLogID, req ResolveRequest) (*ResolveResult, error) {
	existing, err := s.store.FindAuditLog(ctx, logID)
	if err != nil {
		return nil, translate(err, "audit log not found", "failed to load audit log")
	}
	reopen := req.ReopenUnit == nil || *req.ReopenUnit

	var result *ResolveResult
	err = s.tx.RunInTx(ctx, existing.UnitID, func(ctx context.Context, store Store) error {
		now := requestcontext.Now(ctx)
		unit, err := lockUnit(ctx, store, existing.UnitID)
		if err != nil {
			return err
		}
		log, err := store.FindAuditLog(ctx, logID)
		if err != nil {
			return translate(err, "audit log not found", "failed to load audit log")
		}
		alreadyResolved := log.Resolved
		log.Resolve(req.VerificationNotes, now)
		if err := store.SaveAuditLog(ctx, log); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save audit log")
		}
		unresolved, err := store.CountUnresolvedAuditLogs(ctx, unit.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count audit logs")
		}

		// a repeat resolution only updates the notes; the unit was settled the
		// first time and may have been suspended again since
		if alreadyResolved {
			result = &ResolveResult{AuditLog: log, Unit: unit, UnresolvedAuditLogs: unresolved}
			return nil
		}

		from := unit.Status
		reopened := false
		if unresolved == 0 {
			reopened = unit.ClearAudit(reopen, now)
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		s.metrics.IncAuditResolved(reopened)
		s.metrics.IncTransition(string(from), string(unit.Status))
		s.logger.InfoContext(ctx, "audit log resolved",
			"request_id", requestcontext.RequestID(ctx),
			"unit_id", unit.ID,
			"audit_log_id", log.ID,
			"unresolved", unresolved,
			"reopened", reopened,
		)
		result = &ResolveResult{AuditLog: log, Unit: unit, UnresolvedAuditLogs: unresolved, Reopened: reopened}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FlagCapacityViolation punishes a check-in attempt beyond capacity: the
// structural approval is revoked and the unit goes under audit. It runs in
// its own transaction so the punishment commits although the check-in
// failed.
func (s *Service) FlagCapacityViolation(ctx context.Context, unitID id.UnitID) (*models.AuditLog, error) {
	var log *models.AuditLog
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		checklists, err := store.FindChecklists(ctx, unitID)
		if err != nil {
			return translate(err, "checklist not found", "failed to load checklists")
		}
		unit.RevokeStructural(requestcontext.Now(ctx))
		checklists.Structural.Approved = false
		if err := store.SaveChecklist(ctx, checklists.Structural); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save checklist")
		}
		log, err = s.openAuditLog(ctx, store, unit, models.TriggerCapacityViolation, models.ReasonCapacityViolation)
		if err != nil {
			return err
		}
		return s.saveUnit(ctx, store, unit)
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// ListAuditLogs returns a unit's logs newest first.
func (s *Service) ListAuditLogs(ctx context.Context, unitID id.UnitID) ([]*models.AuditLog, error) {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return nil, err
	}
	logs, err := s.store.ListAuditLogs(ctx, unitID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit logs")
	}
	return logs, nil
}

// QueueEntry is a unit awaiting audit.
type QueueEntry struct {
	*models.Unit
	TrustBand trust.Band `json:"trust_band"`
}

// ListAuditQueue returns a corridor's units under audit, lowest trust first.
func (s *Service) ListAuditQueue(ctx context.Context, corridorID id.CorridorID) ([]QueueEntry, error) {
	units, err := s.store.ListUnitsByCorridor(ctx, corridorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list units")
	}
	queue := []QueueEntry{}
	for _, u := range units {
		if u.AuditRequired {
			queue = append(queue, QueueEntry{Unit: u, TrustBand: trust.BandOf(u.TrustScore)})
		}
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].TrustScore < queue[j].TrustScore })
	return queue, nil
}
