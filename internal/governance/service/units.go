package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"lodgeguard/internal/governance/models"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/requestcontext"
)

// CreateUnitRequest carries the landlord's listing declaration.
type CreateUnitRequest struct {
	LandlordID id.LandlordID
	CorridorID id.CorridorID
	Capacity   int
	HostelCode int
	RoomNumber int
}

// CreateUnit registers a draft unit with empty checklists.
func (s *Service) CreateUnit(ctx context.Context, req CreateUnitRequest) (*models.Unit, error) {
	if _, err := s.directory.FindCorridor(ctx, req.CorridorID); err != nil {
		return nil, translate(err, "corridor not found", "failed to load corridor")
	}
	if _, err := s.directory.FindLandlord(ctx, req.LandlordID); err != nil {
		if isNotFound(err) {
			return nil, dErrors.New(dErrors.CodeForbidden, "landlord profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load landlord")
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = 1
	}
	unit, err := models.NewUnit(id.UnitID(uuid.New()), req.CorridorID, req.LandlordID, capacity, req.HostelCode, req.RoomNumber, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	if err := s.store.CreateUnit(ctx, unit, models.NewChecklists(unit.ID)); err != nil {
		if isConflict(err) {
			return nil, dErrors.New(dErrors.CodeConflict, "a unit with this hostel code and room number already exists in the corridor")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create unit")
	}
	s.logger.InfoContext(ctx, "unit created",
		"request_id", requestcontext.RequestID(ctx),
		"unit_id", unit.ID,
		"corridor_id", unit.CorridorID,
		"landlord_id", unit.LandlordID,
	)
	return unit, nil
}

// SetChecklist edits one checklist. Administrators merge the given items and
// their edit decides approval; landlords replace the whole declaration and
// can only lose approval. Clearing a flag on an approved unit demotes it.
func (s *Service) SetChecklist(ctx context.Context, actor id.Actor, unitID id.UnitID, kind models.ChecklistKind, patch models.ChecklistPatch) (*models.Checklist, error) {
	if err := models.ValidatePatch(kind, patch); err != nil {
		return nil, err
	}
	var result *models.Checklist
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		checklists, err := store.FindChecklists(ctx, unitID)
		if err != nil {
			return translate(err, "checklist not found", "failed to load checklists")
		}
		c := checklists.Of(kind)
		switch {
		case actor.IsAdmin():
			c.Apply(patch, true)
		default:
			landlordID, ok := actor.LandlordID()
			if !ok {
				return dErrors.New(dErrors.CodeForbidden, "only landlords and administrators can edit checklists")
			}
			if err := requireOwner(unit, landlordID); err != nil {
				return err
			}
			c.Apply(patch, false)
		}

		from := unit.Status
		unit.SetApproval(kind, c.Approved, requestcontext.Now(ctx))
		if err := store.SaveChecklist(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save checklist")
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		if from != unit.Status {
			s.metrics.IncTransition(string(from), string(unit.Status))
			s.logger.InfoContext(ctx, "unit demoted after checklist edit",
				"request_id", requestcontext.RequestID(ctx),
				"unit_id", unit.ID,
				"checklist", kind,
			)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetChecklists returns both checklists of a unit.
func (s *Service) GetChecklists(ctx context.Context, unitID id.UnitID) (*models.Checklists, error) {
	cs, err := s.store.FindChecklists(ctx, unitID)
	if err != nil {
		return nil, translate(err, "unit not found", "failed to load checklists")
	}
	return cs, nil
}

// AddMedia attaches evidence to a draft unit whose media is not yet locked.
func (s *Service) AddMedia(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID, mediaType models.MediaType, url string) (*models.Media, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "url is required")
	}
	var media *models.Media
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		if err := requireOwner(unit, landlordID); err != nil {
			return err
		}
		if unit.Status != models.UnitStatusDraft {
			return dErrors.New(dErrors.CodeValidation, "media can only be uploaded while unit status is draft")
		}
		existing, err := store.ListMedia(ctx, unitID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load media")
		}
		if models.AnyLocked(existing) {
			return dErrors.New(dErrors.CodeValidation, "media is locked for this unit")
		}
		media = &models.Media{
			ID:        id.MediaID(uuid.New()),
			UnitID:    unitID,
			Type:      mediaType,
			URL:       url,
			CreatedAt: requestcontext.Now(ctx),
		}
		if err := store.AddMedia(ctx, media); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save media")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

// SubmitUnit moves a draft to submitted once both checklists are complete
// and every media type is present. Submission locks the media set.
func (s *Service) SubmitUnit(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID) (*models.Unit, error) {
	var result *models.Unit
	err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, store Store) error {
		unit, err := lockUnit(ctx, store, unitID)
		if err != nil {
			return err
		}
		if err := requireOwner(unit, landlordID); err != nil {
			return err
		}
		checklists, err := store.FindChecklists(ctx, unitID)
		if err != nil {
			return translate(err, "checklist not found", "failed to load checklists")
		}
		media, err := store.ListMedia(ctx, unitID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load media")
		}
		missing := models.MissingMediaTypes(media)
		if !checklists.Structural.Complete() || !checklists.Operational.Complete() || len(missing) > 0 {
			names := make([]string, len(missing))
			for i, m := range missing {
				names[i] = string(m)
			}
			return dErrors.New(dErrors.CodeValidation, "checklist and required media must be provided before submission").
				WithDetail("missing_media_types", names)
		}
		from := unit.Status
		if err := unit.TransitionTo(models.UnitStatusSubmitted, requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := store.LockMedia(ctx, unitID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock media")
		}
		if err := s.saveUnit(ctx, store, unit); err != nil {
			return err
		}
		s.metrics.IncTransition(string(from), string(unit.Status))
		result = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict)
}

func newAuditLogID() id.AuditLogID {
	return id.AuditLogID(uuid.New())
}

func defaultShuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}
