package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/governance/service"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// CreateUnitRequest is the body of POST /units.
type CreateUnitRequest struct {
	CorridorID string `json:"corridor_id"`
	Capacity   int    `json:"capacity"`
	HostelCode int    `json:"hostel_code"`
	RoomNumber int    `json:"room_number"`

	corridorID id.CorridorID
}

func (r *CreateUnitRequest) Validate() error {
	corridorID, err := id.ParseCorridorID(strings.TrimSpace(r.CorridorID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "corridor_id is required")
	}
	if r.Capacity < 0 {
		return dErrors.New(dErrors.CodeValidation, "capacity must be at least 1")
	}
	r.corridorID = corridorID
	return nil
}

func (r *CreateUnitRequest) ToService(landlordID id.LandlordID) service.CreateUnitRequest {
	return service.CreateUnitRequest{
		LandlordID: landlordID,
		CorridorID: r.corridorID,
		Capacity:   r.Capacity,
		HostelCode: r.HostelCode,
		RoomNumber: r.RoomNumber,
	}
}

// ChecklistRequest is a flat object of item name to value. The operational
// checklist also takes a self_declaration string in the same object.
type ChecklistRequest struct {
	patch models.ChecklistPatch
}

const fieldSelfDeclaration = "self_declaration"

func (r *ChecklistRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.patch.Items = make(map[string]bool, len(raw))
	for name, value := range raw {
		if name == fieldSelfDeclaration {
			if err := json.Unmarshal(value, &r.patch.SelfDeclaration); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			continue
		}
		var v bool
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		r.patch.Items[name] = v
	}
	return nil
}

func (r *ChecklistRequest) Patch() models.ChecklistPatch { return r.patch }

// MediaRequest is the body of POST /units/{id}/media. The file itself lives
// in external storage; only its URL is recorded.
type MediaRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`

	mediaType models.MediaType
}

func (r *MediaRequest) Validate() error {
	t, err := models.ParseMediaType(r.Type)
	if err != nil {
		return err
	}
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return dErrors.New(dErrors.CodeValidation, "url is required")
	}
	r.mediaType = t
	return nil
}

func (r *MediaRequest) ParsedType() models.MediaType { return r.mediaType }

// ReviewRequest is the body of PATCH /admin/units/{id}/review.
type ReviewRequest struct {
	StructuralApproved          *bool   `json:"structural_approved"`
	OperationalBaselineApproved *bool   `json:"operational_baseline_approved"`
	Status                      *string `json:"status"`

	patch service.ReviewPatch
}

func (r *ReviewRequest) Validate() error {
	r.patch = service.ReviewPatch{
		StructuralApproved:          r.StructuralApproved,
		OperationalBaselineApproved: r.OperationalBaselineApproved,
	}
	if r.Status != nil {
		status, err := models.ParseUnitStatus(*r.Status)
		if err != nil {
			return err
		}
		r.patch.Status = &status
	}
	return nil
}

func (r *ReviewRequest) Patch() service.ReviewPatch { return r.patch }

// StatusRequest is the body of PATCH /admin/units/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`

	status models.UnitStatus
}

func (r *StatusRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	status, err := models.ParseUnitStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = status
	return nil
}

func (r *StatusRequest) ParsedStatus() models.UnitStatus { return r.status }

// AuditLogRequest is the body of POST /admin/units/{id}/audit-logs.
type AuditLogRequest struct {
	Reason string `json:"reason"`
}

func (r *AuditLogRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

// PenalizeRequest is the body of POST /admin/units/{id}/penalize.
type PenalizeRequest struct {
	Reason        string `json:"reason"`
	PenaltyPoints *int   `json:"penalty_points"`
}

func (r *PenalizeRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if r.PenaltyPoints != nil && *r.PenaltyPoints <= 0 {
		return dErrors.New(dErrors.CodeValidation, "penalty_points must be a positive number")
	}
	return nil
}

func (r *PenalizeRequest) Points() int {
	if r.PenaltyPoints == nil {
		return service.DefaultPenaltyPoints
	}
	return *r.PenaltyPoints
}

// CorrectivePlanRequest is the body of PATCH /admin/audit-logs/{id}/corrective-plan.
type CorrectivePlanRequest struct {
	CorrectiveAction   string     `json:"corrective_action"`
	CorrectiveDeadline *time.Time `json:"corrective_deadline"`
}

func (r *CorrectivePlanRequest) Validate() error {
	r.CorrectiveAction = strings.TrimSpace(r.CorrectiveAction)
	if r.CorrectiveAction == "" {
		return dErrors.New(dErrors.CodeValidation, "corrective_action is required")
	}
	return nil
}

// ResolveAuditLogRequest is the body of PATCH /admin/audit-logs/{id}/resolve.
type ResolveAuditLogRequest struct {
	VerificationNotes string `json:"verification_notes"`
	ReopenUnit        *bool  `json:"reopen_unit"`
}

func (r *ResolveAuditLogRequest) ToService() service.ResolveRequest {
	return service.ResolveRequest{VerificationNotes: r.VerificationNotes, ReopenUnit: r.ReopenUnit}
}
