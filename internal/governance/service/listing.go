package service

import (
	"context"
	"sort"

	cmodels "lodgeguard/internal/complaint/models"
	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/trust"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/requestcontext"
)

// Explanation tells a landlord or administrator why a unit is or is not
// listed.
type Explanation struct {
	UnitID                      id.UnitID         `json:"unit_id"`
	Status                      models.UnitStatus `json:"status"`
	StructuralApproved          bool              `json:"structural_approved"`
	OperationalBaselineApproved bool              `json:"operational_baseline_approved"`
	TrustScore                  int               `json:"trust_score"`
	TrustBand                   trust.Band        `json:"trust_band"`
	ActiveComplaints            int               `json:"active_complaints"`
	ComplaintsLast30Days        int               `json:"complaints_last_30_days"`
	AuditRequired               bool              `json:"audit_required"`
	Visible                     bool              `json:"visible"`
	VisibilityReasons           []string          `json:"visibility_reasons"`
}

func (s *Service) ExplainUnit(ctx context.Context, unitID id.UnitID) (*Explanation, error) {
	unit, err := s.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	complaints, err := s.complaints.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaints")
	}
	active := 0
	for _, c := range complaints {
		if !c.Resolved {
			active++
		}
	}
	inputs := cmodels.TrustInputs(complaints)
	return &Explanation{
		UnitID:                      unit.ID,
		Status:                      unit.Status,
		StructuralApproved:          unit.StructuralApproved,
		OperationalBaselineApproved: unit.OperationalBaselineApproved,
		TrustScore:                  unit.TrustScore,
		TrustBand:                   trust.BandOf(unit.TrustScore),
		ActiveComplaints:            active,
		ComplaintsLast30Days:        trust.CountSince(inputs, requestcontext.Now(ctx), trust.RecurrenceWindow),
		AuditRequired:               unit.AuditRequired,
		Visible:                     unit.IsVisible(),
		VisibilityReasons:           unit.VisibilityReasons(),
	}, nil
}

// Listing is a unit as students see it.
type Listing struct {
	*models.Unit
	TrustBand      trust.Band `json:"trust_band"`
	OccupancyCount int        `json:"occupancy_count"`
	AvailableSlots int        `json:"available_slots"`
}

// ListVisibleUnits returns a corridor's visible units, highest trust first.
func (s *Service) ListVisibleUnits(ctx context.Context, corridorID id.CorridorID) ([]Listing, error) {
	units, err := s.store.ListUnitsByCorridor(ctx, corridorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list units")
	}
	listings := []Listing{}
	for _, u := range units {
		if !u.IsVisible() {
			continue
		}
		count := 0
		if s.occupancy != nil {
			count, err = s.occupancy.CountActiveByUnit(ctx, u.ID)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count occupancy")
			}
		}
		listings = append(listings, Listing{
			Unit:           u,
			TrustBand:      trust.BandOf(u.TrustScore),
			OccupancyCount: count,
			AvailableSlots: max(u.Capacity-count, 0),
		})
	}
	sort.SliceStable(listings, func(i, j int) bool { return listings[i].TrustScore > listings[j].TrustScore })
	return listings, nil
}

// HiddenListing is a unit withheld from students, with the reasons.
type HiddenListing struct {
	*models.Unit
	TrustBand         trust.Band `json:"trust_band"`
	VisibilityReasons []string   `json:"visibility_reasons"`
}

// ListHiddenUnits returns a corridor's units that fail the visibility rule.
func (s *Service) ListHiddenUnits(ctx context.Context, corridorID id.CorridorID) ([]HiddenListing, error) {
	units, err := s.store.ListUnitsByCorridor(ctx, corridorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list units")
	}
	hidden := []HiddenListing{}
	for _, u := range units {
		if u.IsVisible() {
			continue
		}
		hidden = append(hidden, HiddenListing{
			Unit:              u,
			TrustBand:         trust.BandOf(u.TrustScore),
			VisibilityReasons: u.VisibilityReasons(),
		})
	}
	return hidden, nil
}
