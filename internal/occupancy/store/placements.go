package store

import (
	"context"

	dmodels "lodgeguard/internal/directory/models"
	gmodels "lodgeguard/internal/governance/models"
	"lodgeguard/internal/occupancy/codec"
	"lodgeguard/internal/occupancy/models"
	id "lodgeguard/pkg/domain"
)

type unitFinder interface {
	FindUnit(ctx context.Context, unitID id.UnitID) (*gmodels.Unit, error)
}

type corridorFinder interface {
	FindCorridor(ctx context.Context, corridorID id.CorridorID) (*dmodels.Corridor, error)
}

// StorePlacements joins the governance unit with its corridor, the
// in-memory counterpart of the Postgres units/corridors join.
type StorePlacements struct {
	units     unitFinder
	corridors corridorFinder
}

func NewStorePlacements(units unitFinder, corridors corridorFinder) *StorePlacements {
	return &StorePlacements{units: units, corridors: corridors}
}

func (p *StorePlacements) FindPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error) {
	u, err := p.units.FindUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	c, err := p.corridors.FindCorridor(ctx, u.CorridorID)
	if err != nil {
		return nil, err
	}
	return &models.Placement{
		UnitID:     u.ID,
		CorridorID: u.CorridorID,
		LandlordID: u.LandlordID,
		Capacity:   u.Capacity,
		Location: codec.Location{
			CityCode:     c.CityCode,
			CorridorCode: c.Code,
			HostelCode:   u.HostelCode,
			RoomNumber:   u.RoomNumber,
		},
	}, nil
}
