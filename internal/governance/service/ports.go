package service

import (
	"context"

	cmodels "lodgeguard/internal/complaint/models"
	dmodels "lodgeguard/internal/directory/models"
	id "lodgeguard/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// ComplaintHistory is the complaint ledger as seen by trust recalculation.
type ComplaintHistory interface {
	ListByUnit(ctx context.Context, unitID id.UnitID) ([]*cmodels.Complaint, error)
}

// OccupancyCounter reports active occupancies for listing views.
type OccupancyCounter interface {
	CountActiveByUnit(ctx context.Context, unitID id.UnitID) (int, error)
}

// Directory resolves the records a new unit points at.
type Directory interface {
	FindCorridor(ctx context.Context, corridorID id.CorridorID) (*dmodels.Corridor, error)
	FindLandlord(ctx context.Context, landlordID id.LandlordID) (*dmodels.Landlord, error)
}
