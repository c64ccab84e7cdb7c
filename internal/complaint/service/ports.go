package service

import (
	"context"

	dmodels "lodgeguard/internal/directory/models"
	gmodels "lodgeguard/internal/governance/models"
	gservice "lodgeguard/internal/governance/service"
	omodels "lodgeguard/internal/occupancy/models"
	id "lodgeguard/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Governance reads units and reacts to a changed complaint history.
type Governance interface {
	GetUnit(ctx context.Context, unitID id.UnitID) (*gmodels.Unit, error)
	RecalcTrustAndAudit(ctx context.Context, unitID id.UnitID) (*gservice.RecalcResult, error)
}

// Students resolves the filing student's corridor.
type Students interface {
	FindStudent(ctx context.Context, studentID id.StudentID) (*dmodels.Student, error)
}

// Occupants resolves public occupant ids.
type Occupants interface {
	FindActiveOccupant(ctx context.Context, publicID string) (*omodels.Occupant, error)
}
