package service

import (
	"context"

	dmodels "lodgeguard/internal/directory/models"
	gmodels "lodgeguard/internal/governance/models"
	id "lodgeguard/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Governance receives the punishment for a check-in beyond capacity.
type Governance interface {
	FlagCapacityViolation(ctx context.Context, unitID id.UnitID) (*gmodels.AuditLog, error)
}

// Students resolves the student being checked in.
type Students interface {
	FindStudent(ctx context.Context, studentID id.StudentID) (*dmodels.Student, error)
}
