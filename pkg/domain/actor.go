package domain

import (
	"github.com/google/uuid"

	dErrors "lodgeguard/pkg/domain-errors"
)

// Role is the caller's platform role as asserted by the bearer token.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role claim. Unknown roles are rejected.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleLandlord, RoleAdmin:
		return r, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported role")
	}
}

// Actor is the authenticated principal for a request. ID is interpreted
// through the role-specific accessors.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsZero() bool { return a.ID == uuid.Nil }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// StudentID returns the actor as a student and false for any other role.
func (a Actor) StudentID() (StudentID, bool) {
	return StudentID(a.ID), a.Role == RoleStudent && !a.IsZero()
}

// LandlordID returns the actor as a landlord and false for any other role.
func (a Actor) LandlordID() (LandlordID, bool) {
	return LandlordID(a.ID), a.Role == RoleLandlord && !a.IsZero()
}
