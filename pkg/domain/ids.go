package domain

import (
	"github.com/google/uuid"

	dErrors "lodgeguard/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a StudentID can never be passed
// where a UnitID is expected.
type (
	UnitID      uuid.UUID
	CorridorID  uuid.UUID
	StudentID   uuid.UUID
	LandlordID  uuid.UUID
	AdminID     uuid.UUID
	ComplaintID uuid.UUID
	AuditLogID  uuid.UUID
	MediaID     uuid.UUID
	OccupancyID uuid.UUID
	OccupantID  uuid.UUID
)

// maxIDLength bounds input before it reaches uuid.Parse.
const maxIDLength = 64

func parseID[T ~[16]byte](s, kind string) (T, error) {
	var zero T
	if s == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return T(u), nil
}

func ParseUnitID(s string) (UnitID, error)           { return parseID[UnitID](s, "unit id") }
func ParseCorridorID(s string) (CorridorID, error)   { return parseID[CorridorID](s, "corridor id") }
func ParseStudentID(s string) (StudentID, error)     { return parseID[StudentID](s, "student id") }
func ParseLandlordID(s string) (LandlordID, error)   { return parseID[LandlordID](s, "landlord id") }
func ParseAdminID(s string) (AdminID, error)         { return parseID[AdminID](s, "admin id") }
func ParseComplaintID(s string) (ComplaintID, error) { return parseID[ComplaintID](s, "complaint id") }
func ParseAuditLogID(s string) (AuditLogID, error)   { return parseID[AuditLogID](s, "audit log id") }
func ParseMediaID(s string) (MediaID, error)         { return parseID[MediaID](s, "media id") }
func ParseOccupancyID(s string) (OccupancyID, error) { return parseID[OccupancyID](s, "occupancy id") }

func (id UnitID) String() string      { return uuid.UUID(id).String() }
func (id CorridorID) String() string  { return uuid.UUID(id).String() }
func (id StudentID) String() string   { return uuid.UUID(id).String() }
func (id LandlordID) String() string  { return uuid.UUID(id).String() }
func (id AdminID) String() string     { return uuid.UUID(id).String() }
func (id ComplaintID) String() string { return uuid.UUID(id).String() }
func (id AuditLogID) String() string  { return uuid.UUID(id).String() }
func (id MediaID) String() string     { return uuid.UUID(id).String() }
func (id OccupancyID) String() string { return uuid.UUID(id).String() }
func (id OccupantID) String() string  { return uuid.UUID(id).String() }

func (id UnitID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id StudentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id LandlordID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CorridorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id OccupancyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UnitID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id CorridorID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id StudentID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id LandlordID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id AdminID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ComplaintID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id AuditLogID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id MediaID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id OccupancyID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id OccupantID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

// LockKey names the per-unit exclusive section shared by every in-memory
// store that mutates unit-scoped state.
func (id UnitID) LockKey() string { return "unit:" + id.String() }
