// Package models holds the directory records the governance core reads but
// does not own: corridors, students and landlords.
package models

import (
	"strings"
	"time"

	"lodgeguard/internal/occupancy/codec"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// Corridor is a geographic catchment. Code and CityCode feed occupant ids.
//
// Invariants:
//   - Name is non-empty
//   - Code fits 3 digits, CityCode fits 2 digits
type Corridor struct {
	ID        id.CorridorID `json:"id"`
	Name      string        `json:"name"`
	Code      int           `json:"code"`
	CityCode  int           `json:"city_code"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewCorridor(corridorID id.CorridorID, name string, code, cityCode int, now time.Time) (*Corridor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "corridor name cannot be empty")
	}
	if err := (codec.Location{CityCode: cityCode, CorridorCode: code}).Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	return &Corridor{ID: corridorID, Name: name, Code: code, CityCode: cityCode, CreatedAt: now}, nil
}

// Student belongs to exactly one corridor.
type Student struct {
	ID         id.StudentID  `json:"id"`
	CorridorID id.CorridorID `json:"corridor_id"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Landlord struct {
	ID        id.LandlordID `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
}
