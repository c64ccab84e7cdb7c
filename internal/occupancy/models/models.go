// Package models holds occupancy records and the public occupant identity
// issued at check-in.
package models

import (
	"time"

	"lodgeguard/internal/occupancy/codec"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// Reasons attached to check-in and check-out failures.
const (
	ReasonCapacityReached      = "capacity_reached"
	ReasonNoSlotAvailable      = "no_slot_available"
	ReasonStudentAlreadyActive = "student_already_active"
	ReasonInvalidCapacity      = "invalid_capacity"
	ReasonCheckInConflict      = "check_in_conflict"
	ReasonAlreadyCheckedOut    = "already_checked_out"
)

// Occupancy is a student's stay in a unit. EndDate is nil while active.
type Occupancy struct {
	ID        id.OccupancyID `json:"id"`
	UnitID    id.UnitID      `json:"unit_id"`
	StudentID id.StudentID   `json:"student_id"`
	StartDate time.Time      `json:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty"`
}

func (o *Occupancy) IsActive() bool {
	return o.EndDate == nil
}

// End closes the stay. Ending twice is a conflict.
func (o *Occupancy) End(now time.Time) error {
	if !o.IsActive() {
		return dErrors.New(dErrors.CodeConflict, "occupancy already checked out").
			WithReason(ReasonAlreadyCheckedOut)
	}
	o.EndDate = &now
	return nil
}

// Occupant is the public identity of one active occupancy slot.
type Occupant struct {
	ID            id.OccupantID  `json:"id"`
	PublicID      string         `json:"public_id"`
	OccupancyID   id.OccupancyID `json:"occupancy_id"`
	UnitID        id.UnitID      `json:"unit_id"`
	StudentID     id.StudentID   `json:"student_id"`
	CityCode      int            `json:"city_code"`
	CorridorCode  int            `json:"corridor_code"`
	HostelCode    int            `json:"hostel_code"`
	RoomNumber    int            `json:"room_number"`
	OccupantIndex int            `json:"occupant_index"`
	Active        bool           `json:"active"`
}

// Placement is what the allocator reads about a unit: its owner, capacity
// and the location codes that prefix occupant ids.
type Placement struct {
	UnitID     id.UnitID
	CorridorID id.CorridorID
	LandlordID id.LandlordID
	Capacity   int
	Location   codec.Location
}

// MaxOccupants caps capacity at the single-digit index space.
func (p *Placement) MaxOccupants() int {
	return min(p.Capacity, codec.MaxOccupantIndex)
}

// FreeIndex returns the smallest index in [1, limit] not held by taken.
func FreeIndex(limit int, taken []*Occupant) (int, bool) {
	used := make(map[int]bool, len(taken))
	for _, o := range taken {
		used[o.OccupantIndex] = true
	}
	for i := 1; i <= limit; i++ {
		if !used[i] {
			return i, true
		}
	}
	return 0, false
}

// NewOccupant builds the occupant for slot index at p. The public id is
// encoded from the placement codes.
func NewOccupant(occupantID id.OccupantID, occ *Occupancy, p *Placement, index int) (*Occupant, error) {
	publicID, err := codec.Encode(codec.Components{Location: p.Location, OccupantIndex: index})
	if err != nil {
		return nil, err
	}
	return &Occupant{
		ID:            occupantID,
		PublicID:      publicID,
		OccupancyID:   occ.ID,
		UnitID:        occ.UnitID,
		StudentID:     occ.StudentID,
		CityCode:      p.Location.CityCode,
		CorridorCode:  p.Location.CorridorCode,
		HostelCode:    p.Location.HostelCode,
		RoomNumber:    p.Location.RoomNumber,
		OccupantIndex: index,
		Active:        true,
	}, nil
}

// CheckInResult is returned to the landlord after a successful check-in.
type CheckInResult struct {
	Occupancy        *Occupancy `json:"occupancy"`
	PublicOccupantID string     `json:"public_occupant_id"`
}
