// Package codec encodes the 12 digit public occupant identifier:
//
//	city(2) corridor(3) hostel(3) room(3) index(1)
//
// The identifier is used for complaint attribution without exposing internal
// row ids.
package codec

import (
	"fmt"
	"strconv"

	dErrors "lodgeguard/pkg/domain-errors"
)

// Length is the fixed width of a public occupant id.
const Length = 12

// MaxOccupantIndex is the largest index a single digit can hold. Allocators
// use [1, MaxOccupantIndex].
const MaxOccupantIndex = 9

type field struct {
	name  string
	width int
	max   int
}

var (
	cityField     = field{"city code", 2, 99}
	corridorField = field{"corridor code", 3, 999}
	hostelField   = field{"hostel code", 3, 999}
	roomField     = field{"room number", 3, 999}
	indexField    = field{"occupant index", 1, MaxOccupantIndex}
)

// Location is the slot-independent part of an occupant id.
type Location struct {
	CityCode     int
	CorridorCode int
	HostelCode   int
	RoomNumber   int
}

// Validate checks every code fits its digit width.
func (l Location) Validate() error {
	for _, c := range []struct {
		f field
		v int
	}{
		{cityField, l.CityCode},
		{corridorField, l.CorridorCode},
		{hostelField, l.HostelCode},
		{roomField, l.RoomNumber},
	} {
		if err := c.f.check(c.v); err != nil {
			return err
		}
	}
	return nil
}

// Components is a fully specified occupant id.
type Components struct {
	Location
	OccupantIndex int
}

func (f field) check(v int) error {
	if v < 0 || v > f.max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be between 0 and %d", f.name, f.max))
	}
	return nil
}

// Encode zero-pads and concatenates the components.
func Encode(c Components) (string, error) {
	if err := c.Location.Validate(); err != nil {
		return "", err
	}
	if err := indexField.check(c.OccupantIndex); err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d%03d%03d%03d%01d",
		c.CityCode, c.CorridorCode, c.HostelCode, c.RoomNumber, c.OccupantIndex), nil
}

// Decode splits a public id back into its components.
func Decode(publicID string) (Components, error) {
	if !IsValid(publicID) {
		return Components{}, dErrors.New(dErrors.CodeValidation, "occupant id must be exactly 12 digits")
	}
	num := func(from, to int) int {
		v, _ := strconv.Atoi(publicID[from:to])
		return v
	}
	return Components{
		Location: Location{
			CityCode:     num(0, 2),
			CorridorCode: num(2, 5),
			HostelCode:   num(5, 8),
			RoomNumber:   num(8, 11),
		},
		OccupantIndex: num(11, 12),
	}, nil
}

// IsValid reports whether s matches ^\d{12}$.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
