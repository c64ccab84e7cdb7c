package store

import (
	"context"
	"errors"
	"sync"

	"lodgeguard/internal/occupancy/models"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
)

// ErrStudentActive reports a second active occupancy for one student.
var ErrStudentActive = errors.New("student already has an active occupancy")

// PlacementSource resolves the unit and corridor data an allocation needs.
type PlacementSource interface {
	FindPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error)
}

// InMemoryStore keeps occupancies and occupants in maps. Create enforces the
// same uniqueness rules as the Postgres partial indexes.
type InMemoryStore struct {
	mu          sync.RWMutex
	placements  PlacementSource
	occupancies map[id.OccupancyID]*models.Occupancy
	occupants   map[id.OccupantID]*models.Occupant
}

func NewInMemory(placements PlacementSource) *InMemoryStore {
	return &InMemoryStore{
		placements:  placements,
		occupancies: make(map[id.OccupancyID]*models.Occupancy),
		occupants:   make(map[id.OccupantID]*models.Occupant),
	}
}

func (s *InMemoryStore) FindPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error) {
	return s.placements.FindPlacement(ctx, unitID)
}

// LockPlacement is FindPlacement here; the unit section is held by MemoryTx.
func (s *InMemoryStore) LockPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error) {
	return s.placements.FindPlacement(ctx, unitID)
}

func (s *InMemoryStore) FindActiveByStudent(_ context.Context, studentID id.StudentID) (*models.Occupancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.occupancies {
		if o.StudentID == studentID && o.IsActive() {
			return copyOccupancy(o), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListActiveOccupants(_ context.Context, unitID id.UnitID, roomNumber int) ([]*models.Occupant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Occupant{}
	for _, o := range s.occupants {
		if o.Active && o.UnitID == unitID && o.RoomNumber == roomNumber {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Create stores an occupancy with its occupant atomically.
func (s *InMemoryStore) Create(_ context.Context, occ *models.Occupancy, occupant *models.Occupant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.occupancies {
		if o.StudentID == occ.StudentID && o.IsActive() {
			return ErrStudentActive
		}
	}
	for _, o := range s.occupants {
		if !o.Active {
			continue
		}
		if o.PublicID == occupant.PublicID {
			return sentinel.ErrConflict
		}
		if o.UnitID == occupant.UnitID && o.RoomNumber == occupant.RoomNumber && o.OccupantIndex == occupant.OccupantIndex {
			return sentinel.ErrConflict
		}
	}
	s.occupancies[occ.ID] = copyOccupancy(occ)
	cp := *occupant
	s.occupants[occupant.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindOccupancy(_ context.Context, occupancyID id.OccupancyID) (*models.Occupancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.occupancies[occupancyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyOccupancy(o), nil
}

// End writes the end date and deactivates the occupancy's occupants.
func (s *InMemoryStore) End(_ context.Context, occ *models.Occupancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.occupancies[occ.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.occupancies[occ.ID] = copyOccupancy(occ)
	for _, o := range s.occupants {
		if o.OccupancyID == occ.ID {
			o.Active = false
		}
	}
	return nil
}

func (s *InMemoryStore) CountActiveByUnit(_ context.Context, unitID id.UnitID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.occupancies {
		if o.UnitID == unitID && o.IsActive() {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) FindActiveOccupant(_ context.Context, publicID string) (*models.Occupant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.occupants {
		if o.Active && o.PublicID == publicID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func copyOccupancy(o *models.Occupancy) *models.Occupancy {
	cp := *o
	if o.EndDate != nil {
		t := *o.EndDate
		cp.EndDate = &t
	}
	return &cp
}
