package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dmodels "lodgeguard/internal/directory/models"
	directorystore "lodgeguard/internal/directory/store"
	gmodels "lodgeguard/internal/governance/models"
	governancestore "lodgeguard/internal/governance/store"
	"lodgeguard/internal/occupancy/models"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	ctx       context.Context
	store     *InMemoryStore
	placement *models.Placement
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	now := time.Now()

	dir := directorystore.NewInMemory()
	corridor, err := dmodels.NewCorridor(id.CorridorID(uuid.New()), "Ridge", 45, 6, now)
	s.Require().NoError(err)
	s.Require().NoError(dir.CreateCorridor(s.ctx, corridor))

	gov := governancestore.NewInMemory()
	unit, err := gmodels.NewUnit(id.UnitID(uuid.New()), corridor.ID, id.LandlordID(uuid.New()), 3, 7, 118, now)
	s.Require().NoError(err)
	s.Require().NoError(gov.CreateUnit(s.ctx, unit, gmodels.NewChecklists(unit.ID)))

	s.store = NewInMemory(NewStorePlacements(gov, dir))
	s.placement, err = s.store.FindPlacement(s.ctx, unit.ID)
	s.Require().NoError(err)
}

func (s *InMemoryStoreSuite) occupy(studentID id.StudentID, index int) (*models.Occupancy, *models.Occupant) {
	occ := &models.Occupancy{
		ID:        id.OccupancyID(uuid.New()),
		UnitID:    s.placement.UnitID,
		StudentID: studentID,
		StartDate: time.Now(),
	}
	occupant, err := models.NewOccupant(id.OccupantID(uuid.New()), occ, s.placement, index)
	s.Require().NoError(err)
	return occ, occupant
}

func (s *InMemoryStoreSuite) TestPlacementJoinsUnitAndCorridor() {
	s.Equal(3, s.placement.Capacity)
	s.Equal(6, s.placement.Location.CityCode)
	s.Equal(45, s.placement.Location.CorridorCode)
	s.Equal(7, s.placement.Location.HostelCode)
	s.Equal(118, s.placement.Location.RoomNumber)

	_, err := s.store.FindPlacement(s.ctx, id.UnitID(uuid.New()))
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestCreateEnforcesUniqueness() {
	studentID := id.StudentID(uuid.New())
	occ, occupant := s.occupy(studentID, 1)
	s.Require().NoError(s.store.Create(s.ctx, occ, occupant))

	s.Run("same student twice", func() {
		occ, occupant := s.occupy(studentID, 2)
		s.ErrorIs(s.store.Create(s.ctx, occ, occupant), ErrStudentActive)
	})

	s.Run("same slot twice", func() {
		occ, occupant := s.occupy(id.StudentID(uuid.New()), 1)
		s.ErrorIs(s.store.Create(s.ctx, occ, occupant), sentinel.ErrConflict)
	})

	s.Run("next slot is free", func() {
		occ, occupant := s.occupy(id.StudentID(uuid.New()), 2)
		s.Require().NoError(s.store.Create(s.ctx, occ, occupant))
	})

	n, err := s.store.CountActiveByUnit(s.ctx, s.placement.UnitID)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *InMemoryStoreSuite) TestEndRetiresOccupant() {
	studentID := id.StudentID(uuid.New())
	occ, occupant := s.occupy(studentID, 1)
	s.Require().NoError(s.store.Create(s.ctx, occ, occupant))

	found, err := s.store.FindActiveOccupant(s.ctx, occupant.PublicID)
	s.Require().NoError(err)
	s.Equal(studentID, found.StudentID)

	s.Require().NoError(occ.End(time.Now()))
	s.Require().NoError(s.store.End(s.ctx, occ))

	_, err = s.store.FindActiveOccupant(s.ctx, occupant.PublicID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindActiveByStudent(s.ctx, studentID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	active, err := s.store.ListActiveOccupants(s.ctx, s.placement.UnitID, s.placement.Location.RoomNumber)
	s.Require().NoError(err)
	s.Empty(active)

	// the retired public id can be handed out again
	again, reused := s.occupy(studentID, 1)
	s.Require().NoError(s.store.Create(s.ctx, again, reused))
	s.Equal(occupant.PublicID, reused.PublicID)

	stored, err := s.store.FindOccupancy(s.ctx, occ.ID)
	s.Require().NoError(err)
	s.NotNil(stored.EndDate)
}
