//go:build integration

package service_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	cmodels "lodgeguard/internal/complaint/models"
	directoryservice "lodgeguard/internal/directory/service"
	directorystore "lodgeguard/internal/directory/store"
	gmodels "lodgeguard/internal/governance/models"
	governanceservice "lodgeguard/internal/governance/service"
	governancestore "lodgeguard/internal/governance/store"
	"lodgeguard/internal/occupancy/codec"
	"lodgeguard/internal/occupancy/models"
	"lodgeguard/internal/occupancy/service"
	"lodgeguard/internal/occupancy/store"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/testutil/containers"
)

// emptyComplaints stands in for the complaint ledger; check-in never reads it.
type emptyComplaints struct{}

func (emptyComplaints) ListByUnit(context.Context, id.UnitID) ([]*cmodels.Complaint, error) {
	return nil, nil
}

type PostgresCheckInSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	directory  *directoryservice.Service
	governance *governanceservice.Service
	service    *service.Service
	landlordID id.LandlordID
	corridorID id.CorridorID
}

func TestPostgresCheckInSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCheckInSuite))
}

func (s *PostgresCheckInSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	db := s.postgres.DB

	dirStore := directorystore.NewPostgres(db)
	govStore := governancestore.NewPostgres(db)
	occStore := store.NewPostgres(db)

	s.directory = directoryservice.New(dirStore)
	s.governance = governanceservice.New(govStore, governanceservice.NewPostgresTx(db, govStore), emptyComplaints{}, dirStore)
	s.service = service.New(occStore, service.NewPostgresTx(db, occStore), s.governance, dirStore)
}

func (s *PostgresCheckInSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "corridors", "landlords", "students"))

	c, err := s.directory.CreateCorridor(ctx, "Harbour", 23, 4)
	s.Require().NoError(err)
	s.corridorID = c.ID

	s.landlordID = id.LandlordID(uuid.New())
	_, err = s.directory.RegisterLandlord(ctx, s.landlordID)
	s.Require().NoError(err)
}

func (s *PostgresCheckInSuite) newStudent() id.StudentID {
	studentID := id.StudentID(uuid.New())
	_, err := s.directory.RegisterStudent(context.Background(), studentID, s.corridorID)
	s.Require().NoError(err)
	return studentID
}

func (s *PostgresCheckInSuite) newUnit(capacity int) *gmodels.Unit {
	unit, err := s.governance.CreateUnit(context.Background(), governanceservice.CreateUnitRequest{
		LandlordID: s.landlordID,
		CorridorID: s.corridorID,
		Capacity:   capacity,
		HostelCode: 5,
		RoomNumber: 210,
	})
	s.Require().NoError(err)
	return unit
}

func (s *PostgresCheckInSuite) TestCheckInEncodesLocation() {
	ctx := context.Background()
	unit := s.newUnit(2)

	result, err := s.service.CheckIn(ctx, s.landlordID, unit.ID, s.newStudent())
	s.Require().NoError(err)

	decoded, err := codec.Decode(result.PublicOccupantID)
	s.Require().NoError(err)
	s.Equal(4, decoded.CityCode)
	s.Equal(23, decoded.CorridorCode)
	s.Equal(1, decoded.OccupantIndex)

	occupant, err := s.service.FindActiveOccupant(ctx, result.PublicOccupantID)
	s.Require().NoError(err)
	s.Equal(unit.ID, occupant.UnitID)
}

func (s *PostgresCheckInSuite) TestConcurrentCheckInsNeverExceedCapacity() {
	ctx := context.Background()
	unit := s.newUnit(2)

	students := make([]id.StudentID, 10)
	for i := range students {
		students[i] = s.newStudent()
	}

	var admitted, rejected atomic.Int32
	var g errgroup.Group
	for _, studentID := range students {
		g.Go(func() error {
			_, err := s.service.CheckIn(ctx, s.landlordID, unit.ID, studentID)
			switch {
			case err == nil:
				admitted.Add(1)
			case dErrors.HasReason(err, models.ReasonCapacityReached):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(2), admitted.Load())
	s.Equal(int32(8), rejected.Load())

	count, err := s.service.CountActiveByUnit(ctx, unit.ID)
	s.Require().NoError(err)
	s.Equal(2, count)

	logs, err := s.governance.ListAuditLogs(ctx, unit.ID)
	s.Require().NoError(err)
	s.NotEmpty(logs)
	s.Equal(gmodels.TriggerCapacityViolation, logs[0].TriggerType)
}

func (s *PostgresCheckInSuite) TestSecondActiveOccupancyRejected() {
	ctx := context.Background()
	studentID := s.newStudent()
	first := s.newUnit(3)

	_, err := s.service.CheckIn(ctx, s.landlordID, first.ID, studentID)
	s.Require().NoError(err)

	second, err := s.governance.CreateUnit(ctx, governanceservice.CreateUnitRequest{
		LandlordID: s.landlordID,
		CorridorID: s.corridorID,
		Capacity:   3,
		HostelCode: 5,
		RoomNumber: 211,
	})
	s.Require().NoError(err)

	_, err = s.service.CheckIn(ctx, s.landlordID, second.ID, studentID)
	s.True(dErrors.HasReason(err, models.ReasonStudentAlreadyActive))
}

func (s *PostgresCheckInSuite) TestCheckOutFreesTheSlot() {
	ctx := context.Background()
	unit := s.newUnit(1)

	result, err := s.service.CheckIn(ctx, s.landlordID, unit.ID, s.newStudent())
	s.Require().NoError(err)

	_, err = s.service.CheckOut(ctx, s.landlordID, result.Occupancy.ID)
	s.Require().NoError(err)

	_, err = s.service.CheckOut(ctx, s.landlordID, result.Occupancy.ID)
	s.True(dErrors.HasReason(err, models.ReasonAlreadyCheckedOut))

	again, err := s.service.CheckIn(ctx, s.landlordID, unit.ID, s.newStudent())
	s.Require().NoError(err)
	s.Equal(result.PublicOccupantID, again.PublicOccupantID)
}
