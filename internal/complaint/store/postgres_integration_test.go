//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lodgeguard/internal/complaint/models"
	"lodgeguard/internal/complaint/store"
	dmodels "lodgeguard/internal/directory/models"
	directorystore "lodgeguard/internal/directory/store"
	gmodels "lodgeguard/internal/governance/models"
	governancestore "lodgeguard/internal/governance/store"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *store.PostgresStore
	unitID    id.UnitID
	studentID id.StudentID
	now       time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

// SetupTest seeds the corridor, landlord, unit and student a complaint
// row references.
func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "corridors", "landlords", "students"))
	s.now = time.Now().UTC().Truncate(time.Microsecond)

	directory := directorystore.NewPostgres(s.postgres.DB)
	corridor, err := dmodels.NewCorridor(id.CorridorID(uuid.New()), "Mill", 8, 1, s.now)
	s.Require().NoError(err)
	s.Require().NoError(directory.CreateCorridor(ctx, corridor))
	landlordID := id.LandlordID(uuid.New())
	s.Require().NoError(directory.CreateLandlord(ctx, &dmodels.Landlord{ID: landlordID, CreatedAt: s.now}))
	s.studentID = id.StudentID(uuid.New())
	s.Require().NoError(directory.CreateStudent(ctx, &dmodels.Student{ID: s.studentID, CorridorID: corridor.ID, CreatedAt: s.now}))

	unit, err := gmodels.NewUnit(id.UnitID(uuid.New()), corridor.ID, landlordID, 1, 2, 14, s.now)
	s.Require().NoError(err)
	s.Require().NoError(governancestore.NewPostgres(s.postgres.DB).CreateUnit(ctx, unit, gmodels.NewChecklists(unit.ID)))
	s.unitID = unit.ID
}

func (s *PostgresStoreSuite) newComplaint(at time.Time, incident models.IncidentType, message string) *models.Complaint {
	c, err := models.NewComplaint(id.ComplaintID(uuid.New()), s.unitID, s.studentID, "", 3, incident, message, at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), c))
	return c
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	c := s.newComplaint(s.now, models.IncidentWater, "")

	found, err := s.store.Find(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.IncidentWater, found.IncidentType)
	s.True(found.IncidentFlag)
	s.Empty(found.Message)
	s.Empty(found.OccupantPublicID)
	s.True(c.SLADeadline.Equal(found.SLADeadline))
	s.Nil(found.ResolvedAt)

	err = s.store.Create(ctx, c)
	s.True(errors.Is(err, sentinel.ErrConflict))

	_, err = s.store.Find(ctx, id.ComplaintID(uuid.New()))
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestSavePersistsResolution() {
	ctx := context.Background()
	c := s.newComplaint(s.now.Add(-2*time.Hour), models.IncidentOther, "door")

	s.True(c.Resolve(s.now))
	s.Require().NoError(s.store.Save(ctx, c))

	found, err := s.store.Find(ctx, c.ID)
	s.Require().NoError(err)
	s.True(found.Resolved)
	s.Require().NotNil(found.ResolvedAt)
	s.True(s.now.Equal(*found.ResolvedAt))
	s.Equal("door", found.Message)
}

func (s *PostgresStoreSuite) TestListsNewestFirst() {
	ctx := context.Background()
	older := s.newComplaint(s.now.Add(-48*time.Hour), models.IncidentOther, "old")
	newer := s.newComplaint(s.now, models.IncidentFire, "new")

	byUnit, err := s.store.ListByUnit(ctx, s.unitID)
	s.Require().NoError(err)
	s.Require().Len(byUnit, 2)
	s.Equal(newer.ID, byUnit[0].ID)
	s.Equal(older.ID, byUnit[1].ID)

	byStudent, err := s.store.ListByStudent(ctx, s.studentID)
	s.Require().NoError(err)
	s.Len(byStudent, 2)

	none, err := s.store.ListByUnit(ctx, id.UnitID(uuid.New()))
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}
