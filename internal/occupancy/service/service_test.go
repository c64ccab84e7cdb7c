package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	dmodels "lodgeguard/internal/directory/models"
	gmodels "lodgeguard/internal/governance/models"
	"lodgeguard/internal/occupancy/codec"
	"lodgeguard/internal/occupancy/models"
	"lodgeguard/internal/occupancy/service/mocks"
	"lodgeguard/internal/occupancy/store"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/keylock"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/requestcontext"
)

type placements struct {
	mu     sync.Mutex
	byUnit map[id.UnitID]*models.Placement
}

func (p *placements) FindPlacement(_ context.Context, unitID id.UnitID) (*models.Placement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.byUnit[unitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *pl
	return &cp, nil
}

// flakyStore fails the first conflicts Create calls with an occupant id
// conflict.
type flakyStore struct {
	*store.InMemoryStore
	conflicts atomic.Int32
}

func (f *flakyStore) Create(ctx context.Context, occ *models.Occupancy, occupant *models.Occupant) error {
	if f.conflicts.Add(-1) >= 0 {
		return sentinel.ErrConflict
	}
	return f.InMemoryStore.Create(ctx, occ, occupant)
}

type CheckInSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	governance *mocks.MockGovernance
	students   *mocks.MockStudents
	placements *placements
	store      *store.InMemoryStore
	service    *Service
	ctx        context.Context
	landlordID id.LandlordID
}

func TestCheckInSuite(t *testing.T) {
	suite.Run(t, new(CheckInSuite))
}

func (s *CheckInSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.governance = mocks.NewMockGovernance(s.ctrl)
	s.students = mocks.NewMockStudents(s.ctrl)
	s.students.EXPECT().FindStudent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, studentID id.StudentID) (*dmodels.Student, error) {
			return &dmodels.Student{ID: studentID}, nil
		}).AnyTimes()
	s.placements = &placements{byUnit: map[id.UnitID]*models.Placement{}}
	s.store = store.NewInMemory(s.placements)
	s.service = s.newService(s.store)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	s.landlordID = id.LandlordID(uuid.New())
}

func (s *CheckInSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CheckInSuite) newService(st Store) *Service {
	return New(st, NewMemoryTx(st, keylock.New()), s.governance, s.students)
}

var roomSeq atomic.Int32

func (s *CheckInSuite) seedUnit(capacity int) id.UnitID {
	unitID := id.UnitID(uuid.New())
	s.placements.mu.Lock()
	defer s.placements.mu.Unlock()
	s.placements.byUnit[unitID] = &models.Placement{
		UnitID:     unitID,
		LandlordID: s.landlordID,
		Capacity:   capacity,
		Location:   codec.Location{CityCode: 1, CorridorCode: 23, HostelCode: 45, RoomNumber: 6 + int(roomSeq.Add(1))*10},
	}
	return unitID
}

func (s *CheckInSuite) index(publicID string) int {
	c, err := codec.Decode(publicID)
	s.Require().NoError(err)
	return c.OccupantIndex
}

func newStudent() id.StudentID { return id.StudentID(uuid.New()) }

func (s *CheckInSuite) TestAssignsLowestFreeIndex() {
	unitID := s.seedUnit(3)

	first, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().NoError(err)
	s.Equal(1, s.index(first.PublicOccupantID))
	s.Equal("0102304", first.PublicOccupantID[:7])

	second, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().NoError(err)
	s.Equal(2, s.index(second.PublicOccupantID))

	_, err = s.service.CheckOut(s.ctx, s.landlordID, first.Occupancy.ID)
	s.Require().NoError(err)

	third, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().NoError(err)
	s.Equal(1, s.index(third.PublicOccupantID), "a freed index is reused")
}

func (s *CheckInSuite) TestStudentAlreadyActive() {
	unitA, unitB := s.seedUnit(2), s.seedUnit(2)
	student := newStudent()

	_, err := s.service.CheckIn(s.ctx, s.landlordID, unitA, student)
	s.Require().NoError(err)

	_, err = s.service.CheckIn(s.ctx, s.landlordID, unitB, student)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.True(dErrors.HasReason(err, models.ReasonStudentAlreadyActive))
}

func (s *CheckInSuite) TestCapacityReachedFlagsUnit() {
	unitID := s.seedUnit(1)
	_, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().NoError(err)

	s.governance.EXPECT().FlagCapacityViolation(gomock.Any(), unitID).
		Return(&gmodels.AuditLog{ID: id.AuditLogID(uuid.New()), UnitID: unitID}, nil)

	_, err = s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, models.ReasonCapacityReached))
}

func (s *CheckInSuite) TestInvalidCapacity() {
	unitID := s.seedUnit(0)

	_, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, models.ReasonInvalidCapacity))
}

func (s *CheckInSuite) TestOtherLandlordForbidden() {
	unitID := s.seedUnit(2)

	_, err := s.service.CheckIn(s.ctx, id.LandlordID(uuid.New()), unitID, newStudent())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *CheckInSuite) TestUnknownUnit() {
	_, err := s.service.CheckIn(s.ctx, s.landlordID, id.UnitID(uuid.New()), newStudent())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CheckInSuite) TestRetriesOccupantIDConflict() {
	s.Run("succeeds on the last attempt", func() {
		flaky := &flakyStore{InMemoryStore: store.NewInMemory(s.placements)}
		flaky.conflicts.Store(MaxCheckInAttempts - 1)
		svc := s.newService(flaky)

		res, err := svc.CheckIn(s.ctx, s.landlordID, s.seedUnit(2), newStudent())
		s.Require().NoError(err)
		s.NotEmpty(res.PublicOccupantID)
	})

	s.Run("gives up after the attempt limit", func() {
		flaky := &flakyStore{InMemoryStore: store.NewInMemory(s.placements)}
		flaky.conflicts.Store(MaxCheckInAttempts)
		svc := s.newService(flaky)

		_, err := svc.CheckIn(s.ctx, s.landlordID, s.seedUnit(2), newStudent())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.True(dErrors.HasReason(err, models.ReasonCheckInConflict))
	})
}

// Ten landlord requests race for a two-bed unit.
func (s *CheckInSuite) TestConcurrentCheckInsRespectCapacity() {
	unitID := s.seedUnit(2)
	s.governance.EXPECT().FlagCapacityViolation(gomock.Any(), unitID).
		Return(&gmodels.AuditLog{ID: id.AuditLogID(uuid.New()), UnitID: unitID}, nil).Times(8)

	var (
		ok, full atomic.Int32
		mu       sync.Mutex
		ids      = map[string]bool{}
	)
	var g errgroup.Group
	for range 10 {
		g.Go(func() error {
			res, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
			switch {
			case err == nil:
				ok.Add(1)
				mu.Lock()
				ids[res.PublicOccupantID] = true
				mu.Unlock()
			case dErrors.HasReason(err, models.ReasonCapacityReached):
				full.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(2), ok.Load())
	s.Equal(int32(8), full.Load())
	s.Len(ids, 2, "public ids are distinct")
	count, err := s.store.CountActiveByUnit(s.ctx, unitID)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *CheckInSuite) TestCheckOut() {
	unitID := s.seedUnit(2)
	res, err := s.service.CheckIn(s.ctx, s.landlordID, unitID, newStudent())
	s.Require().NoError(err)

	s.Run("other landlord is forbidden", func() {
		_, err := s.service.CheckOut(s.ctx, id.LandlordID(uuid.New()), res.Occupancy.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("ends the stay and retires the occupant", func() {
		occ, err := s.service.CheckOut(s.ctx, s.landlordID, res.Occupancy.ID)
		s.Require().NoError(err)
		s.NotNil(occ.EndDate)

		_, err = s.service.FindActiveOccupant(s.ctx, res.PublicOccupantID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("twice is a conflict", func() {
		_, err := s.service.CheckOut(s.ctx, s.landlordID, res.Occupancy.ID)
		s.Require().Error(err)
		s.True(dErrors.HasReason(err, models.ReasonAlreadyCheckedOut))
	})

	s.Run("unknown occupancy", func() {
		_, err := s.service.CheckOut(s.ctx, s.landlordID, id.OccupancyID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
