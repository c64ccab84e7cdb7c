package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	dmodels "lodgeguard/internal/directory/models"
	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/governance/service"
	"lodgeguard/internal/governance/service/mocks"
	"lodgeguard/internal/governance/store"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/keylock"
	"lodgeguard/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	directory  *mocks.MockDirectory
	complaints *mocks.MockComplaintHistory
	store      *store.InMemoryStore
	router     chi.Router
	actor      id.Actor
	corridorID id.CorridorID
	landlordID id.LandlordID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.directory = mocks.NewMockDirectory(s.ctrl)
	s.complaints = mocks.NewMockComplaintHistory(s.ctrl)
	s.store = store.NewInMemory()
	svc := service.New(s.store, service.NewMemoryTx(s.store, keylock.New()), s.complaints, s.directory)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.corridorID = id.CorridorID(uuid.New())
	s.landlordID = id.LandlordID(uuid.New())
	s.actor = testutil.Landlord(s.landlordID)

	r := chi.NewRouter()
	r.Use(testutil.ActorMiddleware(&s.actor))
	New(svc, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), method, path, body))
}

func (s *HandlerSuite) seedUnit(status models.UnitStatus, trustScore int) *models.Unit {
	u, err := models.NewUnit(id.UnitID(uuid.New()), s.corridorID, s.landlordID, 2, 12, 104, time.Now())
	s.Require().NoError(err)
	u.Status = status
	u.TrustScore = trustScore
	if status == models.UnitStatusApproved {
		u.StructuralApproved = true
		u.OperationalBaselineApproved = true
	}
	s.Require().NoError(s.store.CreateUnit(context.Background(), u, models.NewChecklists(u.ID)))
	return u
}

func (s *HandlerSuite) TestCreateUnit() {
	s.Run("landlord creates a draft unit", func() {
		s.directory.EXPECT().FindCorridor(gomock.Any(), s.corridorID).Return(&dmodels.Corridor{ID: s.corridorID}, nil)
		s.directory.EXPECT().FindLandlord(gomock.Any(), s.landlordID).Return(&dmodels.Landlord{ID: s.landlordID}, nil)

		rr := s.do(http.MethodPost, "/units", map[string]any{
			"corridor_id": s.corridorID.String(),
			"capacity":    3,
			"hostel_code": 12,
			"room_number": 7,
		})
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal("draft", (*body)["status"])
		s.Equal(float64(75), (*body)["trust_score"])
	})

	s.Run("rejects a malformed corridor id", func() {
		rr := s.do(http.MethodPost, "/units", map[string]any{"corridor_id": "nope"})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("students cannot create units", func() {
		s.actor = testutil.Student(id.StudentID(uuid.New()))
		defer func() { s.actor = testutil.Landlord(s.landlordID) }()

		rr := s.do(http.MethodPost, "/units", map[string]any{"corridor_id": s.corridorID.String()})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *HandlerSuite) TestSubmitReportsMissingMedia() {
	u := s.seedUnit(models.UnitStatusDraft, 75)
	for _, kind := range []models.ChecklistKind{models.ChecklistStructural, models.ChecklistOperational} {
		fields := map[string]bool{}
		for _, name := range models.ItemNames(kind) {
			fields[name] = true
		}
		rr := s.do(http.MethodPut, "/units/"+u.ID.String()+"/checklists/"+string(kind), fields)
		testutil.AssertStatusOK(s.T(), rr)
	}

	rr := s.do(http.MethodPost, "/units/"+u.ID.String()+"/media", map[string]any{"type": "photo", "url": "https://cdn.example/p.jpg"})
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = s.do(http.MethodPost, "/units/"+u.ID.String()+"/submit", nil)
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.ElementsMatch([]any{"document", "walkthrough360"}, (*body)["missing_media_types"])
}

func (s *HandlerSuite) TestOperationalChecklistTakesSelfDeclaration() {
	u := s.seedUnit(models.UnitStatusDraft, 75)
	path := "/units/" + u.ID.String() + "/checklists/"

	rr := s.do(http.MethodPut, path+string(models.ChecklistOperational), map[string]any{
		models.ItemBedAvailable: true,
		"self_declaration":      "  Water available 24/7 ",
	})
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "self_declaration", "Water available 24/7")

	s.Run("rejected on the structural checklist", func() {
		rr := s.do(http.MethodPut, path+string(models.ChecklistStructural), map[string]any{"self_declaration": "solid walls"})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("must be a string", func() {
		rr := s.do(http.MethodPut, path+string(models.ChecklistOperational), map[string]any{"self_declaration": true})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestAdminRoutesRequireAdmin() {
	u := s.seedUnit(models.UnitStatusSubmitted, 75)

	rr := s.do(http.MethodPatch, "/admin/units/"+u.ID.String()+"/status", map[string]any{"status": "admin_review"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")

	s.actor = testutil.Admin()
	rr = s.do(http.MethodPatch, "/admin/units/"+u.ID.String()+"/status", map[string]any{"status": "admin_review"})
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "admin_review")
}

func (s *HandlerSuite) TestOpenAuditLogSuspends() {
	u := s.seedUnit(models.UnitStatusApproved, 80)
	s.actor = testutil.Admin()

	rr := s.do(http.MethodPost, "/admin/units/"+u.ID.String()+"/audit-logs", map[string]any{"reason": "walkthrough"})
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "trigger_type", "manual")

	stored, err := s.store.FindUnit(context.Background(), u.ID)
	s.Require().NoError(err)
	s.Equal(models.UnitStatusSuspended, stored.Status)
	s.True(stored.AuditRequired)
}

func (s *HandlerSuite) TestSampleAuditRejectsBadCount() {
	s.actor = testutil.Admin()
	for _, count := range []string{"0", "21", "abc"} {
		rr := s.do(http.MethodGet, "/admin/audit/sample/"+s.corridorID.String()+"?count="+count, nil)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	}
}

func (s *HandlerSuite) TestSampleAuditDefaultsCountWhenOmitted() {
	s.seedUnit(models.UnitStatusApproved, 90)
	s.actor = testutil.Admin()

	rr := s.do(http.MethodGet, "/admin/audit/sample/"+s.corridorID.String(), nil)
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "sampled_count", float64(1))
}

func (s *HandlerSuite) TestExplainOtherLandlordForbidden() {
	u := s.seedUnit(models.UnitStatusApproved, 80)
	s.actor = testutil.Landlord(id.LandlordID(uuid.New()))

	rr := s.do(http.MethodGet, "/units/"+u.ID.String()+"/explain", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *HandlerSuite) TestListVisibleHidesLowTrust() {
	visible := s.seedUnit(models.UnitStatusApproved, 80)
	low, err := models.NewUnit(id.UnitID(uuid.New()), s.corridorID, s.landlordID, 2, 12, 105, time.Now())
	s.Require().NoError(err)
	low.Status = models.UnitStatusDraft
	s.Require().NoError(s.store.CreateUnit(context.Background(), low, models.NewChecklists(low.ID)))

	s.actor = testutil.Student(id.StudentID(uuid.New()))
	rr := s.do(http.MethodGet, "/corridors/"+s.corridorID.String()+"/units", nil)
	testutil.AssertStatusOK(s.T(), rr)
	body := testutil.UnmarshalResponse[[]map[string]any](s.T(), rr)
	s.Require().Len(*body, 1)
	s.Equal(visible.ID.String(), (*body)[0]["id"])
}
