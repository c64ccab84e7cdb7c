package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lodgeguard/internal/directory/models"
	"lodgeguard/internal/directory/service"
	"lodgeguard/internal/directory/store"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	actor  id.Actor
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.actor = testutil.Admin()
	s.router = chi.NewRouter()
	s.router.Use(testutil.ActorMiddleware(&s.actor))
	New(service.New(store.NewInMemory()), logger).Register(s.router)
}

func (s *HandlerSuite) createCorridor() *models.Corridor {
	s.actor = testutil.Admin()
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/corridors",
		map[string]any{"name": "North", "code": 12, "city_code": 3}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.Corridor](s.T(), rr)
}

func (s *HandlerSuite) TestCreateCorridor() {
	c := s.createCorridor()
	s.Equal("North", c.Name)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/corridors/"+c.ID.String()))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "code", float64(12))

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/corridors",
		map[string]any{"name": "Wide", "code": 1000, "city_code": 3}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/corridors",
		map[string]any{"name": "North Annex", "code": 12, "city_code": 3}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")

	s.actor = testutil.Landlord(id.LandlordID(uuid.New()))
	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/admin/corridors",
		map[string]any{"name": "North", "code": 1, "city_code": 1}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *HandlerSuite) TestRegisterStudent() {
	c := s.createCorridor()
	studentID := id.StudentID(uuid.New())
	s.actor = testutil.Student(studentID)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/students/me",
		map[string]string{"corridor_id": c.ID.String()}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "id", studentID.String())

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/students/me",
		map[string]string{"corridor_id": c.ID.String()}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/students/me",
		map[string]string{"corridor_id": "nope"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *HandlerSuite) TestRegisterLandlord() {
	s.actor = testutil.Landlord(id.LandlordID(uuid.New()))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/landlords/me"))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/landlords/me"))
	testutil.AssertStatus(s.T(), rr, http.StatusConflict)
}
