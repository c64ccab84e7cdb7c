package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lodgeguard/internal/occupancy/models"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/httputil"
	"lodgeguard/pkg/platform/middleware/auth"
	"lodgeguard/pkg/requestcontext"
)

type Service interface {
	CheckIn(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID, studentID id.StudentID) (*models.CheckInResult, error)
	CheckOut(ctx context.Context, landlordID id.LandlordID, occupancyID id.OccupancyID) (*models.Occupancy, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(id.RoleLandlord))
		r.Post("/occupancy/check-in", h.HandleCheckIn)
		r.Patch("/occupancy/{id}/check-out", h.HandleCheckOut)
	})
}

// CheckInRequest is the body of POST /occupancy/check-in.
type CheckInRequest struct {
	UnitID    string `json:"unit_id"`
	StudentID string `json:"student_id"`

	unitID    id.UnitID
	studentID id.StudentID
}

func (r *CheckInRequest) Validate() error {
	unitID, err := id.ParseUnitID(strings.TrimSpace(r.UnitID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "unit_id and student_id are required")
	}
	studentID, err := id.ParseStudentID(strings.TrimSpace(r.StudentID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "unit_id and student_id are required")
	}
	r.unitID, r.studentID = unitID, studentID
	return nil
}

type checkInResponse struct {
	OccupancyID      id.OccupancyID    `json:"occupancy_id"`
	PublicOccupantID string            `json:"public_occupant_id"`
	Occupancy        *models.Occupancy `json:"occupancy"`
}

func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	landlordID, _ := requestcontext.Actor(ctx).LandlordID()

	req, ok := httputil.DecodeAndPrepare[CheckInRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.CheckIn(ctx, landlordID, req.unitID, req.studentID)
	if err != nil {
		h.logger.WarnContext(ctx, "check-in failed",
			"request_id", requestID,
			"unit_id", req.unitID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, checkInResponse{
		OccupancyID:      res.Occupancy.ID,
		PublicOccupantID: res.PublicOccupantID,
		Occupancy:        res.Occupancy,
	})
}

func (h *Handler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	landlordID, _ := requestcontext.Actor(ctx).LandlordID()

	occupancyID, err := id.ParseOccupancyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	occ, err := h.service.CheckOut(ctx, landlordID, occupancyID)
	if err != nil {
		h.logger.WarnContext(ctx, "check-out failed",
			"request_id", requestID,
			"occupancy_id", occupancyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, occ)
}
