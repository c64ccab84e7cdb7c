package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lodgeguard/internal/directory/models"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/httputil"
	"lodgeguard/pkg/platform/middleware/auth"
	"lodgeguard/pkg/requestcontext"
)

type Service interface {
	CreateCorridor(ctx context.Context, name string, code, cityCode int) (*models.Corridor, error)
	GetCorridor(ctx context.Context, corridorID id.CorridorID) (*models.Corridor, error)
	RegisterStudent(ctx context.Context, studentID id.StudentID, corridorID id.CorridorID) (*models.Student, error)
	RegisterLandlord(ctx context.Context, landlordID id.LandlordID) (*models.Landlord, error)
}

// Handler registers corridors and the caller's own student or landlord
// profile. The token subject becomes the profile id.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireRole(id.RoleAdmin)).Post("/admin/corridors", h.HandleCreateCorridor)
	r.Get("/corridors/{id}", h.HandleGetCorridor)
	r.With(auth.RequireRole(id.RoleStudent)).Post("/students/me", h.HandleRegisterStudent)
	r.With(auth.RequireRole(id.RoleLandlord)).Post("/landlords/me", h.HandleRegisterLandlord)
}

type CorridorRequest struct {
	Name     string `json:"name"`
	Code     int    `json:"code"`
	CityCode int    `json:"city_code"`
}

func (r *CorridorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

type StudentRequest struct {
	CorridorID string `json:"corridor_id"`

	corridorID id.CorridorID
}

func (r *StudentRequest) Validate() error {
	corridorID, err := id.ParseCorridorID(strings.TrimSpace(r.CorridorID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "corridor_id is required")
	}
	r.corridorID = corridorID
	return nil
}

func (h *Handler) HandleCreateCorridor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CorridorRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.CreateCorridor(ctx, req.Name, req.Code, req.CityCode)
	if err != nil {
		h.fail(ctx, w, "create corridor failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) HandleGetCorridor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corridorID, err := id.ParseCorridorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.GetCorridor(ctx, corridorID)
	if err != nil {
		h.fail(ctx, w, "get corridor failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID, _ := requestcontext.Actor(ctx).StudentID()
	req, ok := httputil.DecodeAndPrepare[StudentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	st, err := h.service.RegisterStudent(ctx, studentID, req.corridorID)
	if err != nil {
		h.fail(ctx, w, "register student failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) HandleRegisterLandlord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	landlordID, _ := requestcontext.Actor(ctx).LandlordID()
	l, err := h.service.RegisterLandlord(ctx, landlordID)
	if err != nil {
		h.fail(ctx, w, "register landlord failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if _, ok := dErrors.As(err); !ok || dErrors.HasCode(err, dErrors.CodeInternal) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
