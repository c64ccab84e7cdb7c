package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lodgeguard/internal/complaint/models"
	"lodgeguard/internal/complaint/service"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/httputil"
	"lodgeguard/pkg/platform/middleware/auth"
	"lodgeguard/pkg/requestcontext"
)

type Service interface {
	RecordComplaint(ctx context.Context, req service.RecordRequest) (*service.RecordResult, error)
	ResolveComplaint(ctx context.Context, actor id.Actor, complaintID id.ComplaintID) (*service.RecordResult, error)
	ListComplaints(ctx context.Context, actor id.Actor, unitID id.UnitID, filter models.Filter) (*service.UnitComplaints, error)
	ListStudentComplaints(ctx context.Context, studentID id.StudentID) ([]models.View, error)
}

type Handler struct {
	service     Service
	logger      *slog.Logger
	submitLimit func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithSubmitLimit wraps POST /complaints, normally with the per-student
// rate limiter.
func WithSubmitLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.submitLimit = mw
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	student := r.With(auth.RequireRole(id.RoleStudent))
	if h.submitLimit != nil {
		student.With(h.submitLimit).Post("/complaints", h.HandleRecord)
	} else {
		student.Post("/complaints", h.HandleRecord)
	}
	student.Get("/complaints", h.HandleListMine)

	r.With(auth.RequireRole(id.RoleLandlord, id.RoleAdmin)).
		Patch("/complaints/{id}/resolve", h.HandleResolve)
	r.Get("/units/{id}/complaints", h.HandleListByUnit)
}

func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	studentID, ok := requestcontext.Actor(ctx).StudentID()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "student profile required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.studentID != nil && *req.studentID != studentID {
		h.logger.WarnContext(ctx, "complaint filed on behalf of another student",
			"request_id", requestID,
			"student_id", studentID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "complaints can only be filed as yourself"))
		return
	}

	result, err := h.service.RecordComplaint(ctx, req.ToService(studentID))
	if err != nil {
		h.fail(ctx, w, "record complaint failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ResolveComplaint(ctx, requestcontext.Actor(ctx), complaintID)
	if err != nil {
		h.fail(ctx, w, "resolve complaint failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleListByUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unitID, err := id.ParseUnitID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	filter, err := parseFilter(q.Get("status"), q.Get("incident_type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.ListComplaints(ctx, requestcontext.Actor(ctx), unitID, filter)
	if err != nil {
		h.fail(ctx, w, "list complaints failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID, _ := requestcontext.Actor(ctx).StudentID()
	views, err := h.service.ListStudentComplaints(ctx, studentID)
	if err != nil {
		h.fail(ctx, w, "list student complaints failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"complaints": views})
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
