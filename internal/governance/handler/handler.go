package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/governance/service"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/httputil"
	"lodgeguard/pkg/platform/middleware/auth"
	"lodgeguard/pkg/requestcontext"
)

// Service is the governance surface the handler drives.
type Service interface {
	CreateUnit(ctx context.Context, req service.CreateUnitRequest) (*models.Unit, error)
	GetUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error)
	GetChecklists(ctx context.Context, unitID id.UnitID) (*models.Checklists, error)
	SetChecklist(ctx context.Context, actor id.Actor, unitID id.UnitID, kind models.ChecklistKind, patch models.ChecklistPatch) (*models.Checklist, error)
	AddMedia(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID, mediaType models.MediaType, url string) (*models.Media, error)
	SubmitUnit(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID) (*models.Unit, error)
	ReviewUnit(ctx context.Context, unitID id.UnitID, patch service.ReviewPatch) (*models.Unit, error)
	SetStatus(ctx context.Context, unitID id.UnitID, status models.UnitStatus) (*models.Unit, error)
	RecalcTrustAndAudit(ctx context.Context, unitID id.UnitID) (*service.RecalcResult, error)
	OpenAuditLog(ctx context.Context, unitID id.UnitID, reason string) (*models.AuditLog, error)
	PenalizeMisrepresentation(ctx context.Context, unitID id.UnitID, reason string, points int) (*service.PenaltyResult, error)
	SampleRandomAudit(ctx context.Context, corridorID id.CorridorID, count *int, open bool) (*service.SampleResult, error)
	SetCorrectivePlan(ctx context.Context, logID id.AuditLogID, action string, deadline *time.Time) (*models.AuditLog, error)
	ResolveAuditLog(ctx context.Context, logID id.AuditLogID, req service.ResolveRequest) (*service.ResolveResult, error)
	ListAuditLogs(ctx context.Context, unitID id.UnitID) ([]*models.AuditLog, error)
	ListAuditQueue(ctx context.Context, corridorID id.CorridorID) ([]service.QueueEntry, error)
	ExplainUnit(ctx context.Context, unitID id.UnitID) (*service.Explanation, error)
	ListVisibleUnits(ctx context.Context, corridorID id.CorridorID) ([]service.Listing, error)
	ListHiddenUnits(ctx context.Context, corridorID id.CorridorID) ([]service.HiddenListing, error)
}

// Handler exposes unit governance over HTTP. Routes expect an actor in the
// request context.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the governance routes.
func (h *Handler) Register(r chi.Router) {
	landlord := r.With(auth.RequireRole(id.RoleLandlord))
	landlord.Post("/units", h.HandleCreateUnit)
	landlord.Put("/units/{id}/checklists/{kind}", h.HandleSetChecklist)
	landlord.Post("/units/{id}/media", h.HandleAddMedia)
	landlord.Post("/units/{id}/submit", h.HandleSubmitUnit)

	owners := r.With(auth.RequireRole(id.RoleLandlord, id.RoleAdmin))
	owners.Get("/units/{id}/checklists", h.HandleGetChecklists)
	owners.Get("/units/{id}/explain", h.HandleExplainUnit)
	owners.Get("/corridors/{id}/units/hidden", h.HandleListHidden)

	r.Get("/corridors/{id}/units", h.HandleListVisible)

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(id.RoleAdmin))
		r.Patch("/units/{id}/checklists/{kind}", h.HandleSetChecklist)
		r.Patch("/units/{id}/review", h.HandleReviewUnit)
		r.Patch("/units/{id}/status", h.HandleSetStatus)
		r.Post("/units/{id}/recalc", h.HandleRecalc)
		r.Post("/units/{id}/audit-logs", h.HandleOpenAuditLog)
		r.Get("/units/{id}/audit-logs", h.HandleListAuditLogs)
		r.Post("/units/{id}/penalize", h.HandlePenalize)
		r.Get("/audit/sample/{corridorId}", h.HandleSampleAudit)
		r.Get("/audit/{corridorId}", h.HandleAuditQueue)
		r.Patch("/audit-logs/{id}/corrective-plan", h.HandleCorrectivePlan)
		r.Patch("/audit-logs/{id}/resolve", h.HandleResolveAuditLog)
	})
}

func (h *Handler) HandleCreateUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	landlordID, ok := requestcontext.Actor(ctx).LandlordID()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "landlord profile required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateUnitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	unit, err := h.service.CreateUnit(ctx, req.ToService(landlordID))
	if err != nil {
		h.fail(ctx, w, "create unit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, unit)
}

func (h *Handler) HandleGetChecklists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unitID, ok := h.ownedUnit(w, r)
	if !ok {
		return
	}
	cs, err := h.service.GetChecklists(ctx, unitID)
	if err != nil {
		h.fail(ctx, w, "get checklists failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"structural":  cs.Structural,
		"operational": cs.Operational,
	})
}

// HandleSetChecklist serves both the landlord PUT and the administrator
// PATCH; the service picks replace or merge semantics from the actor.
func (h *Handler) HandleSetChecklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	kind, err := models.ParseChecklistKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ChecklistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.SetChecklist(ctx, requestcontext.Actor(ctx), unitID, kind, req.Patch())
	if err != nil {
		h.fail(ctx, w, "set checklist failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleAddMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	landlordID, _ := requestcontext.Actor(ctx).LandlordID()
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MediaRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	media, err := h.service.AddMedia(ctx, landlordID, unitID, req.ParsedType(), req.URL)
	if err != nil {
		h.fail(ctx, w, "add media failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, media)
}

func (h *Handler) HandleSubmitUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	landlordID, _ := requestcontext.Actor(ctx).LandlordID()
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	unit, err := h.service.SubmitUnit(ctx, landlordID, unitID)
	if err != nil {
		h.fail(ctx, w, "submit unit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, unit)
}

func (h *Handler) HandleReviewUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	unit, err := h.service.ReviewUnit(ctx, unitID, req.Patch())
	if err != nil {
		h.fail(ctx, w, "review unit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, unit)
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	unit, err := h.service.SetStatus(ctx, unitID, req.ParsedStatus())
	if err != nil {
		h.fail(ctx, w, "set status failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, unit)
}

func (h *Handler) HandleRecalc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	res, err := h.service.RecalcTrustAndAudit(ctx, unitID)
	if err != nil {
		h.fail(ctx, w, "recalc failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleOpenAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AuditLogRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	log, err := h.service.OpenAuditLog(ctx, unitID, req.Reason)
	if err != nil {
		h.fail(ctx, w, "open audit log failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, log)
}

func (h *Handler) HandleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	logs, err := h.service.ListAuditLogs(ctx, unitID)
	if err != nil {
		h.fail(ctx, w, "list audit logs failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) HandlePenalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PenalizeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.PenalizeMisrepresentation(ctx, unitID, req.Reason, req.Points())
	if err != nil {
		h.fail(ctx, w, "penalize failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleSampleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corridorID, ok := corridorParam(w, r, "corridorId")
	if !ok {
		return
	}
	var count *int
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "count must be between 1 and 20"))
			return
		}
		count = &n
	}
	open := r.URL.Query().Get("open") == "true"
	res, err := h.service.SampleRandomAudit(ctx, corridorID, count, open)
	if err != nil {
		h.fail(ctx, w, "sample audit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleAuditQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corridorID, ok := corridorParam(w, r, "corridorId")
	if !ok {
		return
	}
	queue, err := h.service.ListAuditQueue(ctx, corridorID)
	if err != nil {
		h.fail(ctx, w, "audit queue failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, queue)
}

func (h *Handler) HandleCorrectivePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	logID, ok := auditLogParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CorrectivePlanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	log, err := h.service.SetCorrectivePlan(ctx, logID, req.CorrectiveAction, req.CorrectiveDeadline)
	if err != nil {
		h.fail(ctx, w, "corrective plan failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, log)
}

func (h *Handler) HandleResolveAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	logID, ok := auditLogParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ResolveAuditLogRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.ResolveAuditLog(ctx, logID, req.ToService())
	if err != nil {
		h.fail(ctx, w, "resolve audit log failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleExplainUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unitID, ok := h.ownedUnit(w, r)
	if !ok {
		return
	}
	exp, err := h.service.ExplainUnit(ctx, unitID)
	if err != nil {
		h.fail(ctx, w, "explain unit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exp)
}

func (h *Handler) HandleListVisible(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corridorID, ok := corridorParam(w, r, "id")
	if !ok {
		return
	}
	units, err := h.service.ListVisibleUnits(ctx, corridorID)
	if err != nil {
		h.fail(ctx, w, "list visible units failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, units)
}

func (h *Handler) HandleListHidden(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corridorID, ok := corridorParam(w, r, "id")
	if !ok {
		return
	}
	units, err := h.service.ListHiddenUnits(ctx, corridorID)
	if err != nil {
		h.fail(ctx, w, "list hidden units failed", err)
		return
	}
	actor := requestcontext.Actor(ctx)
	if landlordID, isLandlord := actor.LandlordID(); isLandlord {
		own := units[:0]
		for _, u := range units {
			if u.OwnedBy(landlordID) {
				own = append(own, u)
			}
		}
		units = own
	}
	httputil.WriteJSON(w, http.StatusOK, units)
}

// ownedUnit parses the unit id and, for landlords, checks ownership.
func (h *Handler) ownedUnit(w http.ResponseWriter, r *http.Request) (id.UnitID, bool) {
	ctx := r.Context()
	unitID, ok := unitParam(w, r, "id")
	if !ok {
		return id.UnitID{}, false
	}
	actor := requestcontext.Actor(ctx)
	if actor.IsAdmin() {
		return unitID, true
	}
	unit, err := h.service.GetUnit(ctx, unitID)
	if err != nil {
		h.fail(ctx, w, "load unit failed", err)
		return id.UnitID{}, false
	}
	landlordID, _ := actor.LandlordID()
	if !unit.OwnedBy(landlordID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "you can only manage your own units"))
		return id.UnitID{}, false
	}
	return unitID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.HasCode(err, dErrors.CodeInternal) || !isDomain(err) {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func isDomain(err error) bool {
	_, ok := dErrors.As(err)
	return ok
}

func unitParam(w http.ResponseWriter, r *http.Request, name string) (id.UnitID, bool) {
	unitID, err := id.ParseUnitID(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UnitID{}, false
	}
	return unitID, true
}

func corridorParam(w http.ResponseWriter, r *http.Request, name string) (id.CorridorID, bool) {
	corridorID, err := id.ParseCorridorID(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CorridorID{}, false
	}
	return corridorID, true
}

func auditLogParam(w http.ResponseWriter, r *http.Request) (id.AuditLogID, bool) {
	logID, err := id.ParseAuditLogID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.AuditLogID{}, false
	}
	return logID, true
}
