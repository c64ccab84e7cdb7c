// Package service owns the unit lifecycle: checklists, media, review,
// trust recalculation and the audit trail. Every write to a unit runs inside
// UnitTx so escalation decisions see the latest audit flag.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"lodgeguard/internal/governance/metrics"
	"lodgeguard/internal/governance/models"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/requestcontext"
)

type Store interface {
	CreateUnit(ctx context.Context, unit *models.Unit, checklists *models.Checklists) error
	FindUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error)
	LockUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error)
	SaveUnit(ctx context.Context, unit *models.Unit) error
	ListUnitsByCorridor(ctx context.Context, corridorID id.CorridorID) ([]*models.Unit, error)

	FindChecklists(ctx context.Context, unitID id.UnitID) (*models.Checklists, error)
	SaveChecklist(ctx context.Context, c *models.Checklist) error

	AddMedia(ctx context.Context, m *models.Media) error
	ListMedia(ctx context.Context, unitID id.UnitID) ([]*models.Media, error)
	LockMedia(ctx context.Context, unitID id.UnitID) error

	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	FindAuditLog(ctx context.Context, logID id.AuditLogID) (*models.AuditLog, error)
	SaveAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, unitID id.UnitID) ([]*models.AuditLog, error)
	CountUnresolvedAuditLogs(ctx context.Context, unitID id.UnitID) (int, error)
}

type Service struct {
	store      Store
	tx         UnitTx
	complaints ComplaintHistory
	occupancy  OccupancyCounter
	directory  Directory
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	shuffle    func(n int, swap func(i, j int))
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithOccupancyCounter enables occupancy figures in visible listings.
func WithOccupancyCounter(c OccupancyCounter) Option {
	return func(s *Service) {
		s.occupancy = c
	}
}

// WithShuffle replaces the random permutation used for audit sampling.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Service) {
		s.shuffle = shuffle
	}
}

func New(store Store, tx UnitTx, complaints ComplaintHistory, directory Directory, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tx:         tx,
		complaints: complaints,
		directory:  directory,
		logger:     slog.Default(),
		tracer:     otel.Tracer("lodgeguard/governance"),
		shuffle:    defaultShuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUnit loads a unit without locking it.
func (s *Service) GetUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error) {
	u, err := s.store.FindUnit(ctx, unitID)
	if err != nil {
		return nil, translate(err, "unit not found", "failed to load unit")
	}
	return u, nil
}

// lockUnit is the first call inside every unit transaction.
func lockUnit(ctx context.Context, store Store, unitID id.UnitID) (*models.Unit, error) {
	u, err := store.LockUnit(ctx, unitID)
	if err != nil {
		return nil, translate(err, "unit not found", "failed to lock unit")
	}
	return u, nil
}

// requireOwner fails with a permission error unless landlordID owns unit.
func requireOwner(unit *models.Unit, landlordID id.LandlordID) error {
	if !unit.OwnedBy(landlordID) {
		return dErrors.New(dErrors.CodeForbidden, "you can only manage your own units")
	}
	return nil
}

func (s *Service) saveUnit(ctx context.Context, store Store, unit *models.Unit) error {
	if err := store.SaveUnit(ctx, unit); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save unit")
	}
	return nil
}

// openAuditLog writes a log and puts the unit under audit. The unit is saved
// by the caller.
func (s *Service) openAuditLog(ctx context.Context, store Store, unit *models.Unit, trigger models.TriggerType, reason string, decorate ...func(*models.AuditLog)) (*models.AuditLog, error) {
	now := requestcontext.Now(ctx)
	log, err := models.NewAuditLog(newAuditLogID(), unit.ID, trigger, reason, now)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	for _, fn := range decorate {
		fn(log)
	}
	if err := store.CreateAuditLog(ctx, log); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create audit log")
	}
	from := unit.Status
	unit.RequireAudit(now)
	s.metrics.IncEscalation(string(trigger))
	s.metrics.IncTransition(string(from), string(unit.Status))
	s.logger.WarnContext(ctx, "unit escalated to audit",
		"request_id", requestcontext.RequestID(ctx),
		"unit_id", unit.ID,
		"trigger", trigger,
		"audit_log_id", log.ID,
		"status", unit.Status,
	)
	return log, nil
}

// translate maps store sentinels to domain errors. Errors that already carry
// a domain code pass through.
func translate(err error, notFound, internal string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting update")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, internal)
	}
}
