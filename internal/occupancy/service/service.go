// Package service allocates occupancy slots. Every allocation runs under the
// unit lock and issues a public occupant id from the unit's location codes.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lodgeguard/internal/occupancy/metrics"
	"lodgeguard/internal/occupancy/models"
	"lodgeguard/internal/occupancy/store"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/requestcontext"
)

// MaxCheckInAttempts bounds retries of the whole check-in transaction after
// an occupant id uniqueness conflict.
const MaxCheckInAttempts = 3

type Store interface {
	FindPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error)
	LockPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error)
	FindActiveByStudent(ctx context.Context, studentID id.StudentID) (*models.Occupancy, error)
	ListActiveOccupants(ctx context.Context, unitID id.UnitID, roomNumber int) ([]*models.Occupant, error)
	Create(ctx context.Context, occ *models.Occupancy, occupant *models.Occupant) error
	FindOccupancy(ctx context.Context, occupancyID id.OccupancyID) (*models.Occupancy, error)
	End(ctx context.Context, occ *models.Occupancy) error
	CountActiveByUnit(ctx context.Context, unitID id.UnitID) (int, error)
	FindActiveOccupant(ctx context.Context, publicID string) (*models.Occupant, error)
}

type Service struct {
	store      Store
	tx         UnitTx
	governance Governance
	students   Students
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
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

func New(store Store, tx UnitTx, governance Governance, students Students, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tx:         tx,
		governance: governance,
		students:   students,
		logger:     slog.Default(),
		tracer:     otel.Tracer("lodgeguard/occupancy"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn places a student in the lowest free slot of a unit owned by the
// landlord. A capacity overflow fails the check-in and, after the
// transaction, puts the unit under audit.
func (s *Service) CheckIn(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID, studentID id.StudentID) (*models.CheckInResult, error) {
	ctx, span := s.tracer.Start(ctx, "occupancy.CheckIn")
	defer span.End()
	span.SetAttributes(attribute.String("unit_id", unitID.String()), attribute.String("student_id", studentID.String()))

	result, err := s.checkIn(ctx, landlordID, unitID, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "check-in failed")
		s.metrics.IncCheckIn(outcome(err))
		return nil, err
	}
	s.metrics.IncCheckIn("ok")
	span.SetAttributes(attribute.String("public_occupant_id", result.PublicOccupantID))
	return result, nil
}

func (s *Service) checkIn(ctx context.Context, landlordID id.LandlordID, unitID id.UnitID, studentID id.StudentID) (*models.CheckInResult, error) {
	requestID := requestcontext.RequestID(ctx)
	if _, err := s.students.FindStudent(ctx, studentID); err != nil {
		return nil, translate(err, "student not found", "failed to load student")
	}
	placement, err := s.store.FindPlacement(ctx, unitID)
	if err != nil {
		return nil, translate(err, "unit not found", "failed to load unit")
	}
	if placement.LandlordID != landlordID {
		return nil, dErrors.New(dErrors.CodeForbidden, "you can only manage your own units")
	}
	if err := placement.Location.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxCheckInAttempts; attempt++ {
		var result *models.CheckInResult
		err := s.tx.RunInTx(ctx, unitID, func(ctx context.Context, st Store) error {
			var err error
			result, err = s.allocate(ctx, st, landlordID, unitID, studentID)
			return err
		})
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "student checked in",
				"request_id", requestID,
				"unit_id", unitID,
				"student_id", studentID,
				"public_occupant_id", result.PublicOccupantID,
				"attempt", attempt,
			)
			return result, nil
		case errors.Is(err, sentinel.ErrConflict):
			s.metrics.IncRetry()
			s.logger.WarnContext(ctx, "occupant id conflict, retrying check-in",
				"request_id", requestID,
				"unit_id", unitID,
				"attempt", attempt,
			)
			continue
		case dErrors.HasReason(err, models.ReasonCapacityReached):
			s.flagCapacity(ctx, unitID)
			return nil, err
		default:
			return nil, err
		}
	}
	return nil, dErrors.New(dErrors.CodeConflict, "check-in conflicted repeatedly, try again").
		WithReason(models.ReasonCheckInConflict)
}

// allocate is one check-in attempt inside the unit lock. A sentinel
// ErrConflict return signals a retryable occupant id race.
func (s *Service) allocate(ctx context.Context, st Store, landlordID id.LandlordID, unitID id.UnitID, studentID id.StudentID) (*models.CheckInResult, error) {
	placement, err := st.LockPlacement(ctx, unitID)
	if err != nil {
		return nil, translate(err, "unit not found", "failed to lock unit")
	}
	if placement.LandlordID != landlordID {
		return nil, dErrors.New(dErrors.CodeForbidden, "you can only manage your own units")
	}
	if _, err := st.FindActiveByStudent(ctx, studentID); err == nil {
		return nil, studentAlreadyActive()
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check active occupancy")
	}

	limit := placement.MaxOccupants()
	if limit <= 0 {
		return nil, dErrors.New(dErrors.CodeConflict, "unit capacity does not allow any occupant").
			WithReason(models.ReasonInvalidCapacity)
	}
	occupants, err := st.ListActiveOccupants(ctx, unitID, placement.Location.RoomNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list occupants")
	}
	if len(occupants) >= limit {
		return nil, dErrors.New(dErrors.CodeConflict, "unit capacity reached").
			WithReason(models.ReasonCapacityReached)
	}
	index, ok := models.FreeIndex(limit, occupants)
	if !ok {
		return nil, dErrors.New(dErrors.CodeConflict, "no occupant slot available").
			WithReason(models.ReasonNoSlotAvailable)
	}

	occ := &models.Occupancy{
		ID:        id.OccupancyID(uuid.New()),
		UnitID:    unitID,
		StudentID: studentID,
		StartDate: requestcontext.Now(ctx),
	}
	occupant, err := models.NewOccupant(id.OccupantID(uuid.New()), occ, placement, index)
	if err != nil {
		return nil, err
	}
	if err := st.Create(ctx, occ, occupant); err != nil {
		switch {
		case errors.Is(err, store.ErrStudentActive):
			return nil, studentAlreadyActive()
		case errors.Is(err, sentinel.ErrConflict):
			return nil, err
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create occupancy")
		}
	}
	return &models.CheckInResult{Occupancy: occ, PublicOccupantID: occupant.PublicID}, nil
}

// flagCapacity commits the punishment in its own transaction. Failing to
// record it does not change the check-in error the caller sees.
func (s *Service) flagCapacity(ctx context.Context, unitID id.UnitID) {
	log, err := s.governance.FlagCapacityViolation(ctx, unitID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record capacity violation",
			"request_id", requestcontext.RequestID(ctx),
			"unit_id", unitID,
			"error", err,
		)
		return
	}
	s.logger.WarnContext(ctx, "capacity violation recorded",
		"request_id", requestcontext.RequestID(ctx),
		"unit_id", unitID,
		"audit_log_id", log.ID,
	)
}

// CheckOut ends an active occupancy of a unit owned by the landlord and
// retires its occupant ids.
func (s *Service) CheckOut(ctx context.Context, landlordID id.LandlordID, occupancyID id.OccupancyID) (*models.Occupancy, error) {
	occ, err := s.store.FindOccupancy(ctx, occupancyID)
	if err != nil {
		return nil, translate(err, "occupancy not found", "failed to load occupancy")
	}
	var result *models.Occupancy
	err = s.tx.RunInTx(ctx, occ.UnitID, func(ctx context.Context, st Store) error {
		placement, err := st.LockPlacement(ctx, occ.UnitID)
		if err != nil {
			return translate(err, "unit not found", "failed to lock unit")
		}
		if placement.LandlordID != landlordID {
			return dErrors.New(dErrors.CodeForbidden, "you can only manage your own units")
		}
		current, err := st.FindOccupancy(ctx, occupancyID)
		if err != nil {
			return translate(err, "occupancy not found", "failed to load occupancy")
		}
		if err := current.End(requestcontext.Now(ctx)); err != nil {
			return err
		}
		if err := st.End(ctx, current); err != nil {
			return translate(err, "occupancy not found", "failed to end occupancy")
		}
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCheckOut()
	s.logger.InfoContext(ctx, "student checked out",
		"request_id", requestcontext.RequestID(ctx),
		"unit_id", result.UnitID,
		"student_id", result.StudentID,
		"occupancy_id", result.ID,
	)
	return result, nil
}

// FindActiveOccupant resolves a public occupant id for complaint
// attribution.
func (s *Service) FindActiveOccupant(ctx context.Context, publicID string) (*models.Occupant, error) {
	o, err := s.store.FindActiveOccupant(ctx, publicID)
	if err != nil {
		return nil, translate(err, "occupant not found", "failed to load occupant")
	}
	return o, nil
}

// CountActiveByUnit feeds listing availability.
func (s *Service) CountActiveByUnit(ctx context.Context, unitID id.UnitID) (int, error) {
	return s.store.CountActiveByUnit(ctx, unitID)
}

func studentAlreadyActive() error {
	return dErrors.New(dErrors.CodeConflict, "student is already checked into a unit").
		WithReason(models.ReasonStudentAlreadyActive)
}

func outcome(err error) string {
	if de, ok := dErrors.As(err); ok && de.Reason != "" {
		return de.Reason
	}
	return "error"
}

func translate(err error, notFound, internal string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}
