// Package service registers the directory records other modules resolve:
// corridors, and the student and landlord profiles keyed by identity subject.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"lodgeguard/internal/directory/models"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/requestcontext"
)

type Store interface {
	CreateCorridor(ctx context.Context, c *models.Corridor) error
	FindCorridor(ctx context.Context, corridorID id.CorridorID) (*models.Corridor, error)
	CreateStudent(ctx context.Context, s *models.Student) error
	FindStudent(ctx context.Context, studentID id.StudentID) (*models.Student, error)
	CreateLandlord(ctx context.Context, l *models.Landlord) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateCorridor(ctx context.Context, name string, code, cityCode int) (*models.Corridor, error) {
	c, err := models.NewCorridor(id.CorridorID(uuid.New()), name, code, cityCode, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	if err := s.store.CreateCorridor(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "corridor code already used in this city")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create corridor")
	}
	s.logger.InfoContext(ctx, "corridor created",
		"request_id", requestcontext.RequestID(ctx),
		"corridor_id", c.ID,
	)
	return c, nil
}

func (s *Service) GetCorridor(ctx context.Context, corridorID id.CorridorID) (*models.Corridor, error) {
	c, err := s.store.FindCorridor(ctx, corridorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "corridor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load corridor")
	}
	return c, nil
}

// RegisterStudent creates the student profile for an identity subject.
func (s *Service) RegisterStudent(ctx context.Context, studentID id.StudentID, corridorID id.CorridorID) (*models.Student, error) {
	if _, err := s.GetCorridor(ctx, corridorID); err != nil {
		return nil, err
	}
	st := &models.Student{ID: studentID, CorridorID: corridorID, CreatedAt: requestcontext.Now(ctx)}
	if err := s.store.CreateStudent(ctx, st); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "student already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register student")
	}
	return st, nil
}

// RegisterLandlord creates the landlord profile for an identity subject.
func (s *Service) RegisterLandlord(ctx context.Context, landlordID id.LandlordID) (*models.Landlord, error) {
	l := &models.Landlord{ID: landlordID, CreatedAt: requestcontext.Now(ctx)}
	if err := s.store.CreateLandlord(ctx, l); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "landlord already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register landlord")
	}
	return l, nil
}
