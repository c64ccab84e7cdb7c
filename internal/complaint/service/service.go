// Package service records and resolves complaints. Each change to a unit's
// complaint history triggers a trust recalculation, which may escalate the
// unit into audit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lodgeguard/internal/complaint/metrics"
	"lodgeguard/internal/complaint/models"
	gmodels "lodgeguard/internal/governance/models"
	gservice "lodgeguard/internal/governance/service"
	"lodgeguard/internal/occupancy/codec"
	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, c *models.Complaint) error
	Find(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	Save(ctx context.Context, c *models.Complaint) error
	ListByUnit(ctx context.Context, unitID id.UnitID) ([]*models.Complaint, error)
	ListByStudent(ctx context.Context, studentID id.StudentID) ([]*models.Complaint, error)
}

type Service struct {
	store      Store
	governance Governance
	students   Students
	occupants  Occupants
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

func New(store Store, governance Governance, students Students, occupants Occupants, opts ...Option) *Service {
	s := &Service{
		store:      store,
		governance: governance,
		students:   students,
		occupants:  occupants,
		logger:     slog.Default(),
		tracer:     otel.Tracer("lodgeguard/complaint"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordRequest references the unit directly or through a public occupant
// id. When both are present the occupant wins.
type RecordRequest struct {
	StudentID    id.StudentID
	UnitID       *id.UnitID
	OccupantID   string
	Severity     int
	IncidentType models.IncidentType
	Message      string
}

// RecordResult carries the complaint and the unit's recalculated score.
type RecordResult struct {
	Complaint  *models.Complaint `json:"complaint"`
	TrustScore int               `json:"trust_score"`
	AuditLogID *id.AuditLogID    `json:"audit_log_id,omitempty"`
}

// RecordComplaint files a complaint as the requesting student. The student
// must live in the unit's corridor; an occupant reference must be active
// and their own.
func (s *Service) RecordComplaint(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.RecordComplaint")
	defer span.End()
	span.SetAttributes(attribute.String("student_id", req.StudentID.String()))

	result, err := s.record(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record complaint failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("unit_id", result.Complaint.UnitID.String()),
		attribute.Int("trust_score", result.TrustScore),
	)
	return result, nil
}

func (s *Service) record(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	requestID := requestcontext.RequestID(ctx)
	student, err := s.students.FindStudent(ctx, req.StudentID)
	if err != nil {
		return nil, translate(err, "student profile not found", "failed to load student")
	}

	var (
		unitID   id.UnitID
		occupant string
	)
	if req.UnitID != nil {
		unitID = *req.UnitID
	}
	if ref := strings.TrimSpace(req.OccupantID); ref != "" {
		o, err := s.resolveOccupant(ctx, ref, req.StudentID)
		if err != nil {
			return nil, err
		}
		unitID, occupant = o, ref
	}
	if unitID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "provide occupant_id or unit_id")
	}

	unit, err := s.governance.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.CorridorID != student.CorridorID {
		if occupant != "" {
			return nil, invalidOccupant()
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "you can only file complaints in your corridor")
	}

	complaint, err := models.NewComplaint(id.ComplaintID(uuid.New()), unitID, req.StudentID, occupant,
		req.Severity, req.IncidentType, req.Message, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, complaint); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record complaint")
	}
	s.metrics.IncRecorded(string(complaint.IncidentType))
	s.logger.InfoContext(ctx, "complaint recorded",
		"request_id", requestID,
		"complaint_id", complaint.ID,
		"unit_id", unitID,
		"student_id", req.StudentID,
		"severity", complaint.Severity,
		"incident_type", complaint.IncidentType,
	)

	recalc, err := s.governance.RecalcTrustAndAudit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return newRecordResult(complaint, recalc), nil
}

// resolveOccupant maps a public id to its unit. Every mismatch reads as an
// invalid id so the response does not reveal who holds it.
func (s *Service) resolveOccupant(ctx context.Context, publicID string, studentID id.StudentID) (id.UnitID, error) {
	if !codec.IsValid(publicID) {
		return id.UnitID{}, invalidOccupant()
	}
	o, err := s.occupants.FindActiveOccupant(ctx, publicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return id.UnitID{}, invalidOccupant()
		}
		return id.UnitID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load occupant")
	}
	if !o.Active || o.StudentID != studentID {
		return id.UnitID{}, invalidOccupant()
	}
	return o.UnitID, nil
}

// ResolveComplaint closes a complaint as its unit's landlord or an
// administrator. Resolving twice keeps the first resolution.
func (s *Service) ResolveComplaint(ctx context.Context, actor id.Actor, complaintID id.ComplaintID) (*RecordResult, error) {
	complaint, err := s.store.Find(ctx, complaintID)
	if err != nil {
		return nil, translate(err, "complaint not found", "failed to load complaint")
	}
	unit, err := s.governance.GetUnit(ctx, complaint.UnitID)
	if err != nil {
		return nil, err
	}
	if err := authorizeUnit(actor, unit); err != nil {
		return nil, err
	}

	if !complaint.Resolve(requestcontext.Now(ctx)) {
		return &RecordResult{Complaint: complaint, TrustScore: unit.TrustScore}, nil
	}
	if err := s.store.Save(ctx, complaint); err != nil {
		return nil, translate(err, "complaint not found", "failed to resolve complaint")
	}
	s.metrics.IncResolved(complaint.ResolvedLate())
	s.logger.InfoContext(ctx, "complaint resolved",
		"request_id", requestcontext.RequestID(ctx),
		"complaint_id", complaint.ID,
		"unit_id", complaint.UnitID,
		"late", complaint.ResolvedLate(),
	)

	recalc, err := s.governance.RecalcTrustAndAudit(ctx, complaint.UnitID)
	if err != nil {
		return nil, err
	}
	return newRecordResult(complaint, recalc), nil
}

// UnitComplaints is a filtered complaint list with its dashboard figures.
type UnitComplaints struct {
	UnitID     id.UnitID      `json:"unit_id"`
	Summary    models.Summary `json:"summary"`
	Complaints []models.View  `json:"complaints"`
}

// ListComplaints returns a unit's complaints newest first with SLA status
// computed now. Students may read units in their corridor; landlords only
// their own units.
func (s *Service) ListComplaints(ctx context.Context, actor id.Actor, unitID id.UnitID, filter models.Filter) (*UnitComplaints, error) {
	unit, err := s.governance.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if studentID, ok := actor.StudentID(); ok {
		student, err := s.students.FindStudent(ctx, studentID)
		if err != nil {
			return nil, translate(err, "student profile not found", "failed to load student")
		}
		if student.CorridorID != unit.CorridorID {
			return nil, dErrors.New(dErrors.CodeForbidden, "you can only view units in your corridor")
		}
	} else if err := authorizeUnit(actor, unit); err != nil {
		return nil, err
	}

	all, err := s.store.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	now := requestcontext.Now(ctx)
	matched := []*models.Complaint{}
	for _, c := range all {
		if filter.Match(c, now) {
			matched = append(matched, c)
		}
	}
	return &UnitComplaints{
		UnitID:     unitID,
		Summary:    models.Summarize(matched, now),
		Complaints: views(matched, now),
	}, nil
}

// ListStudentComplaints returns what a student has filed, newest first.
func (s *Service) ListStudentComplaints(ctx context.Context, studentID id.StudentID) ([]models.View, error) {
	cs, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	return views(cs, requestcontext.Now(ctx)), nil
}

func views(cs []*models.Complaint, now time.Time) []models.View {
	out := make([]models.View, len(cs))
	for i, c := range cs {
		out[i] = models.NewView(c, now)
	}
	return out
}

func authorizeUnit(actor id.Actor, unit *gmodels.Unit) error {
	if actor.IsAdmin() {
		return nil
	}
	landlordID, ok := actor.LandlordID()
	if !ok || !unit.OwnedBy(landlordID) {
		return dErrors.New(dErrors.CodeForbidden, "you can only manage complaints for your own units")
	}
	return nil
}

func newRecordResult(c *models.Complaint, recalc *gservice.RecalcResult) *RecordResult {
	res := &RecordResult{Complaint: c, TrustScore: recalc.TrustScore}
	if recalc.Escalated != nil {
		logID := recalc.Escalated.ID
		res.AuditLogID = &logID
	}
	return res
}

func invalidOccupant() error {
	return dErrors.New(dErrors.CodeValidation, "invalid occupant id")
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
