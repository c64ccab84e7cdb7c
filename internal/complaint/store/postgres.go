package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lodgeguard/internal/complaint/models"
	"lodgeguard/internal/platform/postgres"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/platform/tx"
)

// PostgresStore persists complaints in the complaints table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const complaintColumns = `id, unit_id, student_id, occupant_public_id, severity, incident_type,
	incident_flag, message, created_at, sla_deadline, resolved, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Complaint) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO complaints (`+complaintColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, uuid.UUID(c.ID), uuid.UUID(c.UnitID), uuid.UUID(c.StudentID), nullString(c.OccupantPublicID),
		c.Severity, string(c.IncidentType), c.IncidentFlag, nullString(c.Message), c.CreatedAt,
		c.SLADeadline, c.Resolved, c.ResolvedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, uuid.UUID(complaintID))
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return c, nil
}

// Save writes the resolution fields, the only ones that change.
func (s *PostgresStore) Save(ctx context.Context, c *models.Complaint) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx,
		`UPDATE complaints SET resolved = $2, resolved_at = $3 WHERE id = $1`,
		uuid.UUID(c.ID), c.Resolved, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByUnit(ctx context.Context, unitID id.UnitID) ([]*models.Complaint, error) {
	return s.list(ctx, `unit_id = $1`, uuid.UUID(unitID))
}

func (s *PostgresStore) ListByStudent(ctx context.Context, studentID id.StudentID) ([]*models.Complaint, error) {
	return s.list(ctx, `student_id = $1`, uuid.UUID(studentID))
}

func (s *PostgresStore) list(ctx context.Context, where string, arg any) ([]*models.Complaint, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	out := []*models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var (
		c                       models.Complaint
		complaintID, unit, stud uuid.UUID
		occupant, message       sql.NullString
		incident                string
		resolvedAt              sql.NullTime
	)
	if err := row.Scan(&complaintID, &unit, &stud, &occupant, &c.Severity, &incident,
		&c.IncidentFlag, &message, &c.CreatedAt, &c.SLADeadline, &c.Resolved, &resolvedAt); err != nil {
		return nil, err
	}
	c.ID = id.ComplaintID(complaintID)
	c.UnitID = id.UnitID(unit)
	c.StudentID = id.StudentID(stud)
	c.OccupantPublicID = occupant.String
	c.Message = message.String
	c.IncidentType = models.IncidentType(incident)
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		c.ResolvedAt = &t
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.SLADeadline = c.SLADeadline.UTC()
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
