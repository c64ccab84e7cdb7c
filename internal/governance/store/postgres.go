package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lodgeguard/internal/governance/models"
	"lodgeguard/internal/platform/postgres"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/platform/tx"
)

// PostgresStore persists units, checklists, media and audit logs. Methods
// join the transaction carried in context when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const unitColumns = `id, corridor_id, landlord_id, capacity, hostel_code, room_number, status,
	structural_approved, operational_baseline_approved, trust_score, audit_required,
	false_declaration_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*models.Unit, error) {
	var (
		u                          models.Unit
		unitID, corridor, landlord uuid.UUID
		status                     string
	)
	if err := row.Scan(&unitID, &corridor, &landlord, &u.Capacity, &u.HostelCode, &u.RoomNumber, &status,
		&u.StructuralApproved, &u.OperationalBaselineApproved, &u.TrustScore, &u.AuditRequired,
		&u.FalseDeclarationCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UnitID(unitID)
	u.CorridorID = id.CorridorID(corridor)
	u.LandlordID = id.LandlordID(landlord)
	u.Status = models.UnitStatus(status)
	return &u, nil
}

func (s *PostgresStore) CreateUnit(ctx context.Context, unit *models.Unit, checklists *models.Checklists) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		_, err := q.ExecContext(ctx, `
			INSERT INTO units (`+unitColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, uuid.UUID(unit.ID), uuid.UUID(unit.CorridorID), uuid.UUID(unit.LandlordID), unit.Capacity,
			unit.HostelCode, unit.RoomNumber, string(unit.Status), unit.StructuralApproved,
			unit.OperationalBaselineApproved, unit.TrustScore, unit.AuditRequired,
			unit.FalseDeclarationCount, unit.CreatedAt, unit.UpdatedAt)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert unit: %w", err)
		}
		for _, c := range []*models.Checklist{checklists.Structural, checklists.Operational} {
			if err := s.insertChecklist(ctx, q, c); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) FindUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error) {
	return s.findUnit(ctx, unitID, "")
}

// LockUnit reads the unit and holds its row lock until the ambient
// transaction ends. Without a transaction the lock is released immediately.
func (s *PostgresStore) LockUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error) {
	return s.findUnit(ctx, unitID, " FOR UPDATE")
}

func (s *PostgresStore) findUnit(ctx context.Context, unitID id.UnitID, suffix string) (*models.Unit, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = $1`+suffix, uuid.UUID(unitID))
	u, err := scanUnit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find unit: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) SaveUnit(ctx context.Context, unit *models.Unit) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE units SET
			status = $2,
			structural_approved = $3,
			operational_baseline_approved = $4,
			trust_score = $5,
			audit_required = $6,
			false_declaration_count = $7,
			updated_at = $8
		WHERE id = $1
	`, uuid.UUID(unit.ID), string(unit.Status), unit.StructuralApproved, unit.OperationalBaselineApproved,
		unit.TrustScore, unit.AuditRequired, unit.FalseDeclarationCount, unit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	return requireOneRow(res)
}

func (s *PostgresStore) ListUnitsByCorridor(ctx context.Context, corridorID id.CorridorID) ([]*models.Unit, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE corridor_id = $1 ORDER BY created_at`, uuid.UUID(corridorID))
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var out []*models.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// checklistTable maps a kind to its table and item columns. Column names
// equal the wire item names.
func checklistTable(kind models.ChecklistKind) (table string, columns []string) {
	if kind == models.ChecklistStructural {
		return "structural_checklists", models.ItemNames(kind)
	}
	return "operational_checklists", models.ItemNames(kind)
}

func (s *PostgresStore) insertChecklist(ctx context.Context, q tx.Execer, c *models.Checklist) error {
	table, cols := checklistTable(c.Kind)
	_, err := q.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (unit_id, %s, %s, %s, %s, approved) VALUES ($1, $2, $3, $4, $5, $6)
	`, table, cols[0], cols[1], cols[2], cols[3]),
		uuid.UUID(c.UnitID), c.Items[cols[0]], c.Items[cols[1]], c.Items[cols[2]], c.Items[cols[3]], c.Approved)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) findChecklist(ctx context.Context, unitID id.UnitID, kind models.ChecklistKind) (*models.Checklist, error) {
	table, cols := checklistTable(kind)
	c := models.NewChecklist(unitID, kind)
	var v [4]bool
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s, %s, %s, %s, approved FROM %s WHERE unit_id = $1`,
		cols[0], cols[1], cols[2], cols[3], table), uuid.UUID(unitID)).
		Scan(&v[0], &v[1], &v[2], &v[3], &c.Approved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", table, err)
	}
	for i, name := range cols {
		c.Items[name] = v[i]
	}
	if kind == models.ChecklistOperational {
		var declaration sql.NullString
		err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
			`SELECT self_declaration FROM operational_checklists WHERE unit_id = $1`, uuid.UUID(unitID)).
			Scan(&declaration)
		if err != nil {
			return nil, fmt.Errorf("find self declaration: %w", err)
		}
		c.SelfDeclaration = declaration.String
	}
	return c, nil
}

func (s *PostgresStore) FindChecklists(ctx context.Context, unitID id.UnitID) (*models.Checklists, error) {
	structural, err := s.findChecklist(ctx, unitID, models.ChecklistStructural)
	if err != nil {
		return nil, err
	}
	operational, err := s.findChecklist(ctx, unitID, models.ChecklistOperational)
	if err != nil {
		return nil, err
	}
	return &models.Checklists{Structural: structural, Operational: operational}, nil
}

func (s *PostgresStore) SaveChecklist(ctx context.Context, c *models.Checklist) error {
	table, cols := checklistTable(c.Kind)
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, fmt.Sprintf(
		`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, approved = $6 WHERE unit_id = $1`,
		table, cols[0], cols[1], cols[2], cols[3]),
		uuid.UUID(c.UnitID), c.Items[cols[0]], c.Items[cols[1]], c.Items[cols[2]], c.Items[cols[3]], c.Approved)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if err := requireOneRow(res); err != nil {
		return err
	}
	if c.Kind != models.ChecklistOperational {
		return nil
	}
	_, err = tx.Pick(ctx, s.db).ExecContext(ctx,
		`UPDATE operational_checklists SET self_declaration = $2 WHERE unit_id = $1`,
		uuid.UUID(c.UnitID), nullString(c.SelfDeclaration))
	if err != nil {
		return fmt.Errorf("update self declaration: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddMedia(ctx context.Context, m *models.Media) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO media (id, unit_id, type, url, locked, created_at) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(m.ID), uuid.UUID(m.UnitID), string(m.Type), m.URL, m.Locked, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMedia(ctx context.Context, unitID id.UnitID) ([]*models.Media, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, `
		SELECT id, unit_id, type, url, locked, created_at FROM media WHERE unit_id = $1 ORDER BY created_at
	`, uuid.UUID(unitID))
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()
	out := []*models.Media{}
	for rows.Next() {
		var (
			m             models.Media
			mediaID, unit uuid.UUID
			mediaType     string
		)
		if err := rows.Scan(&mediaID, &unit, &mediaType, &m.URL, &m.Locked, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		m.ID = id.MediaID(mediaID)
		m.UnitID = id.UnitID(unit)
		m.Type = models.MediaType(mediaType)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LockMedia(ctx context.Context, unitID id.UnitID) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `UPDATE media SET locked = true WHERE unit_id = $1`, uuid.UUID(unitID))
	if err != nil {
		return fmt.Errorf("lock media: %w", err)
	}
	return nil
}

const auditLogColumns = `id, unit_id, trigger_type, reason, corrective_action, corrective_deadline,
	resolved, resolved_at, verification_notes, declaration, created_at`

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	var (
		l              models.AuditLog
		logID, unitID  uuid.UUID
		trigger        string
		action, notes  sql.NullString
		declaration    sql.NullString
		deadline, done sql.NullTime
	)
	if err := row.Scan(&logID, &unitID, &trigger, &l.Reason, &action, &deadline,
		&l.Resolved, &done, &notes, &declaration, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.ID = id.AuditLogID(logID)
	l.UnitID = id.UnitID(unitID)
	l.TriggerType = models.TriggerType(trigger)
	l.CorrectiveAction = action.String
	l.VerificationNotes = notes.String
	l.Declaration = declaration.String
	if deadline.Valid {
		l.CorrectiveDeadline = &deadline.Time
	}
	if done.Valid {
		l.ResolvedAt = &done.Time
	}
	return &l, nil
}

func (s *PostgresStore) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_logs (`+auditLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, uuid.UUID(l.ID), uuid.UUID(l.UnitID), string(l.TriggerType), l.Reason, nullString(l.CorrectiveAction),
		l.CorrectiveDeadline, l.Resolved, l.ResolvedAt, nullString(l.VerificationNotes), nullString(l.Declaration), l.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAuditLog(ctx context.Context, logID id.AuditLogID) (*models.AuditLog, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+auditLogColumns+` FROM audit_logs WHERE id = $1`, uuid.UUID(logID))
	l, err := scanAuditLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find audit log: %w", err)
	}
	return l, nil
}

func (s *PostgresStore) SaveAuditLog(ctx context.Context, l *models.AuditLog) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE audit_logs SET
			corrective_action = $2,
			corrective_deadline = $3,
			resolved = $4,
			resolved_at = $5,
			verification_notes = $6
		WHERE id = $1
	`, uuid.UUID(l.ID), nullString(l.CorrectiveAction), l.CorrectiveDeadline, l.Resolved, l.ResolvedAt,
		nullString(l.VerificationNotes))
	if err != nil {
		return fmt.Errorf("update audit log: %w", err)
	}
	return requireOneRow(res)
}

func (s *PostgresStore) ListAuditLogs(ctx context.Context, unitID id.UnitID) ([]*models.AuditLog, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx,
		`SELECT `+auditLogColumns+` FROM audit_logs WHERE unit_id = $1 ORDER BY created_at DESC`, uuid.UUID(unitID))
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	out := []*models.AuditLog{}
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountUnresolvedAuditLogs(ctx context.Context, unitID id.UnitID) (int, error) {
	var n int
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT count(*) FROM audit_logs WHERE unit_id = $1 AND resolved = false`, uuid.UUID(unitID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unresolved audit logs: %w", err)
	}
	return n, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
