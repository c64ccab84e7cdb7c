package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lodgeguard/internal/occupancy/models"
	"lodgeguard/internal/platform/postgres"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/platform/tx"
)

const activeStudentConstraint = "uq_occupancies_active_student"

// PostgresStore persists occupancies and occupants. The unit row lock taken
// by LockPlacement serializes allocation per unit.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LockPlacement locks the unit row until the ambient transaction ends.
func (s *PostgresStore) LockPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error) {
	return s.findPlacement(ctx, unitID, " FOR UPDATE OF u")
}

func (s *PostgresStore) FindPlacement(ctx context.Context, unitID id.UnitID) (*models.Placement, error) {
	return s.findPlacement(ctx, unitID, "")
}

func (s *PostgresStore) findPlacement(ctx context.Context, unitID id.UnitID, suffix string) (*models.Placement, error) {
	var (
		p                 models.Placement
		unit, corr, owner uuid.UUID
	)
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT u.id, u.corridor_id, u.landlord_id, u.capacity, c.city_code, c.code, u.hostel_code, u.room_number
		FROM units u JOIN corridors c ON c.id = u.corridor_id
		WHERE u.id = $1`+suffix, uuid.UUID(unitID)).
		Scan(&unit, &corr, &owner, &p.Capacity, &p.Location.CityCode, &p.Location.CorridorCode,
			&p.Location.HostelCode, &p.Location.RoomNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find placement: %w", err)
	}
	p.UnitID = id.UnitID(unit)
	p.CorridorID = id.CorridorID(corr)
	p.LandlordID = id.LandlordID(owner)
	return &p, nil
}

const occupancyColumns = `id, unit_id, student_id, start_date, end_date`

func scanOccupancy(row interface{ Scan(...any) error }) (*models.Occupancy, error) {
	var (
		o                  models.Occupancy
		occ, unit, student uuid.UUID
		end                sql.NullTime
	)
	if err := row.Scan(&occ, &unit, &student, &o.StartDate, &end); err != nil {
		return nil, err
	}
	o.ID = id.OccupancyID(occ)
	o.UnitID = id.UnitID(unit)
	o.StudentID = id.StudentID(student)
	o.StartDate = o.StartDate.UTC()
	if end.Valid {
		t := end.Time.UTC()
		o.EndDate = &t
	}
	return &o, nil
}

func (s *PostgresStore) FindActiveByStudent(ctx context.Context, studentID id.StudentID) (*models.Occupancy, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+occupancyColumns+` FROM occupancies WHERE student_id = $1 AND end_date IS NULL`,
		uuid.UUID(studentID))
	o, err := scanOccupancy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active occupancy: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) FindOccupancy(ctx context.Context, occupancyID id.OccupancyID) (*models.Occupancy, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+occupancyColumns+` FROM occupancies WHERE id = $1`, uuid.UUID(occupancyID))
	o, err := scanOccupancy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find occupancy: %w", err)
	}
	return o, nil
}

const occupantColumns = `id, public_id, occupancy_id, unit_id, student_id, city_code, corridor_code,
	hostel_code, room_number, occupant_index, active`

func scanOccupant(row interface{ Scan(...any) error }) (*models.Occupant, error) {
	var (
		o                            models.Occupant
		occupant, occ, unit, student uuid.UUID
	)
	if err := row.Scan(&occupant, &o.PublicID, &occ, &unit, &student, &o.CityCode, &o.CorridorCode,
		&o.HostelCode, &o.RoomNumber, &o.OccupantIndex, &o.Active); err != nil {
		return nil, err
	}
	o.ID = id.OccupantID(occupant)
	o.OccupancyID = id.OccupancyID(occ)
	o.UnitID = id.UnitID(unit)
	o.StudentID = id.StudentID(student)
	return &o, nil
}

func (s *PostgresStore) ListActiveOccupants(ctx context.Context, unitID id.UnitID, roomNumber int) ([]*models.Occupant, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx,
		`SELECT `+occupantColumns+` FROM occupants
		WHERE unit_id = $1 AND room_number = $2 AND active
		ORDER BY occupant_index`, uuid.UUID(unitID), roomNumber)
	if err != nil {
		return nil, fmt.Errorf("list occupants: %w", err)
	}
	defer rows.Close()

	out := []*models.Occupant{}
	for rows.Next() {
		o, err := scanOccupant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occupant: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list occupants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindActiveOccupant(ctx context.Context, publicID string) (*models.Occupant, error) {
	row := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+occupantColumns+` FROM occupants WHERE public_id = $1 AND active`, publicID)
	o, err := scanOccupant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find occupant: %w", err)
	}
	return o, nil
}

// Create inserts the occupancy and its occupant. A violated active-student
// index maps to ErrStudentActive; any other uniqueness violation is
// ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, occ *models.Occupancy, occupant *models.Occupant) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		if _, err := q.ExecContext(ctx,
			`INSERT INTO occupancies (`+occupancyColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			uuid.UUID(occ.ID), uuid.UUID(occ.UnitID), uuid.UUID(occ.StudentID), occ.StartDate, occ.EndDate); err != nil {
			return uniqueness(err, "insert occupancy")
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO occupants (`+occupantColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.UUID(occupant.ID), occupant.PublicID, uuid.UUID(occupant.OccupancyID), uuid.UUID(occupant.UnitID),
			uuid.UUID(occupant.StudentID), occupant.CityCode, occupant.CorridorCode, occupant.HostelCode,
			occupant.RoomNumber, occupant.OccupantIndex, occupant.Active); err != nil {
			return uniqueness(err, "insert occupant")
		}
		return nil
	})
}

func uniqueness(err error, op string) error {
	if !postgres.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if postgres.ConstraintName(err) == activeStudentConstraint {
		return ErrStudentActive
	}
	return sentinel.ErrConflict
}

// End closes the occupancy and retires its occupants in one transaction.
func (s *PostgresStore) End(ctx context.Context, occ *models.Occupancy) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		res, err := q.ExecContext(ctx,
			`UPDATE occupancies SET end_date = $2 WHERE id = $1`, uuid.UUID(occ.ID), occ.EndDate)
		if err != nil {
			return fmt.Errorf("end occupancy: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("end occupancy: %w", err)
		} else if n == 0 {
			return sentinel.ErrNotFound
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE occupants SET active = false WHERE occupancy_id = $1`, uuid.UUID(occ.ID)); err != nil {
			return fmt.Errorf("retire occupants: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) CountActiveByUnit(ctx context.Context, unitID id.UnitID) (int, error) {
	var n int
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM occupancies WHERE unit_id = $1 AND end_date IS NULL`, uuid.UUID(unitID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count occupancies: %w", err)
	}
	return n, nil
}
