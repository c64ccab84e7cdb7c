package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lodgeguard/internal/directory/models"
	"lodgeguard/internal/platform/postgres"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
	"lodgeguard/pkg/platform/tx"
)

// PostgresStore persists directory records in Postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateCorridor(ctx context.Context, c *models.Corridor) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO corridors (id, name, code, city_code, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(c.ID), c.Name, c.Code, c.CityCode, c.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert corridor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindCorridor(ctx context.Context, corridorID id.CorridorID) (*models.Corridor, error) {
	var (
		c   models.Corridor
		raw uuid.UUID
	)
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, code, city_code, created_at FROM corridors WHERE id = $1
	`, uuid.UUID(corridorID)).Scan(&raw, &c.Name, &c.Code, &c.CityCode, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find corridor: %w", err)
	}
	c.ID = id.CorridorID(raw)
	return &c, nil
}

func (s *PostgresStore) CreateStudent(ctx context.Context, st *models.Student) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO students (id, corridor_id, created_at) VALUES ($1, $2, $3)
	`, uuid.UUID(st.ID), uuid.UUID(st.CorridorID), st.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindStudent(ctx context.Context, studentID id.StudentID) (*models.Student, error) {
	var (
		st               models.Student
		raw, corridorRaw uuid.UUID
	)
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, corridor_id, created_at FROM students WHERE id = $1
	`, uuid.UUID(studentID)).Scan(&raw, &corridorRaw, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	st.ID = id.StudentID(raw)
	st.CorridorID = id.CorridorID(corridorRaw)
	return &st, nil
}

func (s *PostgresStore) CreateLandlord(ctx context.Context, l *models.Landlord) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO landlords (id, created_at) VALUES ($1, $2)
	`, uuid.UUID(l.ID), l.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert landlord: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindLandlord(ctx context.Context, landlordID id.LandlordID) (*models.Landlord, error) {
	var (
		l   models.Landlord
		raw uuid.UUID
	)
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, created_at FROM landlords WHERE id = $1
	`, uuid.UUID(landlordID)).Scan(&raw, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find landlord: %w", err)
	}
	l.ID = id.LandlordID(raw)
	return &l, nil
}
