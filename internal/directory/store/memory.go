// Package store persists directory records.
package store

import (
	"context"
	"sync"

	"lodgeguard/internal/directory/models"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
)

// InMemoryStore keeps directory records in maps.
type InMemoryStore struct {
	mu        sync.RWMutex
	corridors map[id.CorridorID]*models.Corridor
	students  map[id.StudentID]*models.Student
	landlords map[id.LandlordID]*models.Landlord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		corridors: make(map[id.CorridorID]*models.Corridor),
		students:  make(map[id.StudentID]*models.Student),
		landlords: make(map[id.LandlordID]*models.Landlord),
	}
}

func (s *InMemoryStore) CreateCorridor(_ context.Context, c *models.Corridor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.corridors[c.ID]; ok {
		return sentinel.ErrConflict
	}
	// city and corridor codes prefix occupant ids, so the pair is unique
	for _, other := range s.corridors {
		if other.CityCode == c.CityCode && other.Code == c.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *c
	s.corridors[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindCorridor(_ context.Context, corridorID id.CorridorID) (*models.Corridor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.corridors[corridorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) CreateStudent(_ context.Context, st *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[st.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.corridors[st.CorridorID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *st
	s.students[st.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindStudent(_ context.Context, studentID id.StudentID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[studentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *InMemoryStore) CreateLandlord(_ context.Context, l *models.Landlord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.landlords[l.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *l
	s.landlords[l.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindLandlord(_ context.Context, landlordID id.LandlordID) (*models.Landlord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.landlords[landlordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *l
	return &cp, nil
}
