package store

import (
	"context"
	"sort"
	"sync"

	"lodgeguard/internal/complaint/models"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
)

// InMemoryStore keeps complaints in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu         sync.RWMutex
	complaints map[id.ComplaintID]*models.Complaint
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{complaints: make(map[id.ComplaintID]*models.Complaint)}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.complaints[c.ID] = copyComplaint(c)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[complaintID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyComplaint(c), nil
}

func (s *InMemoryStore) Save(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.complaints[c.ID] = copyComplaint(c)
	return nil
}

// ListByUnit returns a unit's complaints, newest first.
func (s *InMemoryStore) ListByUnit(_ context.Context, unitID id.UnitID) ([]*models.Complaint, error) {
	return s.list(func(c *models.Complaint) bool { return c.UnitID == unitID }), nil
}

// ListByStudent returns the complaints a student filed, newest first.
func (s *InMemoryStore) ListByStudent(_ context.Context, studentID id.StudentID) ([]*models.Complaint, error) {
	return s.list(func(c *models.Complaint) bool { return c.StudentID == studentID }), nil
}

func (s *InMemoryStore) list(keep func(*models.Complaint) bool) []*models.Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Complaint{}
	for _, c := range s.complaints {
		if keep(c) {
			out = append(out, copyComplaint(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func copyComplaint(c *models.Complaint) *models.Complaint {
	cp := *c
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		cp.ResolvedAt = &t
	}
	return &cp
}
