package store

import (
	"context"
	"maps"
	"sort"
	"sync"

	"lodgeguard/internal/governance/models"
	id "lodgeguard/pkg/domain"
	"lodgeguard/pkg/platform/sentinel"
)

// InMemoryStore keeps units and their dependents in maps. It does not lock
// units on its own; callers serialize per unit through MemoryTx.
type InMemoryStore struct {
	mu         sync.RWMutex
	units      map[id.UnitID]*models.Unit
	checklists map[id.UnitID]*models.Checklists
	media      map[id.UnitID][]*models.Media
	auditLogs  map[id.AuditLogID]*models.AuditLog
	logsByUnit map[id.UnitID][]id.AuditLogID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		units:      make(map[id.UnitID]*models.Unit),
		checklists: make(map[id.UnitID]*models.Checklists),
		media:      make(map[id.UnitID][]*models.Media),
		auditLogs:  make(map[id.AuditLogID]*models.AuditLog),
		logsByUnit: make(map[id.UnitID][]id.AuditLogID),
	}
}

func (s *InMemoryStore) CreateUnit(_ context.Context, unit *models.Unit, checklists *models.Checklists) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[unit.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, u := range s.units {
		if u.CorridorID == unit.CorridorID && u.HostelCode == unit.HostelCode && u.RoomNumber == unit.RoomNumber {
			return sentinel.ErrConflict
		}
	}
	s.units[unit.ID] = copyUnit(unit)
	s.checklists[unit.ID] = copyChecklists(checklists)
	return nil
}

func (s *InMemoryStore) FindUnit(_ context.Context, unitID id.UnitID) (*models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[unitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyUnit(u), nil
}

// LockUnit is FindUnit here; the per-unit section is held by MemoryTx.
func (s *InMemoryStore) LockUnit(ctx context.Context, unitID id.UnitID) (*models.Unit, error) {
	return s.FindUnit(ctx, unitID)
}

func (s *InMemoryStore) SaveUnit(_ context.Context, unit *models.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[unit.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.units[unit.ID] = copyUnit(unit)
	return nil
}

// ListUnitsByCorridor returns units ordered by creation time.
func (s *InMemoryStore) ListUnitsByCorridor(_ context.Context, corridorID id.CorridorID) ([]*models.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Unit
	for _, u := range s.units {
		if u.CorridorID == corridorID {
			out = append(out, copyUnit(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) FindChecklists(_ context.Context, unitID id.UnitID) (*models.Checklists, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.checklists[unitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyChecklists(cs), nil
}

func (s *InMemoryStore) SaveChecklist(_ context.Context, c *models.Checklist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.checklists[c.UnitID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.Kind == models.ChecklistStructural {
		cs.Structural = copyChecklist(c)
	} else {
		cs.Operational = copyChecklist(c)
	}
	return nil
}

func (s *InMemoryStore) AddMedia(_ context.Context, m *models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[m.UnitID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *m
	s.media[m.UnitID] = append(s.media[m.UnitID], &cp)
	return nil
}

func (s *InMemoryStore) ListMedia(_ context.Context, unitID id.UnitID) ([]*models.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Media, 0, len(s.media[unitID]))
	for _, m := range s.media[unitID] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) LockMedia(_ context.Context, unitID id.UnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.media[unitID] {
		m.Locked = true
	}
	return nil
}

func (s *InMemoryStore) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[log.UnitID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.auditLogs[log.ID]; ok {
		return sentinel.ErrConflict
	}
	s.auditLogs[log.ID] = copyAuditLog(log)
	s.logsByUnit[log.UnitID] = append(s.logsByUnit[log.UnitID], log.ID)
	return nil
}

func (s *InMemoryStore) FindAuditLog(_ context.Context, logID id.AuditLogID) (*models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.auditLogs[logID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyAuditLog(l), nil
}

func (s *InMemoryStore) SaveAuditLog(_ context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auditLogs[log.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.auditLogs[log.ID] = copyAuditLog(log)
	return nil
}

// ListAuditLogs returns the unit's logs newest first.
func (s *InMemoryStore) ListAuditLogs(_ context.Context, unitID id.UnitID) ([]*models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.logsByUnit[unitID]
	out := make([]*models.AuditLog, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, copyAuditLog(s.auditLogs[ids[i]]))
	}
	return out, nil
}

func (s *InMemoryStore) CountUnresolvedAuditLogs(_ context.Context, unitID id.UnitID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, logID := range s.logsByUnit[unitID] {
		if !s.auditLogs[logID].Resolved {
			n++
		}
	}
	return n, nil
}

func copyUnit(u *models.Unit) *models.Unit {
	cp := *u
	return &cp
}

func copyChecklist(c *models.Checklist) *models.Checklist {
	cp := *c
	cp.Items = maps.Clone(c.Items)
	return &cp
}

func copyChecklists(cs *models.Checklists) *models.Checklists {
	return &models.Checklists{
		Structural:  copyChecklist(cs.Structural),
		Operational: copyChecklist(cs.Operational),
	}
}

func copyAuditLog(l *models.AuditLog) *models.AuditLog {
	cp := *l
	if l.CorrectiveDeadline != nil {
		d := *l.CorrectiveDeadline
		cp.CorrectiveDeadline = &d
	}
	if l.ResolvedAt != nil {
		r := *l.ResolvedAt
		cp.ResolvedAt = &r
	}
	return &cp
}
