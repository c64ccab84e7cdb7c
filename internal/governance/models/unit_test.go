package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

type UnitSuite struct {
	suite.Suite
	now time.Time
}

func TestUnitSuite(t *testing.T) {
	suite.Run(t, new(UnitSuite))
}

func (s *UnitSuite) SetupTest() {
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
}

func (s *UnitSuite) newUnit(status UnitStatus) *Unit {
	u, err := NewUnit(id.UnitID(uuid.New()), id.CorridorID(uuid.New()), id.LandlordID(uuid.New()), 2, 45, 45, s.now)
	s.Require().NoError(err)
	u.Status = status
	return u
}

func (s *UnitSuite) approvable(status UnitStatus) *Unit {
	u := s.newUnit(status)
	u.StructuralApproved = true
	u.OperationalBaselineApproved = true
	return u
}

func (s *UnitSuite) TestNewUnit() {
	s.Run("starts in draft at base trust", func() {
		u := s.newUnit(UnitStatusDraft)
		s.Equal(UnitStatusDraft, u.Status)
		s.Equal(75, u.TrustScore)
		s.False(u.AuditRequired)
	})

	s.Run("rejects zero capacity", func() {
		_, err := NewUnit(id.UnitID(uuid.New()), id.CorridorID(uuid.New()), id.LandlordID(uuid.New()), 0, 1, 1, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects four digit room number", func() {
		_, err := NewUnit(id.UnitID(uuid.New()), id.CorridorID(uuid.New()), id.LandlordID(uuid.New()), 1, 1, 1000, s.now)
		s.Error(err)
	})
}

func (s *UnitSuite) TestApprovalGate() {
	s.Run("both flags required", func() {
		u := s.newUnit(UnitStatusAdminReview)
		u.StructuralApproved = true
		s.True(dErrors.HasCode(u.TransitionTo(UnitStatusApproved, s.now), dErrors.CodeValidation))
		s.Equal(UnitStatusAdminReview, u.Status)
	})

	s.Run("trust below threshold", func() {
		u := s.approvable(UnitStatusAdminReview)
		u.TrustScore = 49
		s.Error(u.TransitionTo(UnitStatusApproved, s.now))
	})

	s.Run("audit required blocks approval", func() {
		u := s.approvable(UnitStatusSubmitted)
		u.AuditRequired = true
		s.Error(u.TransitionTo(UnitStatusApproved, s.now))
	})

	s.Run("gate satisfied", func() {
		u := s.approvable(UnitStatusSubmitted)
		u.TrustScore = 50
		s.NoError(u.TransitionTo(UnitStatusApproved, s.now))
		s.True(u.IsVisible())
	})
}

func (s *UnitSuite) TestGuardTable() {
	s.Run("draft cannot jump to approved", func() {
		u := s.approvable(UnitStatusDraft)
		s.Error(u.TransitionTo(UnitStatusApproved, s.now))
	})

	s.Run("archived is terminal", func() {
		u := s.newUnit(UnitStatusArchived)
		for _, target := range []UnitStatus{UnitStatusDraft, UnitStatusAdminReview, UnitStatusSuspended} {
			s.Error(u.TransitionTo(target, s.now), target)
		}
		s.True(UnitStatusArchived.IsTerminal())
	})

	s.Run("same status is a no-op", func() {
		u := s.newUnit(UnitStatusSuspended)
		s.NoError(u.TransitionTo(UnitStatusSuspended, s.now))
	})

	s.Run("rejected clears flags", func() {
		u := s.approvable(UnitStatusAdminReview)
		s.NoError(u.TransitionTo(UnitStatusRejected, s.now))
		s.False(u.StructuralApproved)
		s.False(u.OperationalBaselineApproved)
	})
}

func (s *UnitSuite) TestRequireAudit() {
	s.Run("suspends approved unit", func() {
		u := s.approvable(UnitStatusApproved)
		u.RequireAudit(s.now)
		s.True(u.AuditRequired)
		s.Equal(UnitStatusSuspended, u.Status)
	})

	s.Run("archived stays archived", func() {
		u := s.newUnit(UnitStatusArchived)
		u.RequireAudit(s.now)
		s.True(u.AuditRequired)
		s.Equal(UnitStatusArchived, u.Status)
	})
}

func (s *UnitSuite) TestClearAudit() {
	s.Run("reopens when gate holds", func() {
		u := s.approvable(UnitStatusSuspended)
		u.AuditRequired = true
		s.True(u.ClearAudit(true, s.now))
		s.Equal(UnitStatusApproved, u.Status)
		s.False(u.AuditRequired)
	})

	s.Run("keeps status without flags", func() {
		u := s.newUnit(UnitStatusSuspended)
		u.AuditRequired = true
		s.False(u.ClearAudit(true, s.now))
		s.Equal(UnitStatusSuspended, u.Status)
		s.False(u.AuditRequired)
	})

	s.Run("reopen not requested", func() {
		u := s.approvable(UnitStatusSuspended)
		s.False(u.ClearAudit(false, s.now))
		s.Equal(UnitStatusSuspended, u.Status)
	})
}

func (s *UnitSuite) TestDemotion() {
	u := s.approvable(UnitStatusApproved)
	u.SetApproval(ChecklistOperational, false, s.now)
	s.Equal(UnitStatusAdminReview, u.Status)
	s.Equal([]string{"status is admin_review", "operational baseline not approved"}, u.VisibilityReasons())
}

func (s *UnitSuite) TestTrustDropDemotes() {
	u := s.approvable(UnitStatusApproved)
	u.ApplyTrustScore(49, s.now)
	s.Equal(UnitStatusAdminReview, u.Status)
}

func (s *UnitSuite) TestPenalty() {
	u := s.newUnit(UnitStatusApproved)
	u.TrustScore = 5
	u.ApplyPenalty(8, s.now)
	s.Equal(0, u.TrustScore)
	s.Equal(1, u.FalseDeclarationCount)
}

func (s *UnitSuite) TestVisibilityReasons() {
	u := s.newUnit(UnitStatusDraft)
	u.TrustScore = 40
	s.Equal([]string{
		"status is draft",
		"structural baseline not approved",
		"operational baseline not approved",
		"trust score below visibility threshold (50)",
	}, u.VisibilityReasons())
	s.False(u.IsVisible())
}

func (s *UnitSuite) TestMaxOccupants() {
	u := s.newUnit(UnitStatusApproved)
	u.Capacity = 12
	s.Equal(9, u.MaxOccupants())
}
