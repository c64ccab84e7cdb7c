package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lodgeguard/internal/governance/models"
)

type EvaluateSuite struct {
	suite.Suite
	now time.Time
}

func TestEvaluateSuite(t *testing.T) {
	suite.Run(t, new(EvaluateSuite))
}

func (s *EvaluateSuite) SetupTest() {
	s.now = time.Date(2026, 5, 20, 8, 0, 0, 0, time.UTC)
}

func (s *EvaluateSuite) open(age time.Duration) Complaint {
	created := s.now.Add(-age)
	return Complaint{CreatedAt: created, SLADeadline: created.Add(48 * time.Hour)}
}

func (s *EvaluateSuite) late(age time.Duration) Complaint {
	c := s.open(age)
	at := c.SLADeadline.Add(time.Hour)
	c.Resolved = true
	c.ResolvedAt = &at
	return c
}

func (s *EvaluateSuite) repeat(c Complaint, n int) []Complaint {
	out := make([]Complaint, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func (s *EvaluateSuite) TestDensity() {
	s.Run("four recent complaints do not fire", func() {
		r := Evaluate(s.repeat(s.open(24*time.Hour), 4), s.now)
		s.False(r.Any())
		s.Equal(4, r.RecentCount)
	})

	s.Run("fifth complaint fires", func() {
		r := Evaluate(s.repeat(s.open(24*time.Hour), 5), s.now)
		s.True(r.Density)
		trigger, reason, ok := r.Primary()
		s.True(ok)
		s.Equal(models.TriggerComplaintDensity, trigger)
		s.Equal(ReasonDensity, reason)
	})

	s.Run("complaints outside window ignored", func() {
		r := Evaluate(s.repeat(s.open(61*24*time.Hour), 6), s.now)
		s.False(r.Density)
	})
}

func (s *EvaluateSuite) TestIncident() {
	c := s.open(time.Hour)
	c.IncidentFlag = true
	r := Evaluate([]Complaint{c}, s.now)
	s.True(r.Incident)
	trigger, _, _ := r.Primary()
	s.Equal(models.TriggerIncident, trigger)
}

func (s *EvaluateSuite) TestSLABreach() {
	s.Run("three late resolutions fire", func() {
		r := Evaluate(s.repeat(s.late(10*24*time.Hour), 3), s.now)
		s.True(r.SLABreach)
		s.False(r.Density)
	})

	s.Run("open overdue complaints are not breaches", func() {
		r := Evaluate(s.repeat(s.open(10*24*time.Hour), 3), s.now)
		s.False(r.SLABreach)
	})

	s.Run("old late resolutions ignored", func() {
		r := Evaluate(s.repeat(s.late(90*24*time.Hour), 3), s.now)
		s.Equal(0, r.BreachCount)
	})
}

func (s *EvaluateSuite) TestPriority() {
	incident := s.open(time.Hour)
	incident.IncidentFlag = true
	complaints := append(s.repeat(s.late(5*24*time.Hour), 4), incident)

	r := Evaluate(complaints, s.now)
	s.True(r.Density)
	s.True(r.Incident)
	s.True(r.SLABreach)
	trigger, _, _ := r.Primary()
	s.Equal(models.TriggerComplaintDensity, trigger)

	r.Density = false
	trigger, _, _ = r.Primary()
	s.Equal(models.TriggerIncident, trigger)
}

func (s *EvaluateSuite) TestDecide() {
	fired := Result{Incident: true}

	s.Run("escalates on rising edge", func() {
		d := Decide(false, fired)
		s.True(d.AuditRequired)
		s.True(d.Escalate)
		s.Equal(ReasonIncident, d.Reason)
	})

	s.Run("sticky flag does not escalate again", func() {
		d := Decide(true, fired)
		s.True(d.AuditRequired)
		s.False(d.Escalate)
	})

	s.Run("flag survives a quiet evaluation", func() {
		d := Decide(true, Result{})
		s.True(d.AuditRequired)
	})

	s.Run("nothing to do", func() {
		s.Equal(Decision{}, Decide(false, Result{}))
	})
}
