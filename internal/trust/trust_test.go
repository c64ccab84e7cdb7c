package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ScoreSuite struct {
	suite.Suite
	now time.Time
}

func TestScoreSuite(t *testing.T) {
	suite.Run(t, new(ScoreSuite))
}

func (s *ScoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func (s *ScoreSuite) complaint(severity int, age time.Duration) Complaint {
	created := s.now.Add(-age)
	return Complaint{Severity: severity, CreatedAt: created, SLADeadline: created.Add(48 * time.Hour)}
}

func (s *ScoreSuite) resolvedAfter(c Complaint, after time.Duration) Complaint {
	at := c.CreatedAt.Add(after)
	c.Resolved = true
	c.ResolvedAt = &at
	return c
}

func (s *ScoreSuite) TestBase() {
	s.Equal(BaseScore, Score(nil, s.now))
}

func (s *ScoreSuite) TestPerComplaintPenalties() {
	s.Run("unresolved and on-time resolved", func() {
		complaints := []Complaint{
			s.complaint(3, 100*24*time.Hour),
			s.resolvedAfter(s.complaint(2, 100*24*time.Hour), time.Hour),
		}
		s.Equal(75-6-5-4, Score(complaints, s.now))
		s.Equal(60, Score(complaints, s.now))
	})

	s.Run("late resolution replaces unresolved penalty", func() {
		late := s.resolvedAfter(s.complaint(1, 100*24*time.Hour), 72*time.Hour)
		s.Equal(75-2-3, Score([]Complaint{late}, s.now))
	})

	s.Run("resolved exactly at deadline is on time", func() {
		c := s.resolvedAfter(s.complaint(1, 100*24*time.Hour), 48*time.Hour)
		s.Equal(75-2, Score([]Complaint{c}, s.now))
	})
}

func (s *ScoreSuite) TestRecurrencePenalty() {
	s.Run("four recent complaints add one step", func() {
		var complaints []Complaint
		for range 4 {
			complaints = append(complaints, s.resolvedAfter(s.complaint(1, 24*time.Hour), time.Hour))
		}
		s.Equal(75-4*2-(4-3)*5, Score(complaints, s.now))
	})

	s.Run("three recent complaints add nothing", func() {
		var complaints []Complaint
		for range 3 {
			complaints = append(complaints, s.resolvedAfter(s.complaint(1, 24*time.Hour), time.Hour))
		}
		s.Equal(75-3*2, Score(complaints, s.now))
	})

	s.Run("old complaints do not count as recent", func() {
		var complaints []Complaint
		for range 5 {
			complaints = append(complaints, s.resolvedAfter(s.complaint(1, 31*24*time.Hour), time.Hour))
		}
		s.Equal(75-5*2, Score(complaints, s.now))
	})
}

func (s *ScoreSuite) TestClampsAtZero() {
	var complaints []Complaint
	for range 12 {
		complaints = append(complaints, s.complaint(5, time.Hour))
	}
	s.Equal(0, Score(complaints, s.now))
}

func (s *ScoreSuite) TestIdempotent() {
	complaints := []Complaint{
		s.complaint(4, 2*time.Hour),
		s.resolvedAfter(s.complaint(2, 10*24*time.Hour), 60*time.Hour),
		s.complaint(1, 40*24*time.Hour),
	}
	first := Score(complaints, s.now)
	s.Equal(first, Score(complaints, s.now))
	s.Equal(first, Score(complaints, s.now.Add(time.Minute)))
}

func (s *ScoreSuite) TestResolvingNeverLowersContribution() {
	for _, delay := range []time.Duration{time.Hour, 47 * time.Hour, 49 * time.Hour, 200 * time.Hour} {
		open := s.complaint(3, 20*24*time.Hour)
		before := Score([]Complaint{open}, s.now)
		resolved := Score([]Complaint{s.resolvedAfter(open, delay)}, s.now)
		s.GreaterOrEqual(resolved, before, "resolved after %s", delay)
	}
}

func TestBandOf(t *testing.T) {
	assert.Equal(t, BandHidden, BandOf(0))
	assert.Equal(t, BandHidden, BandOf(49))
	assert.Equal(t, BandStandard, BandOf(50))
	assert.Equal(t, BandStandard, BandOf(79))
	assert.Equal(t, BandPriority, BandOf(80))
	assert.Equal(t, BandPriority, BandOf(100))
}
