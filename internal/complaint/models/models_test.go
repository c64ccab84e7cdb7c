package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newComplaint(t *testing.T, severity int, incident IncidentType) *Complaint {
	t.Helper()
	c, err := NewComplaint(id.ComplaintID(uuid.New()), id.UnitID(uuid.New()), id.StudentID(uuid.New()), "", severity, incident, " leaking tap ", now)
	require.NoError(t, err)
	return c
}

func TestNewComplaint(t *testing.T) {
	t.Run("derives deadline and flag", func(t *testing.T) {
		c := newComplaint(t, 3, IncidentWater)
		assert.Equal(t, now.Add(48*time.Hour), c.SLADeadline)
		assert.True(t, c.IncidentFlag)
		assert.Equal(t, "leaking tap", c.Message)
	})

	t.Run("other is not an incident", func(t *testing.T) {
		c := newComplaint(t, 1, "")
		assert.Equal(t, IncidentOther, c.IncidentType)
		assert.False(t, c.IncidentFlag)
	})

	t.Run("severity out of range", func(t *testing.T) {
		for _, sev := range []int{0, 6} {
			_, err := NewComplaint(id.ComplaintID(uuid.New()), id.UnitID(uuid.New()), id.StudentID(uuid.New()), "", sev, IncidentOther, "", now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "severity %d", sev)
		}
	})

	t.Run("message too long", func(t *testing.T) {
		_, err := NewComplaint(id.ComplaintID(uuid.New()), id.UnitID(uuid.New()), id.StudentID(uuid.New()), "", 2, IncidentOther, strings.Repeat("a", 1201), now)
		assert.Error(t, err)
	})
}

func TestParseIncidentType(t *testing.T) {
	got, err := ParseIncidentType(" Fire ")
	require.NoError(t, err)
	assert.Equal(t, IncidentFire, got)

	_, err = ParseIncidentType("noise")
	assert.Error(t, err)
}

func TestSLAStatus(t *testing.T) {
	t.Run("open then breached", func(t *testing.T) {
		c := newComplaint(t, 2, IncidentOther)
		assert.Equal(t, SLAOpen, c.SLAStatus(now.Add(time.Hour)))
		assert.Equal(t, SLABreached, c.SLAStatus(now.Add(49*time.Hour)))
	})

	t.Run("resolved on time", func(t *testing.T) {
		c := newComplaint(t, 2, IncidentOther)
		require.True(t, c.Resolve(now.Add(48*time.Hour)))
		assert.Equal(t, SLAResolved, c.SLAStatus(now.Add(100*time.Hour)))
		assert.False(t, c.Resolve(now.Add(101*time.Hour)))
	})

	t.Run("resolved late", func(t *testing.T) {
		c := newComplaint(t, 2, IncidentOther)
		c.Resolve(now.Add(50 * time.Hour))
		assert.Equal(t, SLALate, c.SLAStatus(now.Add(60*time.Hour)))
		assert.Equal(t, 2*2+3, c.TrustImpact())
	})
}

func TestView(t *testing.T) {
	c := newComplaint(t, 4, IncidentSafety)
	v := NewView(c, now.Add(47*time.Hour))
	require.NotNil(t, v.SLACountdownMs)
	assert.Equal(t, int64(time.Hour/time.Millisecond), *v.SLACountdownMs)
	assert.Equal(t, -(4*2 + 5), v.TrustImpactHint)

	c.Resolve(now.Add(time.Hour))
	assert.Nil(t, NewView(c, now).SLACountdownMs)
}

func TestSummarize(t *testing.T) {
	onTime := newComplaint(t, 2, "")
	onTime.Resolve(now.Add(10 * time.Hour))
	late := newComplaint(t, 2, "")
	late.Resolve(now.Add(50 * time.Hour))
	open := newComplaint(t, 4, IncidentFire)
	old, err := NewComplaint(id.ComplaintID(uuid.New()), open.UnitID, open.StudentID, "", 1, "", "", now.AddDate(0, 0, -45))
	require.NoError(t, err)

	s := Summarize([]*Complaint{onTime, late, open, old}, now)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.OpenComplaints)
	assert.Equal(t, 1, s.LateComplaints)
	assert.Equal(t, 3, s.ComplaintsLast30Days)
	assert.Equal(t, 4, s.ComplaintsLast60Days)
	require.NotNil(t, s.SLACompliance)
	assert.Equal(t, 50.0, *s.SLACompliance)
	require.NotNil(t, s.AverageResolutionHours)
	assert.Equal(t, 30.0, *s.AverageResolutionHours)

	empty := Summarize(nil, now)
	assert.Nil(t, empty.SLACompliance)
}

func TestFilterMatch(t *testing.T) {
	fire := newComplaint(t, 3, IncidentFire)
	other := newComplaint(t, 1, "")

	f := Filter{IncidentType: IncidentFire}
	assert.True(t, f.Match(fire, now))
	assert.False(t, f.Match(other, now))

	breached := Filter{Status: SLABreached}
	assert.False(t, breached.Match(other, now))
	assert.True(t, breached.Match(other, now.Add(49*time.Hour)))
}
