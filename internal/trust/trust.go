// Package trust computes a unit's trust score from its complaint history.
//
// The score is a pure function of the complaint set and the evaluation time:
// the same inputs and the same 30 day boundary always produce the same value.
// Callers store the result unconditionally, which discards any manual
// adjustment made since the last computation.
package trust

import "time"

const (
	// BaseScore is the score of a unit with no complaints.
	BaseScore = 75

	// VisibilityThreshold is the minimum score for student-facing listings and
	// for approval.
	VisibilityThreshold = 50

	// PriorityThreshold is the minimum score for the priority band and for
	// random audit sampling.
	PriorityThreshold = 80

	// MaxScore bounds a stored trust score.
	MaxScore = 100

	severityWeight        = 2
	unresolvedPenalty     = 5
	lateResolutionPenalty = 3

	// RecurrenceWindow is the look-back for the recurrence penalty.
	RecurrenceWindow    = 30 * 24 * time.Hour
	recurrenceThreshold = 3
	recurrencePenalty   = 5
)

// Complaint is the scoring view of a complaint.
type Complaint struct {
	Severity    int
	CreatedAt   time.Time
	SLADeadline time.Time
	Resolved    bool
	ResolvedAt  *time.Time
}

// ResolvedLate reports whether the complaint was resolved after its deadline.
func (c Complaint) ResolvedLate() bool {
	return c.Resolved && c.ResolvedAt != nil && c.ResolvedAt.After(c.SLADeadline)
}

// Score returns the trust score for complaints evaluated at now.
func Score(complaints []Complaint, now time.Time) int {
	score := BaseScore
	for _, c := range complaints {
		score -= c.Severity * severityWeight
		switch {
		case !c.Resolved:
			score -= unresolvedPenalty
		case c.ResolvedLate():
			score -= lateResolutionPenalty
		}
	}

	if recent := CountSince(complaints, now, RecurrenceWindow); recent > recurrenceThreshold {
		score -= (recent - recurrenceThreshold) * recurrencePenalty
	}

	return Clamp(score)
}

// CountSince counts complaints created in [now-window, now].
func CountSince(complaints []Complaint, now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	n := 0
	for _, c := range complaints {
		if !c.CreatedAt.Before(cutoff) && !c.CreatedAt.After(now) {
			n++
		}
	}
	return n
}

// Clamp bounds a score to [0, MaxScore].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Band is the student-facing label of a trust score.
type Band string

const (
	BandHidden   Band = "hidden"
	BandStandard Band = "standard"
	BandPriority Band = "priority"
)

// BandOf maps a score to its band.
func BandOf(score int) Band {
	switch {
	case score < VisibilityThreshold:
		return BandHidden
	case score < PriorityThreshold:
		return BandStandard
	default:
		return BandPriority
	}
}
