package models

import (
	"strings"

	dErrors "lodgeguard/pkg/domain-errors"
)

// UnitStatus is the listing lifecycle state of a unit.
type UnitStatus string

const (
	UnitStatusDraft       UnitStatus = "draft"
	UnitStatusSubmitted   UnitStatus = "submitted"
	UnitStatusAdminReview UnitStatus = "admin_review"
	UnitStatusApproved    UnitStatus = "approved"
	UnitStatusRejected    UnitStatus = "rejected"
	UnitStatusSuspended   UnitStatus = "suspended"
	UnitStatusArchived    UnitStatus = "archived"
)

// transitions is the guard table. A status missing from a row cannot be
// reached from that state. archived has no outgoing edges.
var transitions = map[UnitStatus]map[UnitStatus]bool{
	UnitStatusDraft: {
		UnitStatusSubmitted: true,
		UnitStatusRejected:  true,
		UnitStatusSuspended: true,
		UnitStatusArchived:  true,
	},
	UnitStatusSubmitted: {
		UnitStatusAdminReview: true,
		UnitStatusApproved:    true,
		UnitStatusRejected:    true,
		UnitStatusSuspended:   true,
		UnitStatusArchived:    true,
	},
	UnitStatusAdminReview: {
		UnitStatusApproved:  true,
		UnitStatusRejected:  true,
		UnitStatusSuspended: true,
		UnitStatusArchived:  true,
	},
	UnitStatusApproved: {
		UnitStatusAdminReview: true,
		UnitStatusRejected:    true,
		UnitStatusSuspended:   true,
		UnitStatusArchived:    true,
	},
	UnitStatusRejected: {
		UnitStatusAdminReview: true,
		UnitStatusSuspended:   true,
		UnitStatusArchived:    true,
	},
	UnitStatusSuspended: {
		UnitStatusAdminReview: true,
		UnitStatusApproved:    true,
		UnitStatusRejected:    true,
		UnitStatusArchived:    true,
	},
	UnitStatusArchived: {},
}

// ParseUnitStatus validates a status from external input.
func ParseUnitStatus(s string) (UnitStatus, error) {
	status := UnitStatus(strings.TrimSpace(s))
	if _, ok := transitions[status]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "invalid unit status")
	}
	return status, nil
}

func (s UnitStatus) String() string { return string(s) }

// CanTransitionTo reports whether the guard table has an edge s → target.
func (s UnitStatus) CanTransitionTo(target UnitStatus) bool {
	return transitions[s][target]
}

// IsTerminal reports whether no transition leaves s.
func (s UnitStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}
