package models

import (
	"fmt"

	"lodgeguard/internal/trust"
)

// IsVisible reports whether students can see the unit in listings.
func (u *Unit) IsVisible() bool {
	return u.Status == UnitStatusApproved &&
		u.StructuralApproved &&
		u.OperationalBaselineApproved &&
		u.TrustScore >= trust.VisibilityThreshold
}

// VisibilityReasons explains why a unit is hidden. It is empty for visible
// units.
func (u *Unit) VisibilityReasons() []string {
	reasons := []string{}
	if u.Status != UnitStatusApproved {
		reasons = append(reasons, "status is "+string(u.Status))
	}
	if !u.StructuralApproved {
		reasons = append(reasons, "structural baseline not approved")
	}
	if !u.OperationalBaselineApproved {
		reasons = append(reasons, "operational baseline not approved")
	}
	if u.TrustScore < trust.VisibilityThreshold {
		reasons = append(reasons, fmt.Sprintf("trust score below visibility threshold (%d)", trust.VisibilityThreshold))
	}
	return reasons
}
