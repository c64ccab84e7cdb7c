package models

import (
	"sort"
	"strings"

	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

// ChecklistKind selects one of a unit's two self-declared checklists.
type ChecklistKind string

const (
	ChecklistStructural  ChecklistKind = "structural"
	ChecklistOperational ChecklistKind = "operational"
)

func ParseChecklistKind(s string) (ChecklistKind, error) {
	switch k := ChecklistKind(s); k {
	case ChecklistStructural, ChecklistOperational:
		return k, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "checklist kind must be structural or operational")
	}
}

// Checklist item names as they appear on the wire.
const (
	ItemFireExit           = "fire_exit"
	ItemWiringSafe         = "wiring_safe"
	ItemPlumbingSafe       = "plumbing_safe"
	ItemOccupancyCompliant = "occupancy_compliant"

	ItemBedAvailable     = "bed_available"
	ItemWaterAvailable   = "water_available"
	ItemToiletsAvailable = "toilets_available"
	ItemVentilationGood  = "ventilation_good"
)

var checklistItems = map[ChecklistKind][]string{
	ChecklistStructural:  {ItemFireExit, ItemWiringSafe, ItemPlumbingSafe, ItemOccupancyCompliant},
	ChecklistOperational: {ItemBedAvailable, ItemWaterAvailable, ItemToiletsAvailable, ItemVentilationGood},
}

// Checklist is one self-declared baseline. Approved mirrors the unit's
// corresponding approval flag and may only be true while every item is true.
// SelfDeclaration is the landlord's free-text statement and only exists on
// the operational checklist.
type Checklist struct {
	UnitID          id.UnitID       `json:"unit_id"`
	Kind            ChecklistKind   `json:"kind"`
	Items           map[string]bool `json:"items"`
	SelfDeclaration string          `json:"self_declaration,omitempty"`
	Approved        bool            `json:"approved"`
}

// ChecklistPatch is one edit of a checklist. A nil SelfDeclaration means the
// text was not sent.
type ChecklistPatch struct {
	Items           map[string]bool
	SelfDeclaration *string
}

// NewChecklist returns a checklist with every item false.
func NewChecklist(unitID id.UnitID, kind ChecklistKind) *Checklist {
	items := make(map[string]bool, len(checklistItems[kind]))
	for _, name := range checklistItems[kind] {
		items[name] = false
	}
	return &Checklist{UnitID: unitID, Kind: kind, Items: items}
}

// ItemNames lists the items of kind in declaration order.
func ItemNames(kind ChecklistKind) []string {
	return append([]string(nil), checklistItems[kind]...)
}

// Complete reports whether every item is true.
func (c *Checklist) Complete() bool {
	for _, name := range checklistItems[c.Kind] {
		if !c.Items[name] {
			return false
		}
	}
	return true
}

// ValidatePatch rejects empty patches, item names foreign to kind and a
// self-declaration on the structural checklist.
func ValidatePatch(kind ChecklistKind, patch ChecklistPatch) error {
	if len(patch.Items) == 0 && patch.SelfDeclaration == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one "+string(kind)+" checklist field is required")
	}
	if patch.SelfDeclaration != nil && kind != ChecklistOperational {
		return dErrors.New(dErrors.CodeValidation, "self_declaration belongs to the operational checklist")
	}
	fields := patch.Items
	allowed := make(map[string]bool, 4)
	for _, name := range checklistItems[kind] {
		allowed[name] = true
	}
	var unknown []string
	for name := range fields {
		if !allowed[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return dErrors.New(dErrors.CodeValidation, "unknown "+string(kind)+" checklist field: "+unknown[0])
	}
	return nil
}

// Merge overwrites only the provided items and recomputes Approved from
// completeness. Used by administrator edits.
func (c *Checklist) Merge(fields map[string]bool) {
	for name, v := range fields {
		c.Items[name] = v
	}
	c.Approved = c.Complete()
}

// Replace overwrites every item, treating omitted ones as false. A landlord
// declaration never grants approval; it only revokes it when the checklist
// stops being complete.
func (c *Checklist) Replace(fields map[string]bool) {
	for _, name := range checklistItems[c.Kind] {
		c.Items[name] = fields[name]
	}
	c.Approved = c.Approved && c.Complete()
}

// Apply edits c with patch. Administrators merge: only sent items and a sent
// self-declaration change. Landlords replace the whole declaration, so an
// omitted self-declaration is cleared.
func (c *Checklist) Apply(patch ChecklistPatch, merge bool) {
	if merge {
		c.Merge(patch.Items)
		if patch.SelfDeclaration != nil {
			c.SelfDeclaration = strings.TrimSpace(*patch.SelfDeclaration)
		}
		return
	}
	c.Replace(patch.Items)
	if c.Kind == ChecklistOperational {
		c.SelfDeclaration = ""
		if patch.SelfDeclaration != nil {
			c.SelfDeclaration = strings.TrimSpace(*patch.SelfDeclaration)
		}
	}
}

// Checklists is the pair owned by a unit.
type Checklists struct {
	Structural  *Checklist
	Operational *Checklist
}

func NewChecklists(unitID id.UnitID) *Checklists {
	return &Checklists{
		Structural:  NewChecklist(unitID, ChecklistStructural),
		Operational: NewChecklist(unitID, ChecklistOperational),
	}
}

// Of returns the checklist of kind.
func (cs *Checklists) Of(kind ChecklistKind) *Checklist {
	if kind == ChecklistStructural {
		return cs.Structural
	}
	return cs.Operational
}
