// Package part models the unit of work: a part to install, repair, salvage,
// scrap or acquire.
package part

import (
	"strings"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// ID is a roster handle for a part.
type ID string

// Kind is what doing the task means.
type Kind string

const (
	KindInstall Kind = "install"
	KindRepair  Kind = "repair"
	KindSalvage Kind = "salvage"
	KindScrap   Kind = "scrap"
	KindAcquire Kind = "acquire"
)

// State is where the task is in its lifecycle.
type State string

const (
	StateUnassigned State = "unassigned"
	StateInProgress State = "in-progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateScrapped   State = "scrapped"
	StateDestroyed  State = "destroyed"
	// StateMissing marks a placeholder for a part no longer on its unit.
	StateMissing State = "missing"
)

// Terminal reports whether no further work can happen in this state.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateScrapped, StateDestroyed:
		return true
	default:
		return false
	}
}

// Location is a mech body location tag.
type Location string

const (
	LocationNone        Location = ""
	LocationHead        Location = "HD"
	LocationCenterTorso Location = "CT"
	LocationLeftTorso   Location = "LT"
	LocationRightTorso  Location = "RT"
	LocationLeftArm     Location = "LA"
	LocationRightArm    Location = "RA"
	LocationLeftLeg     Location = "LL"
	LocationRightLeg    Location = "RL"
	LocationCenterLeg   Location = "CL"
	// LocationAll is the filter value that matches every task.
	LocationAll Location = "All"
)

// ParseLocation normalizes a location tag.
func ParseLocation(value string) (Location, bool) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, string(LocationAll)) {
		return LocationAll, true
	}
	loc := Location(strings.ToUpper(value))
	switch loc {
	case LocationNone, LocationHead, LocationCenterTorso, LocationLeftTorso, LocationRightTorso,
		LocationLeftArm, LocationRightArm, LocationLeftLeg, LocationRightLeg, LocationCenterLeg:
		return loc, true
	default:
		return LocationNone, false
	}
}

// Class is the closed set of component families.
type Class string

const (
	ClassGeneric   Class = "generic"
	ClassArmor     Class = "armor"
	ClassStructure Class = "structure"
	ClassEngine    Class = "engine"
	ClassGyro      Class = "gyro"
	ClassActuator  Class = "actuator"
	ClassWeapon    Class = "weapon"
	ClassAmmo      Class = "ammo"
	ClassHeatsink  Class = "heatsink"
)

// EngineVariant distinguishes engines whose shielding spills into the side
// torsos.
type EngineVariant string

const (
	EngineStandard EngineVariant = "standard"
	EngineCompact  EngineVariant = "compact"
	EngineXL       EngineVariant = "xl"
	EngineLight    EngineVariant = "light"
	EngineXXL      EngineVariant = "xxl"
)

// SideTorsos reports whether the engine occupies the side torsos.
func (v EngineVariant) SideTorsos() bool {
	switch v {
	case EngineXL, EngineLight, EngineXXL:
		return true
	default:
		return false
	}
}

// Component is a tagged variant. Engine is only meaningful for ClassEngine.
type Component struct {
	Class  Class
	Engine EngineVariant
}

// Engine returns an engine component.
func Engine(variant EngineVariant) Component {
	return Component{Class: ClassEngine, Engine: variant}
}

// Gyro returns a gyro component.
func Gyro() Component {
	return Component{Class: ClassGyro}
}

// Generic returns a component with no location rules.
func Generic(class Class) Component {
	return Component{Class: class}
}

// Part is one task. UnitID is empty for warehouse stock.
type Part struct {
	ID        ID
	Name      string
	Kind      Kind
	Mode      Mode
	Location  Location
	Component Component
	Category  personnel.Category
	MinSkill  personnel.Tier

	BaseMinutes int
	Difficulty  int
	Quantity    int
	Cost        int64
	Essential   bool
	Residual    bool

	State        State
	UnitID       unit.ID
	AssignedTech personnel.ID
	MinutesSpent int
}

// NeedsFixing reports whether the task installs or repairs something not yet
// done.
func (p Part) NeedsFixing() bool {
	if p.Kind != KindInstall && p.Kind != KindRepair {
		return false
	}
	return !p.State.Terminal()
}

// IsSalvaging reports whether the task removes the part from its unit.
func (p Part) IsSalvaging() bool {
	if p.Kind != KindSalvage && p.Kind != KindScrap {
		return false
	}
	return !p.State.Terminal()
}

// NeedsWork reports whether a technician can do anything with the task.
func (p Part) NeedsWork() bool {
	return p.NeedsFixing() || p.IsSalvaging()
}

// IsAcquisition reports whether the task is a purchase request.
func (p Part) IsAcquisition() bool {
	return p.Kind == KindAcquire && !p.State.Terminal()
}

// InWarehouse reports whether the part is loose stock.
func (p Part) InWarehouse() bool {
	return p.UnitID == ""
}

// IsSpare reports whether the part is finished stock ready to install.
func (p Part) IsSpare() bool {
	return p.InWarehouse() && p.Kind != KindAcquire && p.State == StateCompleted && p.Quantity > 0
}

// WorkMinutes returns the minutes still needed under the current mode.
func (p Part) WorkMinutes() int {
	remaining := p.Mode.Minutes(p.BaseMinutes) - p.MinutesSpent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clone returns a fresh unassigned copy with a single unit of quantity and
// no identity.
func (p Part) Clone() Part {
	c := p
	c.ID = ""
	c.Quantity = 1
	c.AssignedTech = ""
	c.MinutesSpent = 0
	if c.State == StateInProgress {
		c.State = StateUnassigned
	}
	return c
}
