// Package unit models the combat units that own repair work.
package unit

import (
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
)

// ID is a roster handle for a unit.
type ID string

// Type is the unit chassis family.
type Type string

const (
	TypeMech        Type = "mech"
	TypeVehicle     Type = "vehicle"
	TypeAero        Type = "aero"
	TypeBattleArmor Type = "battle-armor"
	TypeLargeVessel Type = "large-vessel"
)

// Category returns the tech skill family that works on this type.
func (t Type) Category() personnel.Category {
	switch t {
	case TypeMech:
		return personnel.CategoryMech
	case TypeVehicle:
		return personnel.CategoryMechanic
	case TypeAero:
		return personnel.CategoryAero
	case TypeBattleArmor:
		return personnel.CategoryBattleArmor
	case TypeLargeVessel:
		return personnel.CategoryVessel
	default:
		return ""
	}
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t.Category() != ""
}

// Unit is a combat unit in the campaign.
type Unit struct {
	ID   ID
	Name string
	Type Type

	TechID     personnel.ID
	EngineerID personnel.ID
	// SelfCrewed units are maintained and repaired by their own crew.
	SelfCrewed   bool
	CrewRequired bool

	MaintenanceMinutes int
	MissionID          contract.ID
	Salvage            bool
	Deployed           bool
}

// RequiresMaintenance reports whether the unit draws on daily maintenance.
func (u Unit) RequiresMaintenance() bool {
	return u.MaintenanceMinutes > 0 && !u.Salvage
}

// HasTech reports whether a maintenance tech is assigned.
func (u Unit) HasTech() bool {
	return u.TechID != ""
}

// Unmaintained reports whether the unit needs maintenance nobody covers.
func (u Unit) Unmaintained() bool {
	return u.RequiresMaintenance() && !u.SelfCrewed && !u.HasTech()
}
