// Package personnel models technicians, doctors and patients.
package personnel

import "strings"

// ID is a roster handle for a person.
type ID string

// Tier is a skill experience level. Higher is better.
type Tier int

const (
	TierUltraGreen Tier = iota
	TierGreen
	TierRegular
	TierVeteran
	TierElite
	// TierImpossible is above elite: no technician meets it, so the part can
	// only be destroyed.
	TierImpossible
)

var tierNames = map[Tier]string{
	TierUltraGreen: "ultra-green",
	TierGreen:      "green",
	TierRegular:    "regular",
	TierVeteran:    "veteran",
	TierElite:      "elite",
	TierImpossible: "impossible",
}

// String returns the tier label.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	if t > TierImpossible {
		return tierNames[TierImpossible]
	}
	return tierNames[TierUltraGreen]
}

// ParseTier parses a tier label.
func ParseTier(value string) (Tier, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for tier, name := range tierNames {
		if name == value {
			return tier, true
		}
	}
	return TierUltraGreen, false
}

// Category is the skill family needed for a kind of work.
type Category string

const (
	CategoryMech        Category = "mech"
	CategoryMechanic    Category = "mechanic"
	CategoryAero        Category = "aero"
	CategoryBattleArmor Category = "ba"
	CategoryVessel      Category = "vessel"
	CategoryDoctor      Category = "doctor"
)

// IsTech reports whether the category is a technical skill.
func (c Category) IsTech() bool {
	switch c {
	case CategoryMech, CategoryMechanic, CategoryAero, CategoryBattleArmor, CategoryVessel:
		return true
	default:
		return false
	}
}

// Role is a personnel assignment.
type Role string

const (
	RoleTech   Role = "tech"
	RoleDoctor Role = "doctor"
	RoleOther  Role = "other"
)

const (
	// ShiftMinutes is a technician's daily work time.
	ShiftMinutes = 480
	// OvertimeMinutes is added to the shift when overtime is enabled.
	OvertimeMinutes = 240
	// MaxHits is the hit count at which a person is dead.
	MaxHits = 5
)

// Person is anyone on the roster. The zero value is an inactive nobody.
type Person struct {
	ID        ID
	Name      string
	Roles     []Role
	Specialty Category
	Skills    map[Category]Tier
	Active    bool

	MinutesLeft int

	Hits       int
	Injuries   int
	DoctorID   ID
	DaysToWait int

	RetirementPending bool
	PayoutResolved    bool
	Payout            int64
}

// HasRole reports whether the person holds role.
func (p Person) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsTech reports whether the person is an active technician.
func (p Person) IsTech() bool {
	return p.Active && p.HasRole(RoleTech)
}

// IsDoctor reports whether the person is an active doctor.
func (p Person) IsDoctor() bool {
	return p.Active && p.HasRole(RoleDoctor)
}

// SkillFor returns the person's tier in category.
func (p Person) SkillFor(category Category) (Tier, bool) {
	tier, ok := p.Skills[category]
	return tier, ok
}

// CanWorkOn reports whether the person has a technical skill in category.
func (p Person) CanWorkOn(category Category) bool {
	if !category.IsTech() {
		return false
	}
	_, ok := p.Skills[category]
	return ok
}

// BestTechSkill returns the person's highest technical tier.
func (p Person) BestTechSkill() (Tier, bool) {
	best, found := TierUltraGreen, false
	for category, tier := range p.Skills {
		if !category.IsTech() {
			continue
		}
		if !found || tier > best {
			best, found = tier, true
		}
	}
	return best, found
}

// NeedsBasicCare reports hits without a lasting injury.
func (p Person) NeedsBasicCare() bool {
	return p.Hits > 0 && p.Injuries == 0
}

// NeedsAdvancedCare reports hits that come with injuries.
func (p Person) NeedsAdvancedCare() bool {
	return p.Hits > 0 && p.Injuries > 0
}

// NeedsCare reports whether the person needs a doctor at all.
func (p Person) NeedsCare() bool {
	return p.Active && p.Hits > 0 && p.Hits < MaxHits
}

// ShiftLength returns the daily minutes for a technician.
func ShiftLength(overtime bool) int {
	if overtime {
		return ShiftMinutes + OvertimeMinutes
	}
	return ShiftMinutes
}
