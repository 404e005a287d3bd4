// Package eligibility decides which tasks are visible under a location filter
// and which technicians or doctors may take them. Every function is pure.
package eligibility

import (
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// MaxCaseload is the most patients one doctor may hold.
const MaxCaseload = 25

// Options are the view and campaign toggles that affect eligibility.
type Options struct {
	// ShowAll lists technicians whose specialty does not match the work.
	// It never overrides the skill floor or the needs-work check.
	ShowAll bool
	// IgnoreSkillFloor is the destroy-by-margin campaign toggle: any skilled
	// technician may attempt the task and risks destroying the part.
	IgnoreSkillFloor bool
}

// Feasibility is anything that can report an impossible target.
type Feasibility interface {
	IsImpossible() bool
}

// PhysicalLocations returns every location a task occupies. Engines whose
// shielding spills into the side torsos occupy LT and RT as well as CT.
func PhysicalLocations(task part.Part, unitType unit.Type) []part.Location {
	if unitType == unit.TypeMech {
		switch task.Component.Class {
		case part.ClassEngine:
			if task.Component.Engine.SideTorsos() {
				return []part.Location{part.LocationCenterTorso, part.LocationLeftTorso, part.LocationRightTorso}
			}
			return []part.Location{part.LocationCenterTorso}
		case part.ClassGyro:
			return []part.Location{part.LocationCenterTorso}
		}
	}
	return []part.Location{task.Location}
}

// TaskVisible reports whether a task shows under the location filter.
func TaskVisible(task part.Part, unitType unit.Type, filter part.Location) bool {
	if filter == part.LocationAll || task.Location == filter {
		return true
	}
	for _, loc := range PhysicalLocations(task, unitType) {
		if loc == filter {
			return true
		}
	}
	return false
}

// NeedsWork reports whether anything can be done on the task.
func NeedsWork(task part.Part) bool {
	return task.NeedsFixing() || task.IsSalvaging()
}

// EffectiveTier is the agent's tier after the mode's skill penalty.
func EffectiveTier(agent personnel.Tier, mode part.Mode) personnel.Tier {
	return agent - personnel.Tier(mode.SkillPenalty())
}

// taskCategory is the skill family for a task: the owning unit's type, or the
// part's own category for loose stock.
func taskCategory(task part.Part, unitType unit.Type) personnel.Category {
	if category := unitType.Category(); category != "" {
		return category
	}
	return task.Category
}

// AgentEligible reports whether agent may work on task.
func AgentEligible(task part.Part, agent personnel.Person, unitType unit.Type, opts Options) bool {
	if !NeedsWork(task) {
		return false
	}
	if task.AssignedTech != "" && task.AssignedTech != agent.ID {
		return false
	}
	category := taskCategory(task, unitType)
	tier, ok := agent.SkillFor(category)
	if !ok || !category.IsTech() {
		return false
	}
	if !opts.IgnoreSkillFloor && EffectiveTier(tier, task.Mode) < task.MinSkill {
		return false
	}
	if !opts.ShowAll && agent.Specialty != category {
		return false
	}
	return true
}

// DoctorEligible reports whether doctor may take patient.
func DoctorEligible(patient, doctor personnel.Person, caseload int, target Feasibility) bool {
	if !patient.NeedsCare() || !doctor.IsDoctor() {
		return false
	}
	if caseload >= MaxCaseload {
		return false
	}
	if target == nil || target.IsImpossible() {
		return false
	}
	return true
}

// Partition maps every agent to the tasks it may take, in task order.
// unitTypeOf resolves a task's owning unit type; warehouse tasks resolve to
// the empty type.
func Partition(tasks []part.Part, agents []personnel.Person, unitTypeOf func(unit.ID) unit.Type, opts Options) map[personnel.ID][]part.ID {
	out := make(map[personnel.ID][]part.ID, len(agents))
	for _, agent := range agents {
		out[agent.ID] = nil
	}
	for _, task := range tasks {
		var unitType unit.Type
		if task.UnitID != "" && unitTypeOf != nil {
			unitType = unitTypeOf(task.UnitID)
		}
		for _, agent := range agents {
			if AgentEligible(task, agent, unitType, opts) {
				out[agent.ID] = append(out[agent.ID], task.ID)
			}
		}
	}
	return out
}

// EligibleAgents returns the agents that may take task, in input order.
func EligibleAgents(task part.Part, agents []personnel.Person, unitType unit.Type, opts Options) []personnel.Person {
	var out []personnel.Person
	for _, agent := range agents {
		if AgentEligible(task, agent, unitType, opts) {
			out = append(out, agent)
		}
	}
	return out
}

// FilterVisible returns the tasks shown under a location filter.
func FilterVisible(tasks []part.Part, unitType unit.Type, filter part.Location) []part.Part {
	var out []part.Part
	for _, task := range tasks {
		if TaskVisible(task, unitType, filter) {
			out = append(out, task)
		}
	}
	return out
}
