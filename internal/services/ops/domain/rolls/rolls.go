// Package rolls is the reference roll engine: a small modifier table that
// turns skills, task difficulty and working conditions into 2d6 targets.
package rolls

import (
	"fmt"

	"github.com/louisbranch/campaignops/internal/core/check"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

const (
	// TechBase is the target for a regular technician on a plain task.
	TechBase = 4
	// DoctorBase is the target for a regular doctor on basic care.
	DoctorBase = 3
	// AutomaticTarget always succeeds on 2d6.
	AutomaticTarget = 2
)

// Options toggles engine rules.
type Options struct {
	// IgnoreSkillFloor lets anyone attempt parts that could otherwise only be
	// destroyed.
	IgnoreSkillFloor bool
}

// Engine implements target.RollEngine.
type Engine struct {
	opts        Options
	shorthanded func() int
}

// NewEngine builds an engine. shorthanded reports the current medic shortage
// penalty and may be nil.
func NewEngine(opts Options, shorthanded func() int) *Engine {
	return &Engine{opts: opts, shorthanded: shorthanded}
}

// TaskTarget returns the target for agent working on task.
func (e *Engine) TaskTarget(task part.Part, owner *unit.Unit, agent personnel.Person) check.Target {
	if task.Kind == part.KindScrap {
		return check.NewTarget(AutomaticTarget, "scrap")
	}
	if agent.MinutesLeft <= 0 {
		return check.Impossible(fmt.Sprintf("%s has no time left today", displayName(agent)))
	}
	category := task.Category
	if owner != nil {
		if c := owner.Type.Category(); c != "" {
			category = c
		}
	}
	tier, ok := agent.SkillFor(category)
	if !ok {
		return check.Impossible(fmt.Sprintf("%s lacks %s skill", displayName(agent), category))
	}
	if task.MinSkill >= personnel.TierImpossible && !e.opts.IgnoreSkillFloor {
		return check.Impossible("part can only be destroyed")
	}

	target := check.NewTarget(TechBase, "base")
	target.Add(-int(tier-personnel.TierRegular), tier.String())
	target.Add(task.Difficulty, "difficulty")
	target.Add(task.Mode.SkillPenalty(), task.Mode.String())
	if owner != nil {
		target.Add(unitModifier(owner.Type), string(owner.Type))
	}
	return target
}

// HealingTarget returns the target for doctor treating patient.
func (e *Engine) HealingTarget(patient, doctor personnel.Person) check.Target {
	tier, ok := doctor.SkillFor(personnel.CategoryDoctor)
	if !ok {
		return check.Impossible(fmt.Sprintf("%s has no medical skill", displayName(doctor)))
	}
	target := check.NewTarget(DoctorBase, "base")
	target.Add(-int(tier-personnel.TierRegular), tier.String())
	if patient.NeedsAdvancedCare() {
		target.Add(1, "injuries")
	}
	if e.shorthanded != nil {
		target.Add(e.shorthanded(), "shorthanded")
	}
	return target
}

func unitModifier(t unit.Type) int {
	switch t {
	case unit.TypeAero, unit.TypeBattleArmor:
		return 1
	case unit.TypeLargeVessel:
		return 2
	default:
		return 0
	}
}

func displayName(p personnel.Person) string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}
