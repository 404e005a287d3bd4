// Package target evaluates whether a task or patient can be attempted and at
// what target number. The result is shared by the repair-bay and warehouse
// views so both agree on feasibility.
package target

import (
	"github.com/louisbranch/campaignops/internal/core/check"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/eligibility"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// ReasonNoEngineer is reported for self-crewed units without an engineer.
const ReasonNoEngineer = "no engineer"

// Outcome tags a Result.
type Outcome int

const (
	// NotApplicable means there is nothing to evaluate.
	NotApplicable Outcome = iota
	// Impossible means the attempt cannot be made.
	Impossible
	// Feasible means the attempt succeeds on a roll of Value or better.
	Feasible
)

// String returns the outcome label.
func (o Outcome) String() string {
	switch o {
	case Impossible:
		return "impossible"
	case Feasible:
		return "feasible"
	default:
		return "not-applicable"
	}
}

// Result is the tagged evaluation result.
type Result struct {
	Outcome     Outcome
	Value       int
	Reason      string
	Description string
}

// NotApplicableResult reports that nothing was evaluated.
func NotApplicableResult() Result {
	return Result{Outcome: NotApplicable}
}

// ImpossibleResult reports an attempt that cannot be made.
func ImpossibleResult(reason string) Result {
	return Result{Outcome: Impossible, Reason: reason, Description: reason}
}

// FeasibleResult reports a target number.
func FeasibleResult(value int, description string) Result {
	return Result{Outcome: Feasible, Value: value, Description: description}
}

// FromTarget converts a built target into a Result.
func FromTarget(t check.Target) Result {
	if t.IsImpossible() {
		return ImpossibleResult(t.Reason())
	}
	return FeasibleResult(t.Value(), t.Description())
}

// IsImpossible reports whether the result forbids the attempt.
func (r Result) IsImpossible() bool {
	return r.Outcome == Impossible
}

// IsFeasible reports whether the result has a target number.
func (r Result) IsFeasible() bool {
	return r.Outcome == Feasible
}

// RollEngine produces target numbers from the game's rules.
type RollEngine interface {
	TaskTarget(task part.Part, owner *unit.Unit, agent personnel.Person) check.Target
	HealingTarget(patient, doctor personnel.Person) check.Target
}

// PersonLookup resolves a person handle.
type PersonLookup func(personnel.ID) (personnel.Person, bool)

// Evaluator computes Results through a RollEngine.
type Evaluator struct {
	engine RollEngine
	lookup PersonLookup
}

// NewEvaluator builds an evaluator. lookup resolves engineers of self-crewed
// units.
func NewEvaluator(engine RollEngine, lookup PersonLookup) *Evaluator {
	return &Evaluator{engine: engine, lookup: lookup}
}

// ForTask evaluates task for agent. Self-crewed units are evaluated against
// their engineer and ignore agent.
func (e *Evaluator) ForTask(task *part.Part, owner *unit.Unit, agent *personnel.Person) Result {
	if task == nil || !eligibility.NeedsWork(*task) {
		return NotApplicableResult()
	}
	if owner != nil && owner.SelfCrewed {
		engineer, ok := e.Engineer(*owner)
		if !ok {
			if owner.CrewRequired {
				return ImpossibleResult(ReasonNoEngineer)
			}
			return NotApplicableResult()
		}
		return FromTarget(e.engine.TaskTarget(*task, owner, engineer))
	}
	if agent == nil {
		return NotApplicableResult()
	}
	return FromTarget(e.engine.TaskTarget(*task, owner, *agent))
}

// ForPatient evaluates doctor treating patient.
func (e *Evaluator) ForPatient(patient, doctor *personnel.Person) Result {
	if patient == nil || doctor == nil || !patient.NeedsCare() {
		return NotApplicableResult()
	}
	return FromTarget(e.engine.HealingTarget(*patient, *doctor))
}

// Engineer resolves the engineer of a self-crewed unit.
func (e *Evaluator) Engineer(owner unit.Unit) (personnel.Person, bool) {
	if owner.EngineerID == "" || e.lookup == nil {
		return personnel.Person{}, false
	}
	return e.lookup(owner.EngineerID)
}
