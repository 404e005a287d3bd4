// Package assignment runs the "do task" action: it re-validates the request,
// spends technician and astech time, resolves the roll and keeps the roster
// consistent afterwards.
package assignment

import (
	"fmt"

	"github.com/louisbranch/campaignops/internal/core/check"
	"github.com/louisbranch/campaignops/internal/core/dice"
	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/eligibility"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/pool"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/target"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// DefaultDestroyMargin is the failure margin that destroys a part when the
// destroy-by-margin toggle is on.
const DefaultDestroyMargin = 4

// ReasonNoSpare is reported for installs with nothing in stock.
const ReasonNoSpare = "no replacement part in stock"

var (
	// ErrMissingTask indicates the task vanished before the action ran.
	ErrMissingTask = apperrors.New(apperrors.CodeWorkMissingTask, "task not found")
	// ErrMissingAgent indicates no technician was selected or it vanished.
	ErrMissingAgent = apperrors.New(apperrors.CodeWorkMissingAgent, "technician not found")
	// ErrIneligible indicates the technician may not take the task.
	ErrIneligible = apperrors.New(apperrors.CodeWorkIneligible, "technician is not eligible for task")
	// ErrImpossible indicates the task cannot be attempted.
	ErrImpossible = apperrors.New(apperrors.CodeWorkImpossible, "task cannot be attempted")
	// ErrTaskBusy indicates another technician holds the task.
	ErrTaskBusy = apperrors.New(apperrors.CodeWorkTaskBusy, "task is in progress with another technician")
)

// TaskSource is the roster view of parts and units.
type TaskSource interface {
	Part(part.ID) (part.Part, bool)
	AddPart(part.Part) (part.ID, error)
	UpdatePart(part.Part) error
	RemovePart(part.ID) error
	PartsForUnit(unit.ID) []part.Part
	FindSpare(name string) (part.Part, bool)
	Unit(unit.ID) (unit.Unit, bool)
	RemoveUnit(unit.ID) error
}

// AgentSource is the roster view of technicians.
type AgentSource interface {
	Person(personnel.ID) (personnel.Person, bool)
	UpdatePerson(personnel.Person) error
}

// AstechPool supplies assistant time.
type AstechPool interface {
	Consume(n int) (pool.Change, error)
	Refund(n int) (pool.Change, error)
}

// Enqueuer accepts acquisition work for the shopping list.
type Enqueuer interface {
	Add(work part.Part, quantity int)
}

// Fixer resolves a completed attempt.
type Fixer interface {
	Fix(task part.Part, t target.Result) (check.Result, int, error)
}

// DiceFixer rolls 2d6 against the target.
type DiceFixer struct {
	Roller dice.Roller
}

// Fix implements Fixer.
func (f DiceFixer) Fix(_ part.Part, t target.Result) (check.Result, int, error) {
	result, err := f.Roller.Roll(dice.TwoD6)
	if err != nil {
		return check.Result{}, 0, err
	}
	return check.Check(result.Total, t.Value), result.Total, nil
}

// Options are the campaign rules for doing work.
type Options struct {
	// AstechTeamSize is how many astechs assist each minute of work. Zero
	// disables astech consumption.
	AstechTeamSize   int
	IgnoreSkillFloor bool
	DestroyMargin    int
}

// Config wires a Coordinator.
type Config struct {
	Tasks     TaskSource
	Agents    AgentSource
	Evaluator *target.Evaluator
	Astechs   AstechPool
	Fixer     Fixer
	Shopping  Enqueuer
	Options   Options
}

// Request asks an agent to work on a task.
type Request struct {
	TaskID part.ID
	// TechID is ignored for self-crewed units.
	TechID personnel.ID
	// Warehouse restricts the request to loose stock. Stock is always worked
	// on a clone, with or without it.
	Warehouse bool
	ShowAll   bool
}

// Report describes what DoTask did.
type Report struct {
	Source        part.ID
	Task          part.Part
	Agent         personnel.ID
	Minutes       int
	AstechMinutes int
	Target        target.Result
	Rolled        bool
	Roll          int
	Margin        int
	Outcome       part.State
	Salvaged      part.ID
	UnitRemoved   unit.ID
	Enqueued      bool
}

// Coordinator serializes work on the roster.
type Coordinator struct {
	tasks     TaskSource
	agents    AgentSource
	evaluator *target.Evaluator
	astechs   AstechPool
	fixer     Fixer
	shopping  Enqueuer
	opts      Options
	hooks     hooks
}

// New builds a coordinator.
func New(cfg Config) *Coordinator {
	opts := cfg.Options
	if opts.DestroyMargin <= 0 {
		opts.DestroyMargin = DefaultDestroyMargin
	}
	return &Coordinator{
		tasks:     cfg.Tasks,
		agents:    cfg.Agents,
		evaluator: cfg.Evaluator,
		astechs:   cfg.Astechs,
		fixer:     cfg.Fixer,
		shopping:  cfg.Shopping,
		opts:      opts,
	}
}

// DoTask performs one unit of work. The roll happens before any mutation;
// when a later write fails, the astech minutes are refunded and the roster is
// restored, so a failed request leaves nothing behind.
func (c *Coordinator) DoTask(req Request) (Report, error) {
	task, ok := c.tasks.Part(req.TaskID)
	if !ok {
		return Report{}, ErrMissingTask
	}
	if task.IsAcquisition() {
		c.shopping.Add(task, 1)
		c.hooks.run()
		return Report{Source: task.ID, Task: task, Enqueued: true}, nil
	}

	var owner *unit.Unit
	if !task.InWarehouse() {
		if req.Warehouse {
			return Report{}, ineligible(task, personnel.Person{ID: req.TechID})
		}
		u, ok := c.tasks.Unit(task.UnitID)
		if !ok {
			return Report{}, ErrMissingTask
		}
		owner = &u
	}

	agent, err := c.resolveAgent(task, owner, req.TechID)
	if err != nil {
		return Report{}, err
	}
	if task.AssignedTech != "" && task.AssignedTech != agent.ID {
		return Report{}, apperrors.WithMetadata(apperrors.CodeWorkTaskBusy, "task is in progress with another technician",
			map[string]string{"Task": task.Name})
	}

	var unitType unit.Type
	selfCrewed := owner != nil && owner.SelfCrewed
	if owner != nil {
		unitType = owner.Type
	}
	opts := eligibility.Options{ShowAll: req.ShowAll || selfCrewed, IgnoreSkillFloor: c.opts.IgnoreSkillFloor}
	if !eligibility.AgentEligible(task, agent, unitType, opts) {
		return Report{}, ineligible(task, agent)
	}

	result := c.evaluator.ForTask(&task, owner, &agent)
	switch result.Outcome {
	case target.Impossible:
		return Report{}, impossible(task, result.Reason)
	case target.NotApplicable:
		return Report{}, ineligible(task, agent)
	}

	var spare part.Part
	if task.Kind == part.KindInstall {
		if spare, ok = c.tasks.FindSpare(task.Name); !ok {
			return Report{}, impossible(task, ReasonNoSpare)
		}
	}

	need := task.WorkMinutes()
	worked := min(need, agent.MinutesLeft)
	report := Report{Source: task.ID, Agent: agent.ID, Minutes: worked, Target: result}

	var outcome *check.Result
	if worked >= need {
		rolled, roll, err := c.fixer.Fix(task, result)
		if err != nil {
			return Report{}, err
		}
		outcome = &rolled
		report.Rolled = true
		report.Roll = roll
		report.Margin = rolled.Margin
	}

	tx := &txn{tasks: c.tasks, agents: c.agents}
	if err := c.apply(tx, task, owner, agent, spare, worked, outcome, &report); err != nil {
		tx.rollback()
		return Report{}, err
	}
	c.hooks.run()
	return report, nil
}

// apply performs every mutation of DoTask through tx.
func (c *Coordinator) apply(tx *txn, task part.Part, owner *unit.Unit, agent personnel.Person, spare part.Part, worked int, outcome *check.Result, report *Report) error {
	if astech := worked * c.opts.AstechTeamSize; astech > 0 {
		if _, err := c.astechs.Consume(astech); err != nil {
			return err
		}
		tx.onRollback(func() { _, _ = c.astechs.Refund(astech) })
		report.AstechMinutes = astech
	}

	work := task
	if task.InWarehouse() && task.State != part.StateInProgress {
		var err error
		if work, err = splitStock(tx, task); err != nil {
			return err
		}
	}

	if outcome != nil {
		if err := c.resolve(tx, &work, spare, *outcome, report); err != nil {
			return err
		}
	} else {
		work.MinutesSpent += worked
		work.State = part.StateInProgress
		work.AssignedTech = agent.ID
		if err := tx.updatePart(work); err != nil {
			return err
		}
		report.Outcome = part.StateInProgress
	}
	report.Task = work

	agent.MinutesLeft -= worked
	if err := tx.updatePerson(agent); err != nil {
		return err
	}

	if owner != nil {
		removed, err := c.pruneUnit(owner.ID)
		if err != nil {
			return err
		}
		if removed {
			report.UnitRemoved = owner.ID
		}
	}
	return nil
}

func (c *Coordinator) resolveAgent(task part.Part, owner *unit.Unit, techID personnel.ID) (personnel.Person, error) {
	if owner != nil && owner.SelfCrewed {
		engineer, ok := c.evaluator.Engineer(*owner)
		if !ok {
			return personnel.Person{}, impossible(task, target.ReasonNoEngineer)
		}
		return engineer, nil
	}
	if techID == "" {
		return personnel.Person{}, ErrMissingAgent
	}
	agent, ok := c.agents.Person(techID)
	if !ok {
		return personnel.Person{}, ErrMissingAgent
	}
	return agent, nil
}

// splitStock moves one unit of warehouse stock into its own entry.
func splitStock(tx *txn, stock part.Part) (part.Part, error) {
	clone := stock.Clone()
	id, err := tx.addPart(clone)
	if err != nil {
		return part.Part{}, err
	}
	clone.ID = id
	if stock.Quantity <= 1 {
		err = tx.removePart(stock.ID)
	} else {
		stock.Quantity--
		err = tx.updatePart(stock)
	}
	if err != nil {
		return part.Part{}, err
	}
	return clone, nil
}

func (c *Coordinator) resolve(tx *txn, work *part.Part, spare part.Part, outcome check.Result, report *Report) error {
	work.AssignedTech = ""
	work.MinutesSpent = 0

	switch {
	case work.Kind == part.KindScrap:
		work.State = part.StateScrapped
		report.Outcome = part.StateScrapped
		return tx.removePart(work.ID)
	case outcome.Success:
		return complete(tx, work, spare, report)
	case c.opts.IgnoreSkillFloor && -outcome.Margin >= c.opts.DestroyMargin:
		work.State = part.StateDestroyed
	default:
		work.State = part.StateFailed
	}
	report.Outcome = work.State
	return tx.updatePart(*work)
}

func complete(tx *txn, work *part.Part, spare part.Part, report *Report) error {
	report.Outcome = part.StateCompleted
	switch work.Kind {
	case part.KindInstall:
		if spare.Quantity <= 1 {
			if err := tx.removePart(spare.ID); err != nil {
				return err
			}
		} else {
			spare.Quantity--
			if err := tx.updatePart(spare); err != nil {
				return err
			}
		}
	case part.KindSalvage:
		if work.Residual {
			salvaged := work.Clone()
			salvaged.Kind = part.KindRepair
			salvaged.UnitID = ""
			salvaged.State = part.StateCompleted
			salvaged.Residual = false
			id, err := tx.addPart(salvaged)
			if err != nil {
				return err
			}
			report.Salvaged = id
			work.Kind = part.KindInstall
			work.State = part.StateMissing
			return tx.updatePart(*work)
		}
		work.Kind = part.KindRepair
		work.UnitID = ""
		work.Quantity = max(work.Quantity, 1)
		report.Salvaged = work.ID
	}
	work.State = part.StateCompleted
	return tx.updatePart(*work)
}

// pruneUnit removes a unit that can neither be repaired nor salvaged.
func (c *Coordinator) pruneUnit(unitID unit.ID) (bool, error) {
	if _, ok := c.tasks.Unit(unitID); !ok {
		return false, nil
	}
	repairable := true
	salvageable := 0
	for _, p := range c.tasks.PartsForUnit(unitID) {
		switch p.State {
		case part.StateDestroyed:
			if p.Essential {
				repairable = false
			}
		case part.StateScrapped, part.StateMissing:
		default:
			salvageable++
		}
	}
	if repairable || salvageable > 0 {
		return false, nil
	}
	return true, c.tasks.RemoveUnit(unitID)
}

func ineligible(task part.Part, agent personnel.Person) error {
	name := agent.Name
	if name == "" {
		name = string(agent.ID)
	}
	return apperrors.WithMetadata(apperrors.CodeWorkIneligible, "technician is not eligible for task",
		map[string]string{"Agent": name, "Task": task.Name})
}

func impossible(task part.Part, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeWorkImpossible, fmt.Sprintf("task cannot be attempted: %s", reason),
		map[string]string{"Task": task.Name, "Reason": reason})
}
