package dayadvance

import (
	"time"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/retirement"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// Clock is the campaign calendar.
type Clock interface {
	Today() time.Time
	Advance() time.Time
}

// Ledger reports overdue loan payments.
type Ledger interface {
	OverdueTotal() int64
}

// People lists campaign personnel.
type People interface {
	People() []personnel.Person
}

// Units lists the roster's units.
type Units interface {
	Units() []unit.Unit
}

// Pool reports the balance a day-boundary replenish restores.
type Pool interface {
	Daily() int
}

// Contracts lists active contracts and scheduled scenarios.
type Contracts interface {
	Active() []contract.Contract
	ScenariosOn(day time.Time) []contract.Scenario
}

// RetirementRolls reports the last retirement roll.
type RetirementRolls interface {
	LastRoll() (time.Time, bool)
}

// Rules are the campaign options the gate honors.
type Rules struct {
	CheckMaintenance  bool
	AttritionRuleset  bool
	ContractRuleset   bool
	DeploymentWeekday time.Weekday
}

// Sources are the collaborators a snapshot is read from.
type Sources struct {
	Clock      Clock
	Ledger     Ledger
	People     People
	Units      Units
	Astechs    Pool
	Contracts  Contracts
	Retirement RetirementRolls
}

// Collect reads a snapshot for today. Nothing is mutated.
func Collect(src Sources, rules Rules) Snapshot {
	s := Snapshot{
		Today:             src.Clock.Today(),
		CheckMaintenance:  rules.CheckMaintenance,
		AttritionRuleset:  rules.AttritionRuleset,
		ContractRuleset:   rules.ContractRuleset,
		DeploymentWeekday: rules.DeploymentWeekday,
	}
	if src.Ledger != nil {
		s.OverdueTotal = src.Ledger.OverdueTotal()
	}
	if src.People != nil {
		s.UnresolvedRetirements = len(retirement.Unresolved(src.People.People()))
	}
	if rules.AttritionRuleset && src.Retirement != nil {
		last, rolled := src.Retirement.LastRoll()
		s.RetirementRollDue = retirement.RollDue(last, rolled, s.Today)
	}
	if rules.CheckMaintenance && src.Units != nil {
		s.Unmaintained, s.AstechNeeded = maintenanceLoad(src.Units.Units())
		if src.Astechs != nil {
			s.AstechAvailable = src.Astechs.Daily()
		}
	}
	if rules.ContractRuleset && src.Contracts != nil {
		for _, c := range src.Contracts.Active() {
			if c.DeploymentDeficit() > 0 {
				s.UnderDeployed = append(s.UnderDeployed, c)
			}
		}
		s.ScenariosToday = src.Contracts.ScenariosOn(s.Today)
	}
	return s
}

// maintenanceLoad counts units with no tech and sums the astech minutes of
// crewed units that have one.
func maintenanceLoad(units []unit.Unit) (unmaintained, astechMinutes int) {
	for _, u := range units {
		if u.Unmaintained() {
			unmaintained++
			continue
		}
		if u.RequiresMaintenance() && !u.SelfCrewed && u.HasTech() {
			astechMinutes += u.MaintenanceMinutes
		}
	}
	return unmaintained, astechMinutes
}
