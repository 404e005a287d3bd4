// Package dayadvance decides whether the campaign may move to the next day
// and commits the move.
package dayadvance

import (
	"strconv"
	"time"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
)

// State is the outcome of an evaluation.
type State string

const (
	// StatePending means confirmations must be answered and the snapshot
	// resubmitted.
	StatePending State = "pending"
	// StateResolveRetirements means the operator chose to finalize payouts
	// first; resolve them and evaluate again.
	StateResolveRetirements State = "resolve-retirements"
	StateBlocked            State = "blocked"
	StateReady              State = "ready"
	StateCommitted          State = "committed"
)

// Choice is an answer to a confirmation.
type Choice string

const (
	ChoiceYes     Choice = "yes"
	ChoiceNo      Choice = "no"
	ChoiceResolve Choice = "resolve"
	ChoiceCancel  Choice = "cancel"
)

// Key identifies a confirmation across resubmissions.
type Key string

const (
	KeyRetirementPayouts Key = "retirement-payouts"
	KeyUnmaintained      Key = "unmaintained"
	KeyAstechShortfall   Key = "astech-shortfall"
)

// UnderDeployedKey is the confirmation key for an under-deployed contract.
func UnderDeployedKey(id contract.ID) Key {
	return Key("under-deployed/" + string(id))
}

// PendingBattleKey is the confirmation key for a scenario dated today.
func PendingBattleKey(scenarioID string) Key {
	return Key("pending-battle/" + scenarioID)
}

// Confirmation is a question the operator must answer before the advance.
type Confirmation struct {
	Key      Key
	Code     apperrors.Code
	Metadata map[string]string
	Choices  []Choice
}

// Notice is a warning that never blocks.
type Notice struct {
	Code     apperrors.Code
	Metadata map[string]string
}

// Rejection captures why the advance was refused.
type Rejection struct {
	Code     apperrors.Code
	Metadata map[string]string
}

// Err returns the rejection as a coded error.
func (r Rejection) Err() error {
	return apperrors.WithMetadata(r.Code, "day advance refused", r.Metadata)
}

// Answers maps confirmation keys to the operator's choice.
type Answers map[Key]Choice

// Decision is the pure outcome of an evaluation.
type Decision struct {
	State   State
	Pending []Confirmation
	Notices []Notice
	Reason  *Rejection
}

// Snapshot is everything the gate reads. It is captured before the clock
// moves.
type Snapshot struct {
	Today time.Time

	OverdueTotal int64

	UnresolvedRetirements int
	AttritionRuleset      bool
	RetirementRollDue     bool

	CheckMaintenance bool
	Unmaintained     int
	AstechNeeded     int
	// AstechAvailable is what maintenance draws on after tomorrow's
	// replenish, not today's leftover balance.
	AstechAvailable int

	ContractRuleset   bool
	DeploymentWeekday time.Weekday
	UnderDeployed     []contract.Contract
	ScenariosToday    []contract.Scenario
}

// AstechShortfall returns how many astech minutes maintenance lacks.
func (s Snapshot) AstechShortfall() int {
	return s.AstechNeeded - s.AstechAvailable
}

// Evaluate runs the day-advance checks in order:
//  1. overdue loans block with no override,
//  2. unresolved retirement payouts must be resolved or the advance is
//     cancelled,
//  3. a due annual retirement roll adds a notice,
//  4. unmaintained units and an astech shortfall each need a yes,
//  5. under the contract ruleset, under-deployed contracts on the
//     deployment weekday and scenarios dated today each need a yes.
//
// Any "no" or "cancel" blocks the whole advance. Confirmations without an
// answer are returned in order as Pending.
func Evaluate(s Snapshot, answers Answers) Decision {
	if s.OverdueTotal > 0 {
		return block(apperrors.CodeDayAdvanceOverdueLoans, map[string]string{
			"Amount": strconv.FormatInt(s.OverdueTotal, 10),
		})
	}

	if s.UnresolvedRetirements > 0 {
		confirm := Confirmation{
			Key:      KeyRetirementPayouts,
			Code:     apperrors.CodeDayAdvanceRetirementPending,
			Metadata: map[string]string{"Count": strconv.Itoa(s.UnresolvedRetirements)},
			Choices:  []Choice{ChoiceResolve, ChoiceCancel},
		}
		switch answers[KeyRetirementPayouts] {
		case ChoiceResolve:
			return Decision{State: StateResolveRetirements}
		case "":
			return Decision{State: StatePending, Pending: []Confirmation{confirm}}
		default:
			return declined(KeyRetirementPayouts)
		}
	}

	var d Decision
	if s.AttritionRuleset && s.RetirementRollDue {
		d.Notices = append(d.Notices, Notice{Code: apperrors.CodeDayAdvanceRetirementRoll})
	}

	var asks []Confirmation
	if s.CheckMaintenance {
		if s.Unmaintained > 0 {
			asks = append(asks, yesNo(KeyUnmaintained, apperrors.CodeDayAdvanceUnmaintained, map[string]string{
				"Count": strconv.Itoa(s.Unmaintained),
			}))
		}
		if need := s.AstechShortfall(); need > 0 {
			asks = append(asks, yesNo(KeyAstechShortfall, apperrors.CodeDayAdvanceAstechShortfall, map[string]string{
				"Needed":    strconv.Itoa(s.AstechNeeded),
				"Available": strconv.Itoa(s.AstechAvailable),
				"Shortfall": strconv.Itoa(need),
			}))
		}
	}
	if s.ContractRuleset {
		if s.Today.Weekday() == s.DeploymentWeekday {
			for _, c := range s.UnderDeployed {
				asks = append(asks, yesNo(UnderDeployedKey(c.ID), apperrors.CodeDayAdvanceUnderDeployed, map[string]string{
					"Contract": c.Name,
					"Required": strconv.Itoa(c.RequiredLances),
					"Deployed": strconv.Itoa(c.DeployedLances),
				}))
			}
		}
		for _, sc := range s.ScenariosToday {
			asks = append(asks, yesNo(PendingBattleKey(sc.ID), apperrors.CodeDayAdvancePendingBattle, map[string]string{
				"Scenario": sc.Name,
			}))
		}
	}

	for _, ask := range asks {
		switch answers[ask.Key] {
		case ChoiceYes:
		case "":
			d.Pending = append(d.Pending, ask)
		default:
			rejected := declined(ask.Key)
			rejected.Notices = d.Notices
			return rejected
		}
	}
	if len(d.Pending) > 0 {
		d.State = StatePending
		return d
	}
	d.State = StateReady
	return d
}

func yesNo(key Key, code apperrors.Code, metadata map[string]string) Confirmation {
	return Confirmation{Key: key, Code: code, Metadata: metadata, Choices: []Choice{ChoiceYes, ChoiceNo}}
}

func block(code apperrors.Code, metadata map[string]string) Decision {
	return Decision{State: StateBlocked, Reason: &Rejection{Code: code, Metadata: metadata}}
}

func declined(key Key) Decision {
	return block(apperrors.CodeDayAdvanceDeclined, map[string]string{"Key": string(key)})
}
