// Package bonus spends contract bonus-part credits on immediate
// acquisitions.
package bonus

import (
	"log"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/acquisition"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// ErrNotAcquirable indicates the work is not an open acquisition.
var ErrNotAcquirable = apperrors.New(apperrors.CodeWorkNotAcquirable, "work is not an open acquisition")

// ContractRegistry is the contract view the allocator needs.
type ContractRegistry interface {
	Contract(contract.ID) (contract.Contract, bool)
	Active() []contract.Contract
	SpendBonusPart(contract.ID) error
	CampaignBonusParts() int
	SpendCampaignBonusPart() error
}

// UnitLookup resolves the unit an acquisition belongs to.
type UnitLookup func(unit.ID) (unit.Unit, bool)

// Source names where a credit came from.
type Source string

const (
	SourceNone     Source = ""
	SourceContract Source = "contract"
	SourceCampaign Source = "campaign"
)

// Inconsistency describes a granted part no counter paid for.
type Inconsistency struct {
	Work     part.Part
	Contract contract.ID
	Err      error
}

// Result describes a bonus-part attempt.
type Result struct {
	Report   acquisition.Report
	Source   Source
	Contract contract.ID
	// Inconsistent is set when the part arrived but no credit was spent.
	Inconsistent bool
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithInconsistencyHandler is called for every bookkeeping inconsistency in
// addition to the log line.
func WithInconsistencyHandler(fn func(Inconsistency)) Option {
	return func(a *Allocator) {
		a.onInconsistency = fn
	}
}

// Allocator resolves acquisitions at zero transit against bonus credit.
type Allocator struct {
	contracts       ContractRegistry
	procurer        acquisition.Procurer
	units           UnitLookup
	onInconsistency func(Inconsistency)
}

// New builds an allocator.
func New(contracts ContractRegistry, procurer acquisition.Procurer, units UnitLookup, opts ...Option) *Allocator {
	a := &Allocator{contracts: contracts, procurer: procurer, units: units}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether any credit could pay for work.
func (a *Allocator) Available(work part.Part) bool {
	if id, ok := a.attached(work); ok {
		return a.remaining(id) > 0
	}
	if _, ok := a.firstWithCredit(); ok {
		return true
	}
	return a.contracts.CampaignBonusParts() > 0
}

// TryUseBonusPart acquires work at zero transit. A counter is decremented
// only when the part is in stock today; a part that was granted without a
// matching credit is logged, never rolled back.
func (a *Allocator) TryUseBonusPart(work part.Part) (Result, error) {
	if !work.IsAcquisition() {
		return Result{}, ErrNotAcquirable
	}
	if !a.Available(work) {
		return Result{}, contract.ErrNoBonusCredit
	}

	report := a.procurer.Acquire(work, 0)
	result := Result{Report: report}
	if !report.ArrivesToday() {
		return result, nil
	}

	if id, ok := a.attached(work); ok {
		result.Contract = id
		if err := a.contracts.SpendBonusPart(id); err != nil {
			a.inconsistent(&result, Inconsistency{Work: work, Contract: id, Err: err})
			return result, nil
		}
		result.Source = SourceContract
		return result, nil
	}
	if c, ok := a.firstWithCredit(); ok {
		result.Contract = c.ID
		if err := a.contracts.SpendBonusPart(c.ID); err != nil {
			a.inconsistent(&result, Inconsistency{Work: work, Contract: c.ID, Err: err})
			return result, nil
		}
		result.Source = SourceContract
		return result, nil
	}
	if err := a.contracts.SpendCampaignBonusPart(); err != nil {
		a.inconsistent(&result, Inconsistency{Work: work, Err: err})
		return result, nil
	}
	result.Source = SourceCampaign
	return result, nil
}

// attached returns the active contract the work's unit is deployed under.
func (a *Allocator) attached(work part.Part) (contract.ID, bool) {
	if work.UnitID == "" || a.units == nil {
		return "", false
	}
	u, ok := a.units(work.UnitID)
	if !ok || u.MissionID == "" {
		return "", false
	}
	c, ok := a.contracts.Contract(u.MissionID)
	if !ok || !c.Active {
		return "", false
	}
	return c.ID, true
}

func (a *Allocator) remaining(id contract.ID) int {
	c, ok := a.contracts.Contract(id)
	if !ok {
		return 0
	}
	return c.BonusParts
}

func (a *Allocator) firstWithCredit() (contract.Contract, bool) {
	for _, c := range a.contracts.Active() {
		if c.BonusParts > 0 {
			return c, true
		}
	}
	return contract.Contract{}, false
}

func (a *Allocator) inconsistent(result *Result, inc Inconsistency) {
	result.Inconsistent = true
	log.Printf("bonus part %q granted without credit (contract %q): %v", inc.Work.Name, inc.Contract, inc.Err)
	if a.onInconsistency != nil {
		a.onInconsistency(inc)
	}
}
