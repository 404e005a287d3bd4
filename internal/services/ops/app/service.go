// Package app wires the operations domain into one service: repair work,
// bonus parts, medical care, staffing and the day advance.
package app

import (
	"errors"
	"sync"
	"time"

	"github.com/louisbranch/campaignops/internal/core/dice"
	"github.com/louisbranch/campaignops/internal/platform/errors/i18n"
	"github.com/louisbranch/campaignops/internal/platform/otel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/acquisition"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/assignment"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/bonus"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/calendar"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/dayadvance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/finance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/medical"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/pool"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/retirement"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/rolls"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/roster"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/target"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
	"go.opentelemetry.io/otel/trace"
)

const defaultMaxAdvanceRounds = 16

// Options are the campaign rules.
type Options struct {
	// IgnoreSkillFloor lets any tech try any part and destroys parts on a
	// large failure margin.
	IgnoreSkillFloor  bool
	CheckMaintenance  bool
	AttritionRuleset  bool
	ContractRuleset   bool
	DeploymentWeekday time.Weekday
	AstechTeamSize    int
	UseOvertime       bool
	PayForParts       bool
	// TransitDays is how long shopping-list finds take to arrive.
	TransitDays int
	Locale      string
	// MaxAdvanceRounds caps confirmation round-trips in AdvanceDay.
	MaxAdvanceRounds int
}

// Campaign is the mutable campaign state the service operates on.
type Campaign struct {
	Roster     *roster.Roster
	Contracts  *contract.Registry
	Ledger     *finance.Ledger
	Clock      *calendar.Clock
	Astechs    *pool.Pool
	Medics     *pool.Pool
	Retirement *retirement.Tracker
}

// NewCampaign returns an empty campaign starting on start.
func NewCampaign(start time.Time, balance int64) Campaign {
	astechs, _ := pool.New("astech", 0)
	medics, _ := pool.New("medic", 0)
	return Campaign{
		Roster:     roster.New(),
		Contracts:  contract.NewRegistry(),
		Ledger:     finance.NewLedger(balance),
		Clock:      calendar.NewClock(start),
		Astechs:    astechs,
		Medics:     medics,
		Retirement: retirement.NewTracker(),
	}
}

func (c Campaign) validate() error {
	switch {
	case c.Roster == nil:
		return errors.New("roster is required")
	case c.Contracts == nil:
		return errors.New("contract registry is required")
	case c.Ledger == nil:
		return errors.New("ledger is required")
	case c.Clock == nil:
		return errors.New("clock is required")
	case c.Astechs == nil || c.Medics == nil:
		return errors.New("astech and medic pools are required")
	case c.Retirement == nil:
		return errors.New("retirement tracker is required")
	}
	return nil
}

// Config wires a Service.
type Config struct {
	Campaign Campaign
	Options  Options
	// Roller resolves every roll. Defaults to a time-seeded roller.
	Roller dice.Roller
	// Journal records outcomes when set.
	Journal storage.Journal
	// Procurer overrides the quartermaster for bonus parts and the shopping
	// list.
	Procurer acquisition.Procurer
}

// Service serializes every campaign action.
type Service struct {
	mu sync.Mutex

	campaign Campaign
	opts     Options
	roller   dice.Roller
	journal  storage.Journal
	catalog  *i18n.Catalog
	tracer   trace.Tracer

	astechCount int

	engine        *rolls.Engine
	evaluator     *target.Evaluator
	coordinator   *assignment.Coordinator
	ward          *medical.Ward
	shopping      *acquisition.ShoppingList
	quartermaster *acquisition.Quartermaster
	procurer      acquisition.Procurer
	bonus         *bonus.Allocator
	gate          *dayadvance.Gate
}

// New builds a service over cfg.Campaign.
func New(cfg Config) (*Service, error) {
	if err := cfg.Campaign.validate(); err != nil {
		return nil, err
	}
	opts := cfg.Options
	if opts.MaxAdvanceRounds <= 0 {
		opts.MaxAdvanceRounds = defaultMaxAdvanceRounds
	}
	if opts.TransitDays <= 0 {
		opts.TransitDays = acquisition.DefaultTransitDays
	}
	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewSeededRoller(time.Now().UnixNano())
	}

	c := cfg.Campaign
	s := &Service{
		campaign: c,
		opts:     opts,
		roller:   roller,
		journal:  cfg.Journal,
		catalog:  i18n.GetCatalog(opts.Locale),
		tracer:   otel.Tracer("ops/app"),
	}
	s.engine = rolls.NewEngine(rolls.Options{IgnoreSkillFloor: opts.IgnoreSkillFloor}, s.shorthanded)
	s.evaluator = target.NewEvaluator(s.engine, c.Roster.Person)
	s.quartermaster = acquisition.NewQuartermaster(c.Roster, c.Ledger, c.Clock.Today, opts.PayForParts)
	s.procurer = cfg.Procurer
	if s.procurer == nil {
		s.procurer = s.quartermaster
	}
	s.shopping = acquisition.NewShoppingList(opts.TransitDays)
	s.ward = medical.NewWard(c.Roster, s.evaluator)
	s.coordinator = assignment.New(assignment.Config{
		Tasks:     c.Roster,
		Agents:    c.Roster,
		Evaluator: s.evaluator,
		Astechs:   c.Astechs,
		Fixer:     assignment.DiceFixer{Roller: roller},
		Shopping:  s.shopping,
		Options: assignment.Options{
			AstechTeamSize:   opts.AstechTeamSize,
			IgnoreSkillFloor: opts.IgnoreSkillFloor,
		},
	})
	s.bonus = bonus.New(c.Contracts, s.procurer, c.Roster.Unit, bonus.WithInconsistencyHandler(s.recordInconsistency))
	s.gate = dayadvance.NewGate(c.Clock, s.coordinator.Refresh, s.dayTicks()...)
	return s, nil
}

// Campaign returns the state the service operates on.
func (s *Service) Campaign() Campaign {
	return s.campaign
}

// Options returns the campaign rules.
func (s *Service) Options() Options {
	return s.opts
}

// Evaluator returns the shared target evaluator.
func (s *Service) Evaluator() *target.Evaluator {
	return s.evaluator
}

// Shopping returns the shopping list.
func (s *Service) Shopping() *acquisition.ShoppingList {
	return s.shopping
}

// OnRefresh registers a hook run after every action and day advance.
func (s *Service) OnRefresh(name string, fn func()) {
	s.coordinator.OnRefresh(name, fn)
}

// Message renders a user-facing message for a code.
func (s *Service) Message(code string, metadata map[string]string) string {
	return s.catalog.Format(code, metadata)
}

func (s *Service) shorthanded() int {
	doctors := len(s.campaign.Roster.Doctors())
	return pool.Shorthanded(s.campaign.Medics.Available(), doctors)
}
