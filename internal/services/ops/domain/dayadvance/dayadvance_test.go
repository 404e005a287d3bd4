package dayadvance

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/calendar"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/pool"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/retirement"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// monday is 2 March 2026.
var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func cleanSnapshot() Snapshot {
	return Snapshot{
		Today:             monday,
		CheckMaintenance:  true,
		AstechAvailable:   480,
		AttritionRuleset:  true,
		ContractRuleset:   true,
		DeploymentWeekday: time.Monday,
	}
}

func TestCleanAdvanceMovesExactlyOneDay(t *testing.T) {
	d := Evaluate(cleanSnapshot(), nil)
	if d.State != StateReady || len(d.Pending) != 0 || d.Reason != nil {
		t.Fatalf("expected ready, got %+v", d)
	}

	clock := calendar.NewClock(monday)
	var ran []string
	refreshed := false
	gate := NewGate(clock, func() { refreshed = true },
		Tick{Name: "loans", Run: func(time.Time) error { ran = append(ran, "loans"); return nil }},
		Tick{Name: "pools", Run: func(time.Time) error { ran = append(ran, "pools"); return nil }},
	)
	today, err := gate.Commit(d)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if want := monday.AddDate(0, 0, 1); !today.Equal(want) || !clock.Today().Equal(want) {
		t.Fatalf("expected %v, got %v", want, today)
	}
	if !reflect.DeepEqual(ran, []string{"loans", "pools"}) || !refreshed {
		t.Fatalf("expected ticks then refresh, got %v refreshed=%v", ran, refreshed)
	}
}

func TestOverdueLoansAlwaysBlock(t *testing.T) {
	everything := Answers{
		KeyRetirementPayouts:       ChoiceResolve,
		KeyUnmaintained:            ChoiceYes,
		KeyAstechShortfall:         ChoiceYes,
		UnderDeployedKey("c1"):     ChoiceYes,
		PendingBattleKey("ambush"): ChoiceYes,
	}
	snapshots := []Snapshot{
		{OverdueTotal: 1},
		{OverdueTotal: 250000, UnresolvedRetirements: 2},
		{OverdueTotal: 10, CheckMaintenance: true, Unmaintained: 3, AstechNeeded: 900},
	}
	for _, s := range snapshots {
		for _, answers := range []Answers{nil, everything} {
			d := Evaluate(s, answers)
			if d.State != StateBlocked || d.Reason == nil || d.Reason.Code != apperrors.CodeDayAdvanceOverdueLoans {
				t.Fatalf("expected overdue block for %+v, got %+v", s, d)
			}
			if len(d.Pending) != 0 {
				t.Fatalf("expected no confirmations, got %+v", d.Pending)
			}
		}
	}
	clock := calendar.NewClock(monday)
	if _, err := NewGate(clock, nil).Commit(Evaluate(snapshots[0], everything)); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if !clock.Today().Equal(monday) {
		t.Fatal("expected clock unchanged")
	}
}

func TestRetirementPayoutsStopCollection(t *testing.T) {
	s := cleanSnapshot()
	s.UnresolvedRetirements = 2
	s.Unmaintained = 1

	d := Evaluate(s, nil)
	if d.State != StatePending || len(d.Pending) != 1 || d.Pending[0].Key != KeyRetirementPayouts {
		t.Fatalf("expected only the payout confirmation, got %+v", d)
	}
	if got := d.Pending[0].Choices; !reflect.DeepEqual(got, []Choice{ChoiceResolve, ChoiceCancel}) {
		t.Fatalf("expected resolve/cancel, got %v", got)
	}

	if d := Evaluate(s, Answers{KeyRetirementPayouts: ChoiceResolve}); d.State != StateResolveRetirements {
		t.Fatalf("expected resolve state, got %s", d.State)
	}
	d = Evaluate(s, Answers{KeyRetirementPayouts: ChoiceCancel})
	if d.State != StateBlocked || d.Reason.Code != apperrors.CodeDayAdvanceDeclined {
		t.Fatalf("expected declined, got %+v", d)
	}
}

func TestRetirementRollIsNoticeOnly(t *testing.T) {
	s := cleanSnapshot()
	s.RetirementRollDue = true
	d := Evaluate(s, nil)
	if d.State != StateReady {
		t.Fatalf("expected ready, got %s", d.State)
	}
	if len(d.Notices) != 1 || d.Notices[0].Code != apperrors.CodeDayAdvanceRetirementRoll {
		t.Fatalf("expected retirement roll notice, got %+v", d.Notices)
	}

	s.AttritionRuleset = false
	if d := Evaluate(s, nil); len(d.Notices) != 0 {
		t.Fatalf("expected no notice without the attrition ruleset, got %+v", d.Notices)
	}
}

func TestAstechShortfallThreshold(t *testing.T) {
	tests := []struct {
		name   string
		needed int
		prompt bool
	}{
		{name: "well under", needed: 60},
		{name: "exactly available", needed: 100},
		{name: "one short", needed: 101, prompt: true},
		{name: "far short", needed: 960, prompt: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cleanSnapshot()
			s.AstechAvailable = 100
			s.AstechNeeded = tt.needed
			d := Evaluate(s, nil)
			if !tt.prompt {
				if d.State != StateReady {
					t.Fatalf("expected ready, got %+v", d)
				}
				return
			}
			if d.State != StatePending || len(d.Pending) != 1 || d.Pending[0].Key != KeyAstechShortfall {
				t.Fatalf("expected astech confirmation, got %+v", d)
			}
			if got, want := d.Pending[0].Metadata["Shortfall"], tt.needed-100; got != strconv.Itoa(want) {
				t.Fatalf("expected shortfall %d, got %s", want, got)
			}
		})
	}
}

func TestMaintenanceConfirmations(t *testing.T) {
	s := cleanSnapshot()
	s.Unmaintained = 2
	s.AstechNeeded = 600

	d := Evaluate(s, nil)
	if len(d.Pending) != 2 || d.Pending[0].Key != KeyUnmaintained || d.Pending[1].Key != KeyAstechShortfall {
		t.Fatalf("expected unmaintained then astech, got %+v", d.Pending)
	}
	d = Evaluate(s, Answers{KeyUnmaintained: ChoiceYes})
	if d.State != StatePending || len(d.Pending) != 1 {
		t.Fatalf("expected astech still pending, got %+v", d)
	}
	d = Evaluate(s, Answers{KeyUnmaintained: ChoiceYes, KeyAstechShortfall: ChoiceNo})
	if d.State != StateBlocked || d.Reason.Metadata["Key"] != string(KeyAstechShortfall) {
		t.Fatalf("expected astech decline, got %+v", d)
	}
	d = Evaluate(s, Answers{KeyUnmaintained: ChoiceYes, KeyAstechShortfall: ChoiceYes})
	if d.State != StateReady {
		t.Fatalf("expected ready, got %+v", d)
	}

	s.CheckMaintenance = false
	if d := Evaluate(s, nil); d.State != StateReady {
		t.Fatalf("expected maintenance checks skipped, got %+v", d)
	}
}

func TestDeploymentAndBattleChecks(t *testing.T) {
	short := contract.Contract{ID: "c1", Name: "Garrison", Active: true, RequiredLances: 2, DeployedLances: 1}
	battle := contract.Scenario{ID: "ambush", Name: "Ambush", Date: monday}

	s := cleanSnapshot()
	s.UnderDeployed = []contract.Contract{short}
	d := Evaluate(s, nil)
	if len(d.Pending) != 1 || d.Pending[0].Key != UnderDeployedKey("c1") {
		t.Fatalf("expected deployment confirmation on monday, got %+v", d)
	}

	s.Today = monday.AddDate(0, 0, 1)
	if d := Evaluate(s, nil); d.State != StateReady {
		t.Fatalf("expected deployment skipped off weekday, got %+v", d)
	}

	s.ScenariosToday = []contract.Scenario{battle}
	d = Evaluate(s, nil)
	if len(d.Pending) != 1 || d.Pending[0].Key != PendingBattleKey("ambush") {
		t.Fatalf("expected battle confirmation, got %+v", d)
	}
	if d := Evaluate(s, Answers{PendingBattleKey("ambush"): ChoiceNo}); d.State != StateBlocked {
		t.Fatalf("expected block, got %+v", d)
	}

	s.ContractRuleset = false
	s.Today = monday
	if d := Evaluate(s, nil); d.State != StateReady {
		t.Fatalf("expected ruleset off to skip checks, got %+v", d)
	}
}

func TestCommitJoinsTickErrors(t *testing.T) {
	clock := calendar.NewClock(monday)
	boom := errors.New("boom")
	var later bool
	gate := NewGate(clock, nil,
		Tick{Name: "first", Run: func(time.Time) error { return boom }},
		Tick{Name: "second", Run: func(time.Time) error { later = true; return nil }},
	)
	if _, err := gate.Commit(Decision{State: StateReady}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !later {
		t.Fatal("expected later ticks to run")
	}
}

type fakeLedger int64

func (f fakeLedger) OverdueTotal() int64 { return int64(f) }

type fakePeople []personnel.Person

func (f fakePeople) People() []personnel.Person { return f }

type fakeUnits []unit.Unit

func (f fakeUnits) Units() []unit.Unit { return f }

func TestCollect(t *testing.T) {
	astechs, err := pool.New("astech", 100)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	// Minutes spent today do not count against tomorrow's maintenance.
	if _, err := astechs.Consume(90); err != nil {
		t.Fatalf("consume: %v", err)
	}
	registry := contract.NewRegistry()
	for _, c := range []contract.Contract{
		{ID: "c1", Active: true, RequiredLances: 2, DeployedLances: 1,
			Scenarios: []contract.Scenario{{ID: "s1", Date: monday}}},
		{ID: "c2", Active: true, RequiredLances: 1, DeployedLances: 1},
	} {
		if err := registry.Add(c); err != nil {
			t.Fatalf("add contract: %v", err)
		}
	}
	tracker := retirement.NewTracker()
	tracker.RecordRoll(monday.AddDate(0, 0, -retirement.RollInterval))

	src := Sources{
		Clock:  calendar.NewClock(monday),
		Ledger: fakeLedger(0),
		People: fakePeople{
			{ID: "r1", RetirementPending: true},
			{ID: "r2", RetirementPending: true, PayoutResolved: true},
		},
		Units: fakeUnits{
			{ID: "u1", MaintenanceMinutes: 60, TechID: "t1"},
			{ID: "u2", MaintenanceMinutes: 45, TechID: "t1"},
			{ID: "u3", MaintenanceMinutes: 30},
			{ID: "u4", MaintenanceMinutes: 200, SelfCrewed: true, EngineerID: "e1", TechID: "t2"},
			{ID: "u5", MaintenanceMinutes: 90, TechID: "t1", Salvage: true},
		},
		Astechs:    astechs,
		Contracts:  registry,
		Retirement: tracker,
	}
	s := Collect(src, Rules{CheckMaintenance: true, AttritionRuleset: true, ContractRuleset: true, DeploymentWeekday: time.Monday})

	if s.UnresolvedRetirements != 1 || !s.RetirementRollDue {
		t.Fatalf("unexpected retirement fields %+v", s)
	}
	if s.Unmaintained != 1 || s.AstechNeeded != 105 || s.AstechAvailable != 100 {
		t.Fatalf("expected 1 unmaintained and 105 of 100 minutes, got %d %d %d", s.Unmaintained, s.AstechNeeded, s.AstechAvailable)
	}
	if len(s.UnderDeployed) != 1 || s.UnderDeployed[0].ID != "c1" || len(s.ScenariosToday) != 1 {
		t.Fatalf("unexpected contract fields %+v", s)
	}

	d := Evaluate(s, nil)
	if d.State != StatePending || d.Pending[0].Key != KeyRetirementPayouts {
		t.Fatalf("expected payout confirmation first, got %+v", d)
	}
}
