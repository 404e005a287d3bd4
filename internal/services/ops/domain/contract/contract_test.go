package contract

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryKeepsMissionOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []ID{"c", "a", "b"} {
		if err := r.Add(Contract{ID: id, Active: id != "a"}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	all := r.Contracts()
	if len(all) != 3 || all[0].ID != "c" || all[1].ID != "a" || all[2].ID != "b" {
		t.Fatalf("unexpected order %+v", all)
	}
	active := r.Active()
	if len(active) != 2 || active[0].ID != "c" || active[1].ID != "b" {
		t.Fatalf("unexpected active order %+v", active)
	}
}

func TestAddRejectsDuplicatesAndNegativeBonus(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Contract{ID: "x"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Add(Contract{ID: "x"}); !errors.Is(err, ErrDuplicateContract) {
		t.Fatalf("expected ErrDuplicateContract, got %v", err)
	}
	if err := r.Add(Contract{ID: "y", BonusParts: -1}); !errors.Is(err, ErrNegativeBonus) {
		t.Fatalf("expected ErrNegativeBonus, got %v", err)
	}
}

func TestSpendBonusPartNeverGoesNegative(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Contract{ID: "x", Active: true, BonusParts: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.SpendBonusPart("x"); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if err := r.SpendBonusPart("x"); !errors.Is(err, ErrNoBonusCredit) {
		t.Fatalf("expected ErrNoBonusCredit, got %v", err)
	}
	if got := r.BonusParts("x"); got != 0 {
		t.Fatalf("expected 0 bonus parts, got %d", got)
	}
	if err := r.SpendBonusPart("missing"); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestCampaignBonusPool(t *testing.T) {
	r := NewRegistry()
	if err := r.SpendCampaignBonusPart(); !errors.Is(err, ErrNoBonusCredit) {
		t.Fatalf("expected ErrNoBonusCredit, got %v", err)
	}
	if err := r.SetCampaignBonusParts(2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.SpendCampaignBonusPart(); err != nil {
		t.Fatalf("spend: %v", err)
	}
	if got := r.CampaignBonusParts(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if err := r.SetCampaignBonusParts(-1); !errors.Is(err, ErrNegativeBonus) {
		t.Fatalf("expected ErrNegativeBonus, got %v", err)
	}
}

func TestDeploymentDeficit(t *testing.T) {
	tests := []struct {
		name string
		c    Contract
		want int
	}{
		{name: "met", c: Contract{Active: true, RequiredLances: 2, DeployedLances: 2}},
		{name: "short", c: Contract{Active: true, RequiredLances: 3, DeployedLances: 1}, want: 2},
		{name: "inactive", c: Contract{RequiredLances: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.DeploymentDeficit(); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestScenariosOn(t *testing.T) {
	day := time.Date(3025, time.March, 3, 0, 0, 0, 0, time.UTC)
	r := NewRegistry()
	if err := r.Add(Contract{ID: "live", Active: true}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Add(Contract{ID: "done", Scenarios: []Scenario{{ID: "old", Date: day}}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Schedule("live", Scenario{ID: "raid", Date: day.Add(14 * time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := r.Schedule("live", Scenario{ID: "later", Date: day.AddDate(0, 0, 1)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	got := r.ScenariosOn(day)
	if len(got) != 1 || got[0].ID != "raid" {
		t.Fatalf("expected only raid, got %+v", got)
	}
}

func TestContractCopiesAreIndependent(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Contract{ID: "x", Scenarios: []Scenario{{ID: "s1"}}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, _ := r.Contract("x")
	c.Scenarios[0].ID = "mutated"
	again, _ := r.Contract("x")
	if again.Scenarios[0].ID != "s1" {
		t.Fatalf("expected stored scenario untouched, got %q", again.Scenarios[0].ID)
	}
}
