package part

import "testing"

func TestModeSkillPenaltyAndMinutes(t *testing.T) {
	tests := []struct {
		mode    Mode
		penalty int
		minutes int
	}{
		{ModeNormal, 0, 100},
		{ModeExtra2, -1, 200},
		{ModeExtra3, -2, 300},
		{ModeExtra4, -3, 400},
		{ModeRush2, 1, 50},
		{ModeRush3, 2, 34},
		{ModeRush4, 3, 25},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.SkillPenalty(); got != tt.penalty {
				t.Fatalf("expected penalty %d, got %d", tt.penalty, got)
			}
			if got := tt.mode.Minutes(100); got != tt.minutes {
				t.Fatalf("expected %d minutes, got %d", tt.minutes, got)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, ok := ParseMode(""); !ok || m != ModeNormal {
		t.Fatalf("expected normal for empty, got %v", m)
	}
	if m, ok := ParseMode("Rush-3"); !ok || m != ModeRush3 {
		t.Fatalf("expected rush-3, got %v", m)
	}
	if _, ok := ParseMode("slow"); ok {
		t.Fatal("expected unknown mode to fail")
	}
}

func TestParseLocation(t *testing.T) {
	if loc, ok := ParseLocation("ct"); !ok || loc != LocationCenterTorso {
		t.Fatalf("expected CT, got %q", loc)
	}
	if loc, ok := ParseLocation("all"); !ok || loc != LocationAll {
		t.Fatalf("expected All, got %q", loc)
	}
	if _, ok := ParseLocation("XX"); ok {
		t.Fatal("expected unknown location to fail")
	}
}

func TestWorkPredicates(t *testing.T) {
	tests := []struct {
		name      string
		part      Part
		fixing    bool
		salvaging bool
		acquire   bool
	}{
		{name: "repair open", part: Part{Kind: KindRepair, State: StateUnassigned}, fixing: true},
		{name: "repair failed", part: Part{Kind: KindRepair, State: StateFailed}, fixing: true},
		{name: "repair done", part: Part{Kind: KindRepair, State: StateCompleted}},
		{name: "install missing", part: Part{Kind: KindInstall, State: StateMissing}, fixing: true},
		{name: "salvage", part: Part{Kind: KindSalvage, State: StateInProgress}, salvaging: true},
		{name: "scrap", part: Part{Kind: KindScrap}, salvaging: true},
		{name: "scrapped", part: Part{Kind: KindScrap, State: StateScrapped}},
		{name: "acquire", part: Part{Kind: KindAcquire}, acquire: true},
		{name: "destroyed", part: Part{Kind: KindRepair, State: StateDestroyed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.part.NeedsFixing(); got != tt.fixing {
				t.Fatalf("NeedsFixing: expected %v, got %v", tt.fixing, got)
			}
			if got := tt.part.IsSalvaging(); got != tt.salvaging {
				t.Fatalf("IsSalvaging: expected %v, got %v", tt.salvaging, got)
			}
			if got := tt.part.IsAcquisition(); got != tt.acquire {
				t.Fatalf("IsAcquisition: expected %v, got %v", tt.acquire, got)
			}
		})
	}
}

func TestWorkMinutesAccountsForProgress(t *testing.T) {
	p := Part{BaseMinutes: 120, Mode: ModeExtra2, MinutesSpent: 200}
	if got := p.WorkMinutes(); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
	p.MinutesSpent = 500
	if got := p.WorkMinutes(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCloneResetsIdentityAndProgress(t *testing.T) {
	p := Part{ID: "p1", Name: "Medium Laser", Quantity: 5, AssignedTech: "t1", MinutesSpent: 30, State: StateInProgress}
	c := p.Clone()
	if c.ID != "" || c.Quantity != 1 || c.AssignedTech != "" || c.MinutesSpent != 0 || c.State != StateUnassigned {
		t.Fatalf("unexpected clone %+v", c)
	}
	if c.Name != p.Name {
		t.Fatalf("expected name %q, got %q", p.Name, c.Name)
	}
	if p.Quantity != 5 {
		t.Fatal("expected original untouched")
	}
}

func TestIsSpare(t *testing.T) {
	spare := Part{Kind: KindRepair, State: StateCompleted, Quantity: 2}
	if !spare.IsSpare() {
		t.Fatal("expected spare")
	}
	spare.UnitID = "u1"
	if spare.IsSpare() {
		t.Fatal("expected installed part not to be spare")
	}
}

func TestEngineSideTorsos(t *testing.T) {
	for _, v := range []EngineVariant{EngineXL, EngineLight, EngineXXL} {
		if !v.SideTorsos() {
			t.Fatalf("expected %s to occupy side torsos", v)
		}
	}
	for _, v := range []EngineVariant{EngineStandard, EngineCompact} {
		if v.SideTorsos() {
			t.Fatalf("expected %s to stay in the center torso", v)
		}
	}
}
