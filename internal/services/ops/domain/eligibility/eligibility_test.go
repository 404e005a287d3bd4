package eligibility

import (
	"testing"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

type feasibility bool

func (f feasibility) IsImpossible() bool { return bool(f) }

func mechTech(id personnel.ID, tier personnel.Tier) personnel.Person {
	return personnel.Person{
		ID:        id,
		Active:    true,
		Roles:     []personnel.Role{personnel.RoleTech},
		Specialty: personnel.CategoryMech,
		Skills:    map[personnel.Category]personnel.Tier{personnel.CategoryMech: tier},
	}
}

func TestTaskVisibleEngineSpillsIntoSideTorsos(t *testing.T) {
	for _, variant := range []part.EngineVariant{part.EngineXL, part.EngineLight, part.EngineXXL} {
		engine := part.Part{Location: part.LocationCenterTorso, Component: part.Engine(variant)}
		for _, loc := range []part.Location{part.LocationLeftTorso, part.LocationRightTorso, part.LocationCenterTorso} {
			if !TaskVisible(engine, unit.TypeMech, loc) {
				t.Fatalf("%s engine: expected visible under %s", variant, loc)
			}
		}
		if TaskVisible(engine, unit.TypeMech, part.LocationLeftLeg) {
			t.Fatalf("%s engine: expected hidden under LL", variant)
		}
	}
}

func TestTaskVisibleStandardEngineAndGyro(t *testing.T) {
	engine := part.Part{Location: part.LocationCenterTorso, Component: part.Engine(part.EngineStandard)}
	if TaskVisible(engine, unit.TypeMech, part.LocationLeftTorso) {
		t.Fatal("expected standard engine hidden under LT")
	}
	gyro := part.Part{Component: part.Gyro()}
	if !TaskVisible(gyro, unit.TypeMech, part.LocationCenterTorso) {
		t.Fatal("expected gyro visible under CT")
	}
	if TaskVisible(gyro, unit.TypeVehicle, part.LocationCenterTorso) {
		t.Fatal("expected vehicle gyro to use its own location")
	}
}

func TestTaskVisibleFilters(t *testing.T) {
	arm := part.Part{Location: part.LocationLeftArm, Component: part.Generic(part.ClassActuator)}
	tests := []struct {
		filter part.Location
		want   bool
	}{
		{part.LocationAll, true},
		{part.LocationLeftArm, true},
		{part.LocationRightArm, false},
	}
	for _, tt := range tests {
		if got := TaskVisible(arm, unit.TypeMech, tt.filter); got != tt.want {
			t.Fatalf("filter %s: expected %v, got %v", tt.filter, tt.want, got)
		}
	}
}

func TestSkillFloorHoldsRegardlessOfShowAll(t *testing.T) {
	modes := []part.Mode{part.ModeNormal, part.ModeExtra2, part.ModeExtra3, part.ModeExtra4,
		part.ModeRush2, part.ModeRush3, part.ModeRush4}
	for agentTier := personnel.TierUltraGreen; agentTier <= personnel.TierElite; agentTier++ {
		for minTier := personnel.TierUltraGreen; minTier <= personnel.TierImpossible; minTier++ {
			for _, mode := range modes {
				task := part.Part{Kind: part.KindRepair, MinSkill: minTier, Mode: mode}
				agent := mechTech("t1", agentTier)
				belowFloor := agentTier-personnel.Tier(mode.SkillPenalty()) < minTier
				for _, showAll := range []bool{false, true} {
					got := AgentEligible(task, agent, unit.TypeMech, Options{ShowAll: showAll})
					if belowFloor && got {
						t.Fatalf("tier %v min %v mode %v showAll %v: expected ineligible", agentTier, minTier, mode, showAll)
					}
					if !belowFloor && !got {
						t.Fatalf("tier %v min %v mode %v showAll %v: expected eligible", agentTier, minTier, mode, showAll)
					}
				}
			}
		}
	}
}

func TestIgnoreSkillFloorAdmitsAnySkilledTech(t *testing.T) {
	task := part.Part{Kind: part.KindRepair, MinSkill: personnel.TierImpossible}
	agent := mechTech("t1", personnel.TierGreen)
	if AgentEligible(task, agent, unit.TypeMech, Options{}) {
		t.Fatal("expected floor to exclude green tech")
	}
	if !AgentEligible(task, agent, unit.TypeMech, Options{IgnoreSkillFloor: true}) {
		t.Fatal("expected destroy-by-margin to admit green tech")
	}
}

func TestShowAllOverridesSpecialtyOnly(t *testing.T) {
	task := part.Part{Kind: part.KindRepair, MinSkill: personnel.TierGreen}
	crossTrained := personnel.Person{
		ID:        "t2",
		Specialty: personnel.CategoryAero,
		Skills: map[personnel.Category]personnel.Tier{
			personnel.CategoryAero: personnel.TierElite,
			personnel.CategoryMech: personnel.TierRegular,
		},
	}
	if AgentEligible(task, crossTrained, unit.TypeMech, Options{}) {
		t.Fatal("expected specialty mismatch to hide agent")
	}
	if !AgentEligible(task, crossTrained, unit.TypeMech, Options{ShowAll: true}) {
		t.Fatal("expected ShowAll to list cross-trained agent")
	}
	unskilled := personnel.Person{ID: "t3", Specialty: personnel.CategoryAero,
		Skills: map[personnel.Category]personnel.Tier{personnel.CategoryAero: personnel.TierElite}}
	if AgentEligible(task, unskilled, unit.TypeMech, Options{ShowAll: true}) {
		t.Fatal("expected ShowAll not to admit an agent without the skill")
	}
}

func TestNeedsWorkIsRequired(t *testing.T) {
	done := part.Part{Kind: part.KindRepair, State: part.StateCompleted}
	agent := mechTech("t1", personnel.TierElite)
	if AgentEligible(done, agent, unit.TypeMech, Options{ShowAll: true, IgnoreSkillFloor: true}) {
		t.Fatal("expected completed task to be ineligible")
	}
	salvage := part.Part{Kind: part.KindSalvage}
	if !AgentEligible(salvage, agent, unit.TypeMech, Options{}) {
		t.Fatal("expected salvage task to be eligible")
	}
}

func TestInProgressTaskIsBoundToItsTech(t *testing.T) {
	task := part.Part{Kind: part.KindRepair, State: part.StateInProgress, AssignedTech: "t1"}
	if !AgentEligible(task, mechTech("t1", personnel.TierRegular), unit.TypeMech, Options{}) {
		t.Fatal("expected owner to remain eligible")
	}
	if AgentEligible(task, mechTech("t2", personnel.TierElite), unit.TypeMech, Options{ShowAll: true}) {
		t.Fatal("expected other tech to be excluded")
	}
}

func TestWarehouseTaskUsesPartCategory(t *testing.T) {
	task := part.Part{Kind: part.KindRepair, Category: personnel.CategoryMech}
	if !AgentEligible(task, mechTech("t1", personnel.TierRegular), "", Options{}) {
		t.Fatal("expected warehouse mech part to be eligible for mech tech")
	}
	task.Category = personnel.CategoryAero
	if AgentEligible(task, mechTech("t1", personnel.TierRegular), "", Options{ShowAll: true}) {
		t.Fatal("expected aero part to be ineligible for mech-only tech")
	}
}

func TestDoctorEligible(t *testing.T) {
	doctor := personnel.Person{Active: true, Roles: []personnel.Role{personnel.RoleDoctor}}
	patient := personnel.Person{Active: true, Hits: 2}
	tests := []struct {
		name     string
		patient  personnel.Person
		doctor   personnel.Person
		caseload int
		target   Feasibility
		want     bool
	}{
		{name: "ok", patient: patient, doctor: doctor, caseload: 24, target: feasibility(false), want: true},
		{name: "full", patient: patient, doctor: doctor, caseload: 25, target: feasibility(false)},
		{name: "healthy", patient: personnel.Person{Active: true}, doctor: doctor, target: feasibility(false)},
		{name: "impossible", patient: patient, doctor: doctor, target: feasibility(true)},
		{name: "no target", patient: patient, doctor: doctor},
		{name: "not a doctor", patient: patient, doctor: personnel.Person{Active: true}, target: feasibility(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DoctorEligible(tt.patient, tt.doctor, tt.caseload, tt.target); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	tasks := []part.Part{
		{ID: "easy", Kind: part.KindRepair, UnitID: "u1", MinSkill: personnel.TierGreen},
		{ID: "hard", Kind: part.KindRepair, UnitID: "u1", MinSkill: personnel.TierVeteran},
		{ID: "aero", Kind: part.KindRepair, UnitID: "u2"},
	}
	agents := []personnel.Person{mechTech("green", personnel.TierGreen), mechTech("vet", personnel.TierVeteran)}
	types := map[string]unit.Type{"u1": unit.TypeMech, "u2": unit.TypeAero}
	got := Partition(tasks, agents, func(id unit.ID) unit.Type { return types[string(id)] }, Options{})
	if len(got["green"]) != 1 || got["green"][0] != "easy" {
		t.Fatalf("unexpected green subset %v", got["green"])
	}
	if len(got["vet"]) != 2 || got["vet"][0] != "easy" || got["vet"][1] != "hard" {
		t.Fatalf("unexpected veteran subset %v", got["vet"])
	}
}

func TestFilterVisibleAndEligibleAgents(t *testing.T) {
	tasks := []part.Part{
		{ID: "engine", Kind: part.KindRepair, Location: part.LocationCenterTorso, Component: part.Engine(part.EngineXL)},
		{ID: "leg", Kind: part.KindRepair, Location: part.LocationLeftLeg},
	}
	visible := FilterVisible(tasks, unit.TypeMech, part.LocationRightTorso)
	if len(visible) != 1 || visible[0].ID != "engine" {
		t.Fatalf("expected engine only, got %+v", visible)
	}
	agents := []personnel.Person{mechTech("a", personnel.TierRegular), mechTech("b", personnel.TierGreen)}
	eligible := EligibleAgents(part.Part{Kind: part.KindRepair, MinSkill: personnel.TierRegular}, agents, unit.TypeMech, Options{})
	if len(eligible) != 1 || eligible[0].ID != "a" {
		t.Fatalf("expected agent a only, got %+v", eligible)
	}
}
