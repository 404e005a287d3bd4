package medical

import (
	"errors"
	"fmt"
	"testing"

	"github.com/louisbranch/campaignops/internal/core/dice"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/eligibility"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/roster"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/rolls"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/target"
)

type fixture struct {
	roster *roster.Roster
	ward   *Ward
	doctor personnel.ID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	n := 0
	r := roster.New(roster.WithIDGenerator(func() (string, error) {
		n++
		return fmt.Sprintf("p%d", n), nil
	}))
	doctorID, err := r.AddPerson(personnel.Person{
		Name:   "Doc",
		Active: true,
		Roles:  []personnel.Role{personnel.RoleDoctor},
		Skills: map[personnel.Category]personnel.Tier{personnel.CategoryDoctor: personnel.TierRegular},
	})
	if err != nil {
		t.Fatalf("add doctor: %v", err)
	}
	evaluator := target.NewEvaluator(rolls.NewEngine(rolls.Options{}, nil), r.Person)
	return fixture{roster: r, ward: NewWard(r, evaluator), doctor: doctorID}
}

func (f fixture) addPatient(t *testing.T, hits int) personnel.ID {
	t.Helper()
	id, err := f.roster.AddPerson(personnel.Person{Active: true, Hits: hits})
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}
	return id
}

func TestCaseloadLimit(t *testing.T) {
	f := newFixture(t)
	var patients []personnel.ID
	for i := 0; i < eligibility.MaxCaseload; i++ {
		id := f.addPatient(t, 1)
		if err := f.ward.Assign(id, f.doctor); err != nil {
			t.Fatalf("assign patient %d: %v", i, err)
		}
		patients = append(patients, id)
	}
	extra := f.addPatient(t, 1)
	if err := f.ward.Assign(extra, f.doctor); !errors.Is(err, ErrCaseloadFull) {
		t.Fatalf("expected ErrCaseloadFull for 26th patient, got %v", err)
	}
	if got := f.ward.Caseload(f.doctor); got != eligibility.MaxCaseload {
		t.Fatalf("expected caseload %d, got %d", eligibility.MaxCaseload, got)
	}

	if err := f.ward.Unassign(patients[0]); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := f.ward.Assign(extra, f.doctor); err != nil {
		t.Fatalf("expected reassignment to succeed, got %v", err)
	}
}

func TestAssignRejections(t *testing.T) {
	f := newFixture(t)
	healthy := f.addPatient(t, 0)
	if err := f.ward.Assign(healthy, f.doctor); !errors.Is(err, ErrNoCareNeeded) {
		t.Fatalf("expected ErrNoCareNeeded, got %v", err)
	}
	hurt := f.addPatient(t, 2)
	if err := f.ward.Assign(hurt, "ghost"); !errors.Is(err, ErrUnknownPerson) {
		t.Fatalf("expected ErrUnknownPerson, got %v", err)
	}
	unskilled, _ := f.roster.AddPerson(personnel.Person{Active: true, Roles: []personnel.Role{personnel.RoleDoctor}})
	if err := f.ward.Assign(hurt, unskilled); !errors.Is(err, ErrIneligible) {
		t.Fatalf("expected ErrIneligible, got %v", err)
	}
	if err := f.ward.DeactivateDoctor(f.doctor); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := f.ward.Assign(hurt, f.doctor); !errors.Is(err, ErrDoctorInactive) {
		t.Fatalf("expected ErrDoctorInactive, got %v", err)
	}
}

func TestDeactivateDoctorReleasesPatients(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient(t, 1)
	b := f.addPatient(t, 3)
	for _, id := range []personnel.ID{a, b} {
		if err := f.ward.Assign(id, f.doctor); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	if err := f.ward.DeactivateDoctor(f.doctor); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if got := f.ward.Caseload(f.doctor); got != 0 {
		t.Fatalf("expected empty caseload, got %d", got)
	}
	doctor, _ := f.roster.Person(f.doctor)
	if doctor.Active {
		t.Fatal("expected doctor inactive")
	}
}

func TestDailyHealing(t *testing.T) {
	f := newFixture(t)
	bruised := f.addPatient(t, 1)
	hurt := f.addPatient(t, 3)
	for _, id := range []personnel.ID{bruised, hurt} {
		if err := f.ward.Assign(id, f.doctor); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	// Regular doctor: target 3. First patient succeeds, second fails.
	results, err := f.ward.DailyHealing(dice.NewSequence(12, 2))
	if err != nil {
		t.Fatalf("healing: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(results))
	}
	if !results[0].Healed || !results[0].Released {
		t.Fatalf("expected first patient healed and released, got %+v", results[0])
	}
	if results[1].Healed || results[1].Released {
		t.Fatalf("expected second patient still under care, got %+v", results[1])
	}
	p, _ := f.roster.Person(bruised)
	if p.Hits != 0 || p.DoctorID != "" {
		t.Fatalf("expected healthy unassigned patient, got %+v", p)
	}
	p, _ = f.roster.Person(hurt)
	if p.Hits != 3 || p.DoctorID != f.doctor {
		t.Fatalf("expected untreated patient, got %+v", p)
	}
}

func TestDailyHealingDropsMissingDoctor(t *testing.T) {
	f := newFixture(t)
	id := f.addPatient(t, 2)
	if err := f.ward.Assign(id, f.doctor); err != nil {
		t.Fatalf("assign: %v", err)
	}
	doctor, _ := f.roster.Person(f.doctor)
	doctor.Active = false
	if err := f.roster.UpdatePerson(doctor); err != nil {
		t.Fatalf("update doctor: %v", err)
	}
	results, err := f.ward.DailyHealing(dice.NewSequence(12))
	if err != nil {
		t.Fatalf("healing: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no checks, got %+v", results)
	}
	p, _ := f.roster.Person(id)
	if p.DoctorID != "" {
		t.Fatalf("expected patient released, got doctor %q", p.DoctorID)
	}
}
