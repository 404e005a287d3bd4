// Package medical assigns patients to doctors and runs daily healing checks.
package medical

import (
	"strconv"

	"github.com/louisbranch/campaignops/internal/core/check"
	"github.com/louisbranch/campaignops/internal/core/dice"
	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/eligibility"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/target"
)

// HealingInterval is the number of days between healing checks.
const HealingInterval = 1

var (
	// ErrCaseloadFull indicates a doctor already at MaxCaseload.
	ErrCaseloadFull = apperrors.New(apperrors.CodeMedicalCaseloadFull, "doctor caseload is full")
	// ErrNoCareNeeded indicates a healthy patient.
	ErrNoCareNeeded = apperrors.New(apperrors.CodeMedicalNoCareNeeded, "patient needs no care")
	// ErrDoctorInactive indicates a doctor who cannot take patients.
	ErrDoctorInactive = apperrors.New(apperrors.CodeMedicalDoctorInactive, "doctor is not active")
	// ErrIneligible indicates a doctor who cannot treat the patient.
	ErrIneligible = apperrors.New(apperrors.CodeMedicalIneligible, "doctor cannot treat patient")
	// ErrUnknownPerson indicates a missing patient or doctor.
	ErrUnknownPerson = apperrors.New(apperrors.CodeRosterNotFound, "person not found")
)

// People is the roster subset the ward uses.
type People interface {
	Person(personnel.ID) (personnel.Person, bool)
	People() []personnel.Person
	UpdatePerson(personnel.Person) error
}

// Ward holds the doctor-patient assignments.
type Ward struct {
	people    People
	evaluator *target.Evaluator
}

// NewWard builds a ward.
func NewWard(people People, evaluator *target.Evaluator) *Ward {
	return &Ward{people: people, evaluator: evaluator}
}

// Caseload counts the patients assigned to doctor.
func (w *Ward) Caseload(doctorID personnel.ID) int {
	count := 0
	for _, p := range w.people.People() {
		if p.DoctorID == doctorID {
			count++
		}
	}
	return count
}

// Patients returns the patients assigned to doctor.
func (w *Ward) Patients(doctorID personnel.ID) []personnel.Person {
	var out []personnel.Person
	for _, p := range w.people.People() {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out
}

// Assign gives patient to doctor.
func (w *Ward) Assign(patientID, doctorID personnel.ID) error {
	patient, ok := w.people.Person(patientID)
	if !ok {
		return ErrUnknownPerson
	}
	doctor, ok := w.people.Person(doctorID)
	if !ok {
		return ErrUnknownPerson
	}
	if patient.DoctorID == doctorID {
		return nil
	}
	if !doctor.IsDoctor() {
		return ErrDoctorInactive
	}
	if !patient.NeedsCare() {
		return ErrNoCareNeeded
	}
	caseload := w.Caseload(doctorID)
	if caseload >= eligibility.MaxCaseload {
		return apperrors.WithMetadata(apperrors.CodeMedicalCaseloadFull, "doctor caseload is full", map[string]string{
			"Doctor":   doctor.Name,
			"Caseload": strconv.Itoa(caseload),
			"Limit":    strconv.Itoa(eligibility.MaxCaseload),
		})
	}
	result := w.evaluator.ForPatient(&patient, &doctor)
	if !eligibility.DoctorEligible(patient, doctor, caseload, result) {
		return apperrors.WithMetadata(apperrors.CodeMedicalIneligible, "doctor cannot treat patient", map[string]string{
			"Doctor":  doctor.Name,
			"Patient": patient.Name,
			"Reason":  result.Reason,
		})
	}
	patient.DoctorID = doctorID
	patient.DaysToWait = HealingInterval
	return w.people.UpdatePerson(patient)
}

// Unassign removes patient from their doctor.
func (w *Ward) Unassign(patientID personnel.ID) error {
	patient, ok := w.people.Person(patientID)
	if !ok {
		return ErrUnknownPerson
	}
	if patient.DoctorID == "" {
		return nil
	}
	patient.DoctorID = ""
	return w.people.UpdatePerson(patient)
}

// DeactivateDoctor takes a doctor off duty and releases their patients.
func (w *Ward) DeactivateDoctor(doctorID personnel.ID) error {
	doctor, ok := w.people.Person(doctorID)
	if !ok {
		return ErrUnknownPerson
	}
	for _, p := range w.Patients(doctorID) {
		p.DoctorID = ""
		if err := w.people.UpdatePerson(p); err != nil {
			return err
		}
	}
	doctor.Active = false
	return w.people.UpdatePerson(doctor)
}

// Healing is the outcome of one patient's daily check.
type Healing struct {
	Patient  personnel.ID
	Doctor   personnel.ID
	Roll     int
	Target   target.Result
	Healed   bool
	Released bool
}

// DailyHealing rolls for every assigned patient whose wait has elapsed.
// A success removes one hit and, once hits reach zero, the injuries. Fully
// healed patients are released.
func (w *Ward) DailyHealing(roller dice.Roller) ([]Healing, error) {
	var out []Healing
	for _, patient := range w.people.People() {
		if patient.DoctorID == "" {
			continue
		}
		doctor, ok := w.people.Person(patient.DoctorID)
		if !ok || !doctor.IsDoctor() {
			patient.DoctorID = ""
			if err := w.people.UpdatePerson(patient); err != nil {
				return out, err
			}
			continue
		}
		if patient.DaysToWait > 1 {
			patient.DaysToWait--
			if err := w.people.UpdatePerson(patient); err != nil {
				return out, err
			}
			continue
		}
		h := Healing{Patient: patient.ID, Doctor: doctor.ID}
		h.Target = w.evaluator.ForPatient(&patient, &doctor)
		if h.Target.IsFeasible() {
			result, err := roller.Roll(dice.TwoD6)
			if err != nil {
				return out, err
			}
			h.Roll = result.Total
			h.Healed = check.MeetsTarget(result.Total, h.Target.Value)
		}
		if h.Healed {
			patient.Hits--
			if patient.Hits <= 0 {
				patient.Hits = 0
				patient.Injuries = 0
			}
		}
		patient.DaysToWait = HealingInterval
		if !patient.NeedsCare() {
			patient.DoctorID = ""
			h.Released = true
		}
		if err := w.people.UpdatePerson(patient); err != nil {
			return out, err
		}
		out = append(out, h)
	}
	return out, nil
}
