package app

import (
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/pool"
)

// HireAstechs adds n astechs to the pool.
func (s *Service) HireAstechs(n int) (pool.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	capacity, _ := pool.Astechs(n, false)
	if capacity <= 0 {
		return pool.Change{}, pool.ErrInvalidPoolAmount
	}
	change, err := s.campaign.Astechs.Increase(capacity)
	if err != nil {
		return pool.Change{}, err
	}
	s.astechCount += n
	return change, s.syncAstechOvertime()
}

// ReleaseAstechs removes n astechs from staff. Minutes spent today, by
// maintenance or task work, stay spent; the balance is capped at what the
// remaining astechs supply.
func (s *Service) ReleaseAstechs(n int) (pool.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	capacity, _ := pool.Astechs(n, false)
	if capacity <= 0 || n > s.astechCount {
		return pool.Change{}, pool.ErrInvalidPoolAmount
	}
	_, extra := pool.Astechs(s.astechCount-n, s.opts.UseOvertime)
	change, err := s.campaign.Astechs.Release(capacity, extra)
	if err != nil {
		return pool.Change{}, err
	}
	s.astechCount -= n
	return change, nil
}

// AstechCount returns the number of astechs on staff.
func (s *Service) AstechCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.astechCount
}

func (s *Service) syncAstechOvertime() error {
	_, extra := pool.Astechs(s.astechCount, s.opts.UseOvertime)
	return s.campaign.Astechs.SetOvertime(extra)
}

// HireMedics adds n medics to the pool.
func (s *Service) HireMedics(n int) (pool.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaign.Medics.Increase(n)
}

// ReleaseMedics removes n medics from the pool.
func (s *Service) ReleaseMedics(n int) (pool.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.campaign.Medics.Decrease(n)
}

// AssignDoctor gives a patient to a doctor.
func (s *Service) AssignDoctor(patientID, doctorID personnel.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ward.Assign(patientID, doctorID); err != nil {
		return err
	}
	s.coordinator.Refresh()
	return nil
}

// UnassignDoctor releases a patient.
func (s *Service) UnassignDoctor(patientID personnel.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ward.Unassign(patientID); err != nil {
		return err
	}
	s.coordinator.Refresh()
	return nil
}

// DeactivateDoctor takes a doctor off duty and releases its patients.
func (s *Service) DeactivateDoctor(doctorID personnel.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ward.DeactivateDoctor(doctorID); err != nil {
		return err
	}
	s.coordinator.Refresh()
	return nil
}

// Caseload counts a doctor's patients.
func (s *Service) Caseload(doctorID personnel.ID) int {
	return s.ward.Caseload(doctorID)
}
