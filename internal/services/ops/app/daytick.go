package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/dayadvance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/finance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// dayTicks is the day-boundary work, in order. Deliveries run before the
// shopping list so parts found today spend at least one day in transit.
func (s *Service) dayTicks() []dayadvance.Tick {
	return []dayadvance.Tick{
		{Name: "loans", Run: s.tickLoans},
		{Name: "pools", Run: s.tickPools},
		{Name: "personnel", Run: s.tickPersonnel},
		{Name: "maintenance", Run: s.tickMaintenance},
		{Name: "healing", Run: s.tickHealing},
		{Name: "deliveries", Run: s.tickDeliveries},
		{Name: "shopping", Run: s.tickShopping},
	}
}

func (s *Service) tickLoans(today time.Time) error {
	for _, tx := range s.campaign.Ledger.DailyTick(today) {
		log.Printf("%s: %s %s", today.Format(time.DateOnly), tx.Description, finance.FormatAmount(-tx.Amount))
	}
	return nil
}

func (s *Service) tickPools(time.Time) error {
	if err := s.syncAstechOvertime(); err != nil {
		return err
	}
	s.campaign.Astechs.Replenish()
	s.campaign.Medics.Replenish()
	return nil
}

func (s *Service) tickPersonnel(time.Time) error {
	shift := personnel.ShiftLength(s.opts.UseOvertime)
	for _, p := range s.campaign.Roster.Techs() {
		p.MinutesLeft = shift
		if err := s.campaign.Roster.UpdatePerson(p); err != nil {
			return err
		}
	}
	for _, u := range s.campaign.Roster.Units() {
		if u.EngineerID == "" {
			continue
		}
		engineer, ok := s.campaign.Roster.Person(u.EngineerID)
		if !ok || engineer.IsTech() {
			continue
		}
		engineer.MinutesLeft = shift
		if err := s.campaign.Roster.UpdatePerson(engineer); err != nil {
			return err
		}
	}
	return nil
}

// tickMaintenance draws each crewed unit's maintenance from the astech pool
// in roster order. Units the pool cannot cover are deferred.
func (s *Service) tickMaintenance(today time.Time) error {
	if !s.opts.CheckMaintenance {
		return nil
	}
	for _, u := range s.campaign.Roster.Units() {
		if !u.RequiresMaintenance() || u.SelfCrewed || !u.HasTech() {
			continue
		}
		if _, err := s.campaign.Astechs.Consume(u.MaintenanceMinutes); err != nil {
			if errors.Is(err, pool.ErrInsufficientPool) {
				log.Printf("%s: maintenance deferred for %s: %v", today.Format(time.DateOnly), u.Name, err)
				continue
			}
			return err
		}
	}
	return nil
}

func (s *Service) tickHealing(today time.Time) error {
	healings, err := s.ward.DailyHealing(s.roller)
	if err != nil {
		return fmt.Errorf("healing: %w", err)
	}
	for _, h := range healings {
		if h.Released {
			log.Printf("%s: patient %s released by %s", today.Format(time.DateOnly), h.Patient, h.Doctor)
		}
	}
	return nil
}

func (s *Service) tickShopping(today time.Time) error {
	attempts, err := s.shopping.Tick(s.roller, s.procurer)
	for _, a := range attempts {
		if !a.Done {
			continue
		}
		work, ok := s.campaign.Roster.Part(a.Work.ID)
		if !ok || !work.IsAcquisition() {
			continue
		}
		work.State = part.StateCompleted
		if uerr := s.campaign.Roster.UpdatePart(work); uerr != nil {
			log.Printf("%s: close acquisition %s: %v", today.Format(time.DateOnly), work.Name, uerr)
		}
	}
	return err
}

func (s *Service) tickDeliveries(today time.Time) error {
	arrived, err := s.quartermaster.Tick()
	for _, p := range arrived {
		log.Printf("%s: %s delivered", today.Format(time.DateOnly), p.Name)
	}
	return err
}

func traceState(state dayadvance.State, round int) trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String("ops.advance_state", string(state)),
		attribute.Int("ops.advance_round", round),
	)
}
