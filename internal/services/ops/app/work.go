package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/assignment"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/bonus"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/eligibility"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DoTask runs one "do task" action. A task or technician that vanished
// since the list was drawn is a no-op: the zero report and a nil error.
func (s *Service) DoTask(ctx context.Context, req assignment.Request) (assignment.Report, error) {
	ctx, span := s.tracer.Start(ctx, "ops.DoTask")
	defer span.End()
	span.SetAttributes(
		attribute.String("ops.task_id", string(req.TaskID)),
		attribute.String("ops.tech_id", string(req.TechID)),
		attribute.Bool("ops.warehouse", req.Warehouse),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.coordinator.DoTask(req)
	if errors.Is(err, assignment.ErrMissingTask) || errors.Is(err, assignment.ErrMissingAgent) {
		log.Printf("do task %s: selection changed: %v", req.TaskID, err)
		span.SetAttributes(attribute.Bool("ops.noop", true))
		return assignment.Report{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return assignment.Report{}, err
	}
	span.SetAttributes(attribute.String("ops.outcome", string(report.Outcome)))

	if !report.Enqueued {
		s.recordWork(ctx, report)
	}
	return report, nil
}

// UseBonusPart resolves an acquisition immediately against bonus credit.
func (s *Service) UseBonusPart(ctx context.Context, taskID part.ID) (bonus.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ops.UseBonusPart")
	defer span.End()
	span.SetAttributes(attribute.String("ops.task_id", string(taskID)))

	s.mu.Lock()
	defer s.mu.Unlock()

	work, ok := s.campaign.Roster.Part(taskID)
	if !ok {
		return bonus.Result{}, assignment.ErrMissingTask
	}
	result, err := s.bonus.TryUseBonusPart(work)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	span.SetAttributes(
		attribute.Bool("ops.arrived", result.Report.ArrivesToday()),
		attribute.String("ops.bonus_source", string(result.Source)),
	)
	if result.Report.ArrivesToday() {
		work.State = part.StateCompleted
		if err := s.campaign.Roster.UpdatePart(work); err != nil {
			return result, err
		}
		s.shopping.Remove(work.ID)
		if !result.Inconsistent {
			s.recordBonus(ctx, storage.BonusEntry{
				TaskName:   work.Name,
				ContractID: string(result.Contract),
				Source:     string(result.Source),
			})
		}
	}
	s.coordinator.Refresh()
	return result, nil
}

// BonusAvailable reports whether the bonus-part action is enabled for a task.
func (s *Service) BonusAvailable(taskID part.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	work, ok := s.campaign.Roster.Part(taskID)
	return ok && work.IsAcquisition() && s.bonus.Available(work)
}

// TaskFilter narrows the repair-bay task list.
type TaskFilter struct {
	UnitID   unit.ID
	Location part.Location
	ShowAll  bool
}

// Tasks returns the visible tasks of a unit, or every unit, in roster order.
func (s *Service) Tasks(filter TaskFilter) []part.Part {
	location := filter.Location
	if location == part.LocationNone {
		location = part.LocationAll
	}
	var out []part.Part
	for _, task := range s.campaign.Roster.Tasks(filter.UnitID) {
		if eligibility.TaskVisible(task, s.unitType(task.UnitID), location) {
			out = append(out, task)
		}
	}
	return out
}

// EligibleTechs returns the technicians who may take task.
func (s *Service) EligibleTechs(taskID part.ID, showAll bool) []personnel.Person {
	task, ok := s.campaign.Roster.Part(taskID)
	if !ok {
		return nil
	}
	opts := eligibility.Options{ShowAll: showAll, IgnoreSkillFloor: s.opts.IgnoreSkillFloor}
	return eligibility.EligibleAgents(task, s.campaign.Roster.Techs(), s.unitType(task.UnitID), opts)
}

// Assignments maps every technician to the tasks it may take.
func (s *Service) Assignments(showAll bool) map[personnel.ID][]part.ID {
	opts := eligibility.Options{ShowAll: showAll, IgnoreSkillFloor: s.opts.IgnoreSkillFloor}
	var tasks []part.Part
	for _, p := range s.campaign.Roster.Parts() {
		if !p.IsAcquisition() && p.NeedsWork() {
			tasks = append(tasks, p)
		}
	}
	return eligibility.Partition(tasks, s.campaign.Roster.Techs(), s.unitType, opts)
}

func (s *Service) unitType(id unit.ID) unit.Type {
	if id == "" {
		return ""
	}
	u, ok := s.campaign.Roster.Unit(id)
	if !ok {
		return ""
	}
	return u.Type
}

func (s *Service) recordWork(ctx context.Context, report assignment.Report) {
	if s.journal == nil {
		return
	}
	entry := storage.WorkEntry{
		Day:           s.campaign.Clock.Today(),
		TaskID:        string(report.Source),
		TaskName:      report.Task.Name,
		AgentID:       string(report.Agent),
		Minutes:       report.Minutes,
		AstechMinutes: report.AstechMinutes,
		Target:        report.Target.Description,
		Roll:          report.Roll,
		Margin:        report.Margin,
		Outcome:       string(report.Outcome),
		UnitRemoved:   string(report.UnitRemoved),
	}
	if err := s.journal.RecordWork(ctx, entry); err != nil {
		log.Printf("journal work %s: %v", entry.TaskID, err)
	}
}

func (s *Service) recordBonus(ctx context.Context, entry storage.BonusEntry) {
	if s.journal == nil {
		return
	}
	entry.Day = s.campaign.Clock.Today()
	if err := s.journal.RecordBonus(ctx, entry); err != nil {
		log.Printf("journal bonus part %s: %v", entry.TaskName, err)
	}
}

func (s *Service) recordInconsistency(inc bonus.Inconsistency) {
	detail := ""
	if inc.Err != nil {
		detail = strings.TrimSpace(inc.Err.Error())
	}
	s.recordBonus(context.Background(), storage.BonusEntry{
		TaskName:     inc.Work.Name,
		ContractID:   string(inc.Contract),
		Inconsistent: true,
		Detail:       detail,
	})
}
