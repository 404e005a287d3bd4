package app

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/dayadvance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/retirement"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Prompt is one confirmation shown to the operator.
type Prompt struct {
	Key     dayadvance.Key
	Code    apperrors.Code
	Text    string
	Choices []dayadvance.Choice
}

// Confirmer answers day-advance prompts. Confirm blocks until the operator
// answers.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (dayadvance.Choice, error)
	Notify(ctx context.Context, text string)
}

// AdvanceResult is the outcome of AdvanceDay.
type AdvanceResult struct {
	State dayadvance.State
	// Day is the campaign date after the attempt.
	Day    time.Time
	Reason *dayadvance.Rejection
	// Message is the rendered rejection text.
	Message string
	Notices []string
	// Paid is the retirement payout total resolved during the attempt.
	Paid int64
}

// Committed reports whether the day moved.
func (r AdvanceResult) Committed() bool {
	return r.State == dayadvance.StateCommitted
}

// EvaluateDay runs the gate once without side effects.
func (s *Service) EvaluateDay(answers dayadvance.Answers) dayadvance.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dayadvance.Evaluate(s.snapshot(), answers)
}

// AdvanceDay evaluates the gate, asks confirmer the pending confirmations
// in order and commits when everything is answered. Asking stops at the
// first answer other than yes; an empty or unknown answer counts as cancel. A refusal or a hard
// block leaves the campaign untouched and is reported through the result,
// not the error.
func (s *Service) AdvanceDay(ctx context.Context, confirmer Confirmer) (AdvanceResult, error) {
	ctx, span := s.tracer.Start(ctx, "ops.AdvanceDay")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.campaign.Clock.Today()
	answers := dayadvance.Answers{}
	var paid int64
	for round := 0; round < s.opts.MaxAdvanceRounds; round++ {
		if err := ctx.Err(); err != nil {
			return AdvanceResult{Day: start}, err
		}
		d := dayadvance.Evaluate(s.snapshot(), answers)
		span.AddEvent("evaluate", traceState(d.State, round))

		switch d.State {
		case dayadvance.StateBlocked:
			result := AdvanceResult{State: d.State, Day: start, Reason: d.Reason, Paid: paid}
			result.Message = s.catalog.Format(string(d.Reason.Code), d.Reason.Metadata)
			span.SetAttributes(attribute.String("ops.advance_state", string(d.State)))
			s.recordDay(ctx, start, d)
			return result, nil

		case dayadvance.StateResolveRetirements:
			total, err := retirement.Resolve(start, s.campaign.Roster, s.campaign.Ledger)
			paid += total
			if err != nil {
				span.RecordError(err)
				return AdvanceResult{Day: start, Paid: paid}, fmt.Errorf("resolve retirements: %w", err)
			}

		case dayadvance.StatePending:
			if confirmer == nil {
				return AdvanceResult{State: d.State, Day: start, Paid: paid}, fmt.Errorf("%d confirmations pending and no confirmer", len(d.Pending))
			}
			for _, c := range d.Pending {
				choice, err := confirmer.Confirm(ctx, Prompt{
					Key:     c.Key,
					Code:    c.Code,
					Text:    s.catalog.Format(string(c.Code), c.Metadata),
					Choices: c.Choices,
				})
				if err != nil {
					return AdvanceResult{State: d.State, Day: start, Paid: paid}, fmt.Errorf("confirm %s: %w", c.Key, err)
				}
				choice = settle(c, choice)
				answers[c.Key] = choice
				if choice != dayadvance.ChoiceYes {
					// The first refusal decides; later checks are not asked.
					break
				}
			}

		case dayadvance.StateReady:
			result := AdvanceResult{State: dayadvance.StateCommitted, Paid: paid}
			for _, n := range d.Notices {
				text := s.catalog.Format(string(n.Code), n.Metadata)
				result.Notices = append(result.Notices, text)
				if confirmer != nil {
					confirmer.Notify(ctx, text)
				}
			}
			day, err := s.gate.Commit(d)
			result.Day = day
			d.State = dayadvance.StateCommitted
			s.recordDay(ctx, start, d)
			span.SetAttributes(attribute.String("ops.advance_state", string(d.State)))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return result, err
			}
			return result, nil
		}
	}
	return AdvanceResult{Day: start, Paid: paid}, fmt.Errorf("day advance did not settle after %d rounds", s.opts.MaxAdvanceRounds)
}

// settle maps an answer outside the offered choices to cancel.
func settle(c dayadvance.Confirmation, choice dayadvance.Choice) dayadvance.Choice {
	if slices.Contains(c.Choices, choice) {
		return choice
	}
	return dayadvance.ChoiceCancel
}

// ResolveRetirements finalizes every pending payout now.
func (s *Service) ResolveRetirements() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, err := retirement.Resolve(s.campaign.Clock.Today(), s.campaign.Roster, s.campaign.Ledger)
	s.coordinator.Refresh()
	return total, err
}

// RecordRetirementRoll marks today as the last annual retirement roll.
func (s *Service) RecordRetirementRoll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaign.Retirement.RecordRoll(s.campaign.Clock.Today())
}

func (s *Service) snapshot() dayadvance.Snapshot {
	c := s.campaign
	return dayadvance.Collect(dayadvance.Sources{
		Clock:      c.Clock,
		Ledger:     c.Ledger,
		People:     c.Roster,
		Units:      c.Roster,
		Astechs:    c.Astechs,
		Contracts:  c.Contracts,
		Retirement: c.Retirement,
	}, dayadvance.Rules{
		CheckMaintenance:  s.opts.CheckMaintenance,
		AttritionRuleset:  s.opts.AttritionRuleset,
		ContractRuleset:   s.opts.ContractRuleset,
		DeploymentWeekday: s.opts.DeploymentWeekday,
	})
}

func (s *Service) recordDay(ctx context.Context, day time.Time, d dayadvance.Decision) {
	if s.journal == nil {
		return
	}
	entry := storage.DayEntry{Day: day, State: string(d.State), Notices: len(d.Notices)}
	if d.Reason != nil {
		entry.Reason = string(d.Reason.Code)
		if key := d.Reason.Metadata["Key"]; key != "" {
			entry.Reason += ":" + key
		}
	}
	if err := s.journal.RecordDay(ctx, entry); err != nil {
		log.Printf("journal day %s: %v", day.Format(time.DateOnly), err)
	}
}
