package scenario

import (
	"context"

	"github.com/louisbranch/campaignops/internal/core/dice"
	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/assignment"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/calendar"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/dayadvance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/finance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

const defaultStartDate = "3025-01-01"

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	if step.Kind != "campaign" {
		if err := r.ensureCampaign(state); err != nil {
			return err
		}
	}
	switch step.Kind {
	case "campaign":
		return r.runCampaignStep(state, step)
	case "astechs":
		_, err := state.service.HireAstechs(optionalInt(step.Args, "count", 0))
		return err
	case "medics":
		_, err := state.service.HireMedics(optionalInt(step.Args, "count", 0))
		return err
	case "unit":
		return r.runUnitStep(state, step)
	case "tech":
		return r.runTechStep(state, step)
	case "doctor":
		return r.runDoctorStep(state, step)
	case "person":
		return r.runPersonStep(state, step)
	case "part":
		return r.runPartStep(state, step)
	case "contract":
		return r.runContractStep(state, step)
	case "loan":
		return r.runLoanStep(state, step)
	case "do_task":
		return r.runDoTaskStep(ctx, state, step)
	case "bonus_part":
		return r.runBonusPartStep(ctx, state, step)
	case "assign_doctor":
		return r.runAssignDoctorStep(state, step)
	case "advance":
		return r.runAdvanceStep(ctx, state, step)
	case "resolve_retirements":
		_, err := state.service.ResolveRetirements()
		return err
	case "expect_pool":
		return r.runExpectPoolStep(state, step)
	case "expect_state":
		return r.runExpectStateStep(state, step)
	case "expect_date":
		return r.runExpectDateStep(state, step)
	case "expect_blocked":
		return r.runExpectBlockedStep(state, step)
	case "expect_balance":
		return r.runExpectBalanceStep(state, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runCampaignStep(state *scenarioState, step Step) error {
	if state.service != nil {
		return r.failf("campaign already created")
	}
	args := step.Args
	start, err := calendar.ParseDate(optionalString(args, "start", defaultStartDate))
	if err != nil {
		return r.failf("parse start: %v", err)
	}
	weekday, err := parseWeekday(optionalString(args, "deployment_day", "monday"))
	if err != nil {
		return r.failf("%v", err)
	}
	opts := app.Options{
		IgnoreSkillFloor:  optionalBool(args, "ignore_skill_floor", false),
		CheckMaintenance:  optionalBool(args, "check_maintenance", false),
		AttritionRuleset:  optionalBool(args, "attrition", false),
		ContractRuleset:   optionalBool(args, "contracts", false),
		DeploymentWeekday: weekday,
		AstechTeamSize:    optionalInt(args, "team_size", 0),
		UseOvertime:       optionalBool(args, "overtime", false),
		PayForParts:       optionalBool(args, "pay_for_parts", false),
		TransitDays:       optionalInt(args, "transit_days", 0),
		Locale:            r.locale,
	}

	roller := r.deps.roller
	if roller == nil {
		if rolls := readIntSlice(args, "rolls"); len(rolls) > 0 {
			roller = dice.NewSequence(rolls...)
		} else if seed := optionalInt(args, "seed", int(r.seed)); seed != 0 {
			roller = dice.NewSeededRoller(int64(seed))
		}
	}

	campaign := app.NewCampaign(start, int64(optionalInt(args, "balance", 0)))
	if n := optionalInt(args, "bonus_parts", 0); n > 0 {
		if err := campaign.Contracts.SetCampaignBonusParts(n); err != nil {
			return err
		}
	}
	svc, err := app.New(app.Config{
		Campaign: campaign,
		Options:  opts,
		Roller:   roller,
		Journal:  r.deps.journal,
	})
	if err != nil {
		return err
	}
	state.service = svc
	r.logf("campaign start %s", start.Format("2006-01-02"))
	return nil
}

func (r *Runner) runUnitStep(state *scenarioState, step Step) error {
	args := step.Args
	name := requiredString(args, "name")
	kind := unit.Type(optionalString(args, "type", string(unit.TypeMech)))
	if !kind.Valid() {
		return r.failf("unknown unit type %q", kind)
	}
	mission, err := r.contractID(state, optionalString(args, "contract", ""))
	if err != nil {
		return err
	}
	id, err := state.service.Campaign().Roster.AddUnit(unit.Unit{
		Name:               name,
		Type:               kind,
		SelfCrewed:         optionalBool(args, "self_crewed", false),
		CrewRequired:       optionalBool(args, "crew_required", false),
		MaintenanceMinutes: optionalInt(args, "maintenance", 0),
		MissionID:          mission,
		Salvage:            optionalBool(args, "salvage", false),
		Deployed:           optionalBool(args, "deployed", false),
	})
	if err != nil {
		return err
	}
	state.units[name] = id
	return nil
}

func (r *Runner) runTechStep(state *scenarioState, step Step) error {
	args := step.Args
	name := requiredString(args, "name")
	tier, err := parseSkill(args, "skill", personnel.TierRegular)
	if err != nil {
		return r.failf("%v", err)
	}
	specialty := personnel.Category(optionalString(args, "specialty", string(personnel.CategoryMech)))
	if !specialty.IsTech() {
		return r.failf("unknown tech specialty %q", specialty)
	}
	person := personnel.Person{
		Name:        name,
		Active:      true,
		Specialty:   specialty,
		Skills:      map[personnel.Category]personnel.Tier{specialty: tier},
		MinutesLeft: optionalInt(args, "minutes", personnel.ShiftLength(state.service.Options().UseOvertime)),
	}
	if !optionalBool(args, "engineer", false) {
		person.Roles = []personnel.Role{personnel.RoleTech}
	}
	id, err := r.addPerson(state, person)
	if err != nil {
		return err
	}

	roster := state.service.Campaign().Roster
	for _, field := range []string{"maintains", "engineer_of"} {
		unitName := optionalString(args, field, "")
		if unitName == "" {
			continue
		}
		unitID, err := r.unitID(state, unitName)
		if err != nil {
			return err
		}
		u, _ := roster.Unit(unitID)
		if field == "maintains" {
			u.TechID = id
		} else {
			u.EngineerID = id
		}
		if err := roster.UpdateUnit(u); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runDoctorStep(state *scenarioState, step Step) error {
	tier, err := parseSkill(step.Args, "skill", personnel.TierRegular)
	if err != nil {
		return r.failf("%v", err)
	}
	_, err = r.addPerson(state, personnel.Person{
		Name:      requiredString(step.Args, "name"),
		Active:    true,
		Roles:     []personnel.Role{personnel.RoleDoctor},
		Specialty: personnel.CategoryDoctor,
		Skills:    map[personnel.Category]personnel.Tier{personnel.CategoryDoctor: tier},
	})
	return err
}

func (r *Runner) runPersonStep(state *scenarioState, step Step) error {
	args := step.Args
	_, err := r.addPerson(state, personnel.Person{
		Name:              requiredString(args, "name"),
		Active:            true,
		Roles:             []personnel.Role{personnel.RoleOther},
		Hits:              optionalInt(args, "hits", 0),
		Injuries:          optionalInt(args, "injuries", 0),
		RetirementPending: optionalBool(args, "retiring", false),
		Payout:            int64(optionalInt(args, "payout", 0)),
	})
	return err
}

func (r *Runner) addPerson(state *scenarioState, p personnel.Person) (personnel.ID, error) {
	if _, ok := state.people[p.Name]; ok {
		return "", r.failf("person %q already exists", p.Name)
	}
	id, err := state.service.Campaign().Roster.AddPerson(p)
	if err != nil {
		return "", err
	}
	state.people[p.Name] = id
	return id, nil
}

func (r *Runner) runPartStep(state *scenarioState, step Step) error {
	args := step.Args
	name := requiredString(args, "name")
	if _, ok := state.parts[name]; ok {
		return r.failf("part %q already exists", name)
	}
	unitID, err := r.unitID(state, optionalString(args, "unit", ""))
	if err != nil {
		return err
	}
	location, ok := part.ParseLocation(optionalString(args, "location", ""))
	if !ok {
		return r.failf("unknown location %q", args["location"])
	}
	mode, ok := part.ParseMode(optionalString(args, "mode", ""))
	if !ok {
		return r.failf("unknown mode %q", args["mode"])
	}
	minSkill, err := parseSkill(args, "min_skill", personnel.TierUltraGreen)
	if err != nil {
		return r.failf("%v", err)
	}
	id, err := state.service.Campaign().Roster.AddPart(part.Part{
		Name:        name,
		Kind:        part.Kind(optionalString(args, "kind", string(part.KindRepair))),
		Mode:        mode,
		Location:    location,
		Category:    personnel.Category(optionalString(args, "category", "")),
		MinSkill:    minSkill,
		BaseMinutes: optionalInt(args, "minutes", 0),
		Difficulty:  optionalInt(args, "difficulty", 0),
		Quantity:    optionalInt(args, "quantity", 0),
		Cost:        int64(optionalInt(args, "cost", 0)),
		Essential:   optionalBool(args, "essential", false),
		Residual:    optionalBool(args, "residual", false),
		State:       part.State(optionalString(args, "state", "")),
		UnitID:      unitID,
	})
	if err != nil {
		return err
	}
	state.parts[name] = id
	return nil
}

func (r *Runner) runContractStep(state *scenarioState, step Step) error {
	args := step.Args
	name := requiredString(args, "name")
	id := contract.ID(optionalString(args, "id", name))
	registry := state.service.Campaign().Contracts
	err := registry.Add(contract.Contract{
		ID:             id,
		Name:           name,
		Active:         optionalBool(args, "active", true),
		BonusParts:     optionalInt(args, "bonus_parts", 0),
		RequiredLances: optionalInt(args, "required_lances", 0),
		DeployedLances: optionalInt(args, "deployed_lances", 0),
	})
	if err != nil {
		return err
	}
	state.contracts[name] = id
	if battle := optionalString(args, "battle", ""); battle != "" {
		date, err := calendar.ParseDate(battle)
		if err != nil {
			return r.failf("parse battle date: %v", err)
		}
		return registry.Schedule(id, contract.Scenario{
			ID:   string(id) + "-" + battle,
			Name: optionalString(args, "battle_name", name+" battle"),
			Date: date,
		})
	}
	return nil
}

func (r *Runner) runLoanStep(state *scenarioState, step Step) error {
	args := step.Args
	c := state.service.Campaign()
	return c.Ledger.AddLoan(c.Clock.Today(), finance.Loan{
		ID:         optionalString(args, "id", "loan"),
		Principal:  int64(optionalInt(args, "principal", 0)),
		PaymentDue: int64(optionalInt(args, "payment", 0)),
		Overdue:    int64(optionalInt(args, "overdue", 0)),
	})
}

func (r *Runner) runDoTaskStep(ctx context.Context, state *scenarioState, step Step) error {
	args := step.Args
	taskID, err := r.partID(state, requiredString(args, "task"))
	if err != nil {
		return err
	}
	req := assignment.Request{
		TaskID:    taskID,
		Warehouse: optionalBool(args, "warehouse", false),
		ShowAll:   optionalBool(args, "show_all", false),
	}
	if tech := optionalString(args, "tech", ""); tech != "" {
		if req.TechID, err = r.personID(state, tech); err != nil {
			return err
		}
	}
	report, err := state.service.DoTask(ctx, req)
	if done, cerr := r.checkError(args, err); done {
		return cerr
	}
	r.logf("do task %s: %s (roll %d, target %s)", report.Task.Name, report.Outcome, report.Roll, report.Target.Description)
	if want := optionalString(args, "expect", ""); want != "" && string(report.Outcome) != want {
		return r.assertf("task %s outcome = %q, want %q", report.Task.Name, report.Outcome, want)
	}
	return nil
}

func (r *Runner) runBonusPartStep(ctx context.Context, state *scenarioState, step Step) error {
	taskID, err := r.partID(state, requiredString(step.Args, "task"))
	if err != nil {
		return err
	}
	result, err := state.service.UseBonusPart(ctx, taskID)
	if done, cerr := r.checkError(step.Args, err); done {
		return cerr
	}
	if want := optionalString(step.Args, "expect_source", ""); want != "" && string(result.Source) != want {
		return r.assertf("bonus source = %q, want %q", result.Source, want)
	}
	return nil
}

// checkError matches err against the step's expect_error code. It reports
// done when the step has nothing left to check.
func (r *Runner) checkError(args map[string]any, err error) (bool, error) {
	want := optionalString(args, "expect_error", "")
	switch {
	case err == nil && want == "":
		return false, nil
	case err == nil:
		return true, r.assertf("expected error %s, got none", want)
	case want == "":
		return true, r.assertf("unexpected error: %v", err)
	case string(apperrors.CodeOf(err)) != want:
		return true, r.assertf("error code = %s, want %s (%v)", apperrors.CodeOf(err), want, err)
	default:
		return true, nil
	}
}

func (r *Runner) runAssignDoctorStep(state *scenarioState, step Step) error {
	patient, err := r.personID(state, requiredString(step.Args, "patient"))
	if err != nil {
		return err
	}
	doctor, err := r.personID(state, requiredString(step.Args, "doctor"))
	if err != nil {
		return err
	}
	_, cerr := r.checkError(step.Args, state.service.AssignDoctor(patient, doctor))
	return cerr
}

func (r *Runner) runAdvanceStep(ctx context.Context, state *scenarioState, step Step) error {
	args := step.Args
	var confirmer app.Confirmer = scriptConfirmer{
		answers:  readStringMap(args, "answers"),
		fallback: dayadvance.Choice(optionalString(args, "default", string(dayadvance.ChoiceYes))),
		logf:     r.logf,
	}
	_, scripted := args["answers"]
	if _, ok := args["default"]; ok {
		scripted = true
	}
	if r.deps.confirmer != nil && !scripted {
		confirmer = r.deps.confirmer
	}
	days := max(optionalInt(args, "days", 1), 1)
	for i := 0; i < days; i++ {
		result, err := state.service.AdvanceDay(ctx, confirmer)
		if err != nil {
			return err
		}
		state.lastAdvance = &result
		r.logf("advance: %s %s", result.State, result.Day.Format("2006-01-02"))
		if !result.Committed() {
			if result.Message != "" {
				r.logf("advance refused: %s", result.Message)
			}
			break
		}
	}
	if want := optionalString(args, "expect", ""); want != "" && string(state.lastAdvance.State) != want {
		return r.assertf("advance state = %q, want %q", state.lastAdvance.State, want)
	}
	return nil
}

func (r *Runner) runExpectPoolStep(state *scenarioState, step Step) error {
	c := state.service.Campaign()
	if want, ok := readInt(step.Args, "astech"); ok && c.Astechs.Available() != want {
		return r.assertf("astech pool = %d, want %d", c.Astechs.Available(), want)
	}
	if want, ok := readInt(step.Args, "medic"); ok && c.Medics.Available() != want {
		return r.assertf("medic pool = %d, want %d", c.Medics.Available(), want)
	}
	return nil
}

func (r *Runner) runExpectStateStep(state *scenarioState, step Step) error {
	args := step.Args
	roster := state.service.Campaign().Roster
	if name := optionalString(args, "part", ""); name != "" {
		id, err := r.partID(state, name)
		if err != nil {
			return err
		}
		p, ok := roster.Part(id)
		if removed, has := readBool(args, "removed"); has {
			if removed != !ok {
				return r.assertf("part %s removed = %v, want %v", name, !ok, removed)
			}
			return nil
		}
		if !ok {
			return r.assertf("part %s is gone", name)
		}
		if want := optionalString(args, "state", ""); want != "" && string(p.State) != want {
			return r.assertf("part %s state = %q, want %q", name, p.State, want)
		}
		if want, ok := readInt(args, "minutes_spent"); ok && p.MinutesSpent != want {
			return r.assertf("part %s minutes spent = %d, want %d", name, p.MinutesSpent, want)
		}
		if want, ok := readInt(args, "quantity"); ok && p.Quantity != want {
			return r.assertf("part %s quantity = %d, want %d", name, p.Quantity, want)
		}
	}
	if name := optionalString(args, "unit", ""); name != "" {
		id, err := r.unitID(state, name)
		if err != nil {
			return err
		}
		_, ok := roster.Unit(id)
		if removed, has := readBool(args, "removed"); has && removed != !ok {
			return r.assertf("unit %s removed = %v, want %v", name, !ok, removed)
		}
	}
	if name := optionalString(args, "person", ""); name != "" {
		id, err := r.personID(state, name)
		if err != nil {
			return err
		}
		p, ok := roster.Person(id)
		if !ok {
			return r.assertf("person %s is gone", name)
		}
		if want, ok := readInt(args, "minutes"); ok && p.MinutesLeft != want {
			return r.assertf("%s minutes left = %d, want %d", name, p.MinutesLeft, want)
		}
		if want, ok := readInt(args, "hits"); ok && p.Hits != want {
			return r.assertf("%s hits = %d, want %d", name, p.Hits, want)
		}
		if want, ok := readBool(args, "active"); ok && p.Active != want {
			return r.assertf("%s active = %v, want %v", name, p.Active, want)
		}
		if doctor := optionalString(args, "doctor", ""); doctor != "" {
			doctorID, err := r.personID(state, doctor)
			if err != nil {
				return err
			}
			if p.DoctorID != doctorID {
				return r.assertf("%s doctor = %q, want %q", name, p.DoctorID, doctorID)
			}
		}
	}
	return nil
}

func (r *Runner) runExpectDateStep(state *scenarioState, step Step) error {
	want, err := calendar.ParseDate(requiredString(step.Args, "date"))
	if err != nil {
		return r.failf("parse date: %v", err)
	}
	if got := state.service.Campaign().Clock.Today(); !got.Equal(want) {
		return r.assertf("date = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
	return nil
}

func (r *Runner) runExpectBlockedStep(state *scenarioState, step Step) error {
	last := state.lastAdvance
	if last == nil {
		return r.failf("expect_blocked needs a preceding advance")
	}
	if last.State != dayadvance.StateBlocked || last.Reason == nil {
		return r.assertf("advance state = %q, want blocked", last.State)
	}
	if want := optionalString(step.Args, "code", ""); want != "" && string(last.Reason.Code) != want {
		return r.assertf("blocked by %s, want %s", last.Reason.Code, want)
	}
	if want := optionalString(step.Args, "key", ""); want != "" && last.Reason.Metadata["Key"] != want {
		return r.assertf("declined key = %q, want %q", last.Reason.Metadata["Key"], want)
	}
	return nil
}

func (r *Runner) runExpectBalanceStep(state *scenarioState, step Step) error {
	want, ok := readInt(step.Args, "amount")
	if !ok {
		return r.failf("expect_balance amount is required")
	}
	if got := state.service.Campaign().Ledger.Balance(); got != int64(want) {
		return r.assertf("balance = %s, want %s", finance.FormatAmount(got), finance.FormatAmount(int64(want)))
	}
	return nil
}
