package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
)

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Journal receives the run's work, day and bonus entries when set.
	Journal storage.Journal
	// Seed drives the dice when the script does not fix its rolls.
	Seed   int64
	Locale string
	// Confirmer answers advance steps that script no answers. Without one
	// those steps accept every confirmation.
	Confirmer app.Confirmer
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua scenarios against an in-process campaign.
type Runner struct {
	assertions *Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	seed       int64
	locale     string
	deps       runnerDeps
	state      *scenarioState
}

// NewRunner prepares a scenario runner.
func NewRunner(cfg Config) (*Runner, error) {
	return newRunnerWithDeps(cfg, runnerDeps{journal: cfg.Journal, confirmer: cfg.Confirmer})
}

// newRunnerWithDeps builds a Runner from pre-built dependencies.
// Config defaults (logger, timeout) are applied here so they are testable.
func newRunnerWithDeps(cfg Config, deps runnerDeps) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}

	return &Runner{
		assertions: &Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
		seed:       cfg.Seed,
		locale:     cfg.Locale,
		deps:       deps,
	}, nil
}

// Service returns the campaign built by the last run, or nil.
func (r *Runner) Service() *app.Service {
	if r.state == nil {
		return nil
	}
	return r.state.service
}

// LastAdvance returns the result of the most recent advance step, or nil.
func (r *Runner) LastAdvance() *app.AdvanceResult {
	if r.state == nil {
		return nil
	}
	return r.state.lastAdvance
}

// Failures counts expectations logged in log-only mode.
func (r *Runner) Failures() int {
	return r.assertions.Failures
}

// RunFile loads and executes a scenario file and returns the resulting
// campaign.
func RunFile(ctx context.Context, cfg Config, path string) (*app.Service, error) {
	runner, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := runner.RunScenario(ctx, scenario); err != nil {
		return runner.Service(), err
	}
	return runner.Service(), nil
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	r.state = newScenarioState()

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, r.state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
