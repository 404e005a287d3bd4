// Package ops implements the campaign operations command: it runs a Lua
// campaign script, reports the resulting campaign and lists the journal.
package ops

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	platformcmd "github.com/louisbranch/campaignops/internal/platform/cmd"
	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
	"github.com/louisbranch/campaignops/internal/services/ops/storage/sqlite"
	"github.com/louisbranch/campaignops/internal/tools/scenario"
)

// ErrRefused reports that the last day advance of a run did not commit.
var ErrRefused = errors.New("day advance refused")

// Config holds ops command configuration. Environment variables carry the
// CAMPAIGNOPS_ prefix.
type Config struct {
	Scenario      string        `env:"SCENARIO_FILE"`
	JournalDBPath string        `env:"JOURNAL_DB_PATH"`
	AssumeYes     bool          `env:"ASSUME_YES"`
	Locale        string        `env:"LOCALE"           envDefault:"en-US"`
	Seed          int64         `env:"SEED"`
	Assertions    bool          `env:"SCENARIO_ASSERT"  envDefault:"true"`
	Verbose       bool          `env:"VERBOSE"`
	Timeout       time.Duration `env:"SCENARIO_TIMEOUT" envDefault:"10s"`

	// List names a journal to print instead of running a script: work,
	// days or bonus.
	List     string
	Filter   string
	PageSize int
}

// ParseConfig parses env defaults then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to campaign lua script")
	fs.StringVar(&cfg.JournalDBPath, "journal", cfg.JournalDBPath, "path to the sqlite journal (empty disables it)")
	fs.BoolVar(&cfg.AssumeYes, "yes", cfg.AssumeYes, "accept every day-advance confirmation without prompting")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "message locale")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "dice seed (0 picks one from the clock)")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.StringVar(&cfg.List, "list", cfg.List, "print a journal (work, days, bonus) and exit")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "AIP-160 filter for -list")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "maximum entries for -list")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the ops command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceOps, func(ctx context.Context) error {
		if cfg.List != "" {
			return runList(ctx, cfg, out)
		}
		return runScenario(ctx, cfg, out, errOut, nil)
	})
}

// runScenario runs the script. confirmer overrides the interactive prompt;
// tests pass one.
func runScenario(ctx context.Context, cfg Config, out, errOut io.Writer, confirmer *promptConfirmer) error {
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	var journal storage.Journal
	if cfg.JournalDBPath != "" {
		store, err := sqlite.Open(ctx, cfg.JournalDBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close journal: %v", err)
			}
		}()
		journal = store
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	runCfg := scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
		Journal:    journal,
		Seed:       cfg.Seed,
		Locale:     cfg.Locale,
	}
	if !cfg.AssumeYes {
		if confirmer == nil {
			confirmer = newPromptConfirmer(out)
		}
		runCfg.Confirmer = confirmer
	}

	runner, err := scenario.NewRunner(runCfg)
	if err != nil {
		return err
	}
	script, err := scenario.LoadScenarioFromFile(cfg.Scenario)
	if err != nil {
		return err
	}
	runErr := runner.RunScenario(ctx, script)
	if svc := runner.Service(); svc != nil {
		writeReport(out, svc, runner.LastAdvance(), cfg.Locale)
	}
	if runErr != nil {
		var coded *apperrors.Error
		if errors.As(runErr, &coded) {
			fmt.Fprintln(errOut, refusedBox.Render(refusal(runErr, cfg.Locale)))
		}
		return runErr
	}
	if last := runner.LastAdvance(); last != nil && !last.Committed() {
		return ErrRefused
	}
	return nil
}

func runList(ctx context.Context, cfg Config, out io.Writer) error {
	if cfg.JournalDBPath == "" {
		return errors.New("journal path is required for -list")
	}
	store, err := sqlite.Open(ctx, cfg.JournalDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	opts := storage.ListOptions{Filter: cfg.Filter, PageSize: cfg.PageSize}
	switch strings.ToLower(cfg.List) {
	case "work":
		entries, err := store.ListWork(ctx, opts)
		if err != nil {
			return err
		}
		writeWork(out, entries)
	case "days":
		entries, err := store.ListDays(ctx, opts)
		if err != nil {
			return err
		}
		writeDays(out, entries)
	case "bonus":
		entries, err := store.ListBonus(ctx, opts)
		if err != nil {
			return err
		}
		writeBonus(out, entries)
	default:
		return fmt.Errorf("unknown journal %q (want work, days or bonus)", cfg.List)
	}
	return nil
}
