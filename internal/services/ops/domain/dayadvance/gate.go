package dayadvance

import (
	"errors"
	"fmt"
	"log"
	"time"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
)

// ErrNotReady indicates Commit was called with a decision that still blocks.
var ErrNotReady = apperrors.New(apperrors.CodeDayAdvanceNotReady, "day advance is not ready to commit")

// Tick is day-boundary work run after the clock moves.
type Tick struct {
	Name string
	Run  func(today time.Time) error
}

// Gate commits ready decisions.
type Gate struct {
	clock   Clock
	ticks   []Tick
	refresh func()
}

// NewGate builds a gate. Ticks run in the given order; refresh runs last.
func NewGate(clock Clock, refresh func(), ticks ...Tick) *Gate {
	return &Gate{clock: clock, ticks: append([]Tick(nil), ticks...), refresh: refresh}
}

// Commit advances the clock by exactly one day and runs the day ticks. A
// failing tick does not stop the others; their errors are returned joined.
func (g *Gate) Commit(d Decision) (time.Time, error) {
	if d.State != StateReady {
		return g.clock.Today(), apperrors.WithMetadata(apperrors.CodeDayAdvanceNotReady,
			"day advance is not ready to commit", map[string]string{"State": string(d.State)})
	}
	today := g.clock.Advance()

	var errs []error
	for _, tick := range g.ticks {
		if tick.Run == nil {
			continue
		}
		if err := tick.Run(today); err != nil {
			log.Printf("day tick %s: %v", tick.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", tick.Name, err))
		}
	}
	if g.refresh != nil {
		g.refresh()
	}
	return today, errors.Join(errs...)
}
