// Package dice rolls polyhedral dice for work and healing checks.
package dice

import (
	"math/rand"
	"sync"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
)

var (
	// ErrMissingDice indicates a roll request without any dice.
	ErrMissingDice = apperrors.New(apperrors.CodeDiceMissing, "at least one die spec is required")
	// ErrInvalidDiceSpec indicates a die spec with non-positive sides or count.
	ErrInvalidDiceSpec = apperrors.New(apperrors.CodeDiceInvalidSpec, "dice sides and count must be greater than zero")
)

// Spec describes Count dice with Sides faces each.
type Spec struct {
	Sides int
	Count int
}

// TwoD6 is the standard check roll.
var TwoD6 = Spec{Sides: 6, Count: 2}

// Roll is the outcome of one Spec.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Result is the outcome of a whole request.
type Result struct {
	Rolls []Roll
	Total int
}

// Roller produces dice results. Implementations must be safe for use by a
// single goroutine at a time; SeededRoller additionally serializes callers.
type Roller interface {
	Roll(specs ...Spec) (Result, error)
}

// SeededRoller rolls dice from a deterministic pseudo-random source.
//
// Given the same seed and the same sequence of requests, the results are
// identical, which keeps scenario replays stable.
type SeededRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRoller creates a roller for seed.
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

// Roll rolls specs in order.
func (r *SeededRoller) Roll(specs ...Spec) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RollWithRng(r.rng, specs)
}

// RollWithRng rolls dice using a provided random source.
//
// Specs are processed in slice order and Result.Rolls mirrors that order.
// Result.Total is the sum of every die rolled across the request.
func RollWithRng(rng *rand.Rand, specs []Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0

	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return Result{}, ErrInvalidDiceSpec
		}

		results := make([]int, spec.Count)
		rollTotal := 0
		for i := 0; i < spec.Count; i++ {
			value := rng.Intn(spec.Sides) + 1
			results[i] = value
			rollTotal += value
		}

		rolls = append(rolls, Roll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return Result{
		Rolls: rolls,
		Total: total,
	}, nil
}

// Sequence is a Roller that replays fixed totals in order, wrapping around.
// Scenario scripts and tests use it to force outcomes.
type Sequence struct {
	mu     sync.Mutex
	totals []int
	next   int
}

// NewSequence returns a Roller yielding totals in order.
func NewSequence(totals ...int) *Sequence {
	return &Sequence{totals: append([]int(nil), totals...)}
}

// Roll returns the next fixed total as a single roll of the first spec.
func (s *Sequence) Roll(specs ...Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}
	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return Result{}, ErrInvalidDiceSpec
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.totals) == 0 {
		return Result{}, ErrMissingDice
	}
	total := s.totals[s.next%len(s.totals)]
	s.next++
	return Result{
		Rolls: []Roll{{Sides: specs[0].Sides, Results: []int{total}, Total: total}},
		Total: total,
	}, nil
}
