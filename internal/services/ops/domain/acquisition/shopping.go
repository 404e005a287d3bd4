package acquisition

import (
	"sync"

	"github.com/louisbranch/campaignops/internal/core/check"
	"github.com/louisbranch/campaignops/internal/core/dice"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
)

const (
	// AvailabilityBase is the 2d6 target for finding an ordinary part.
	AvailabilityBase = 6
	// RetryDays is how long a failed search waits before trying again.
	RetryDays = 7
	// DefaultTransitDays is how long a found part takes to arrive.
	DefaultTransitDays = 3
)

// Item is a shopping-list entry.
type Item struct {
	Work       part.Part
	Quantity   int
	DaysToWait int
}

// Attempt records one daily search.
type Attempt struct {
	Work   part.Part
	Roll   int
	Target int
	Report Report
	// Done is set when the entry left the list.
	Done bool
}

// ShoppingList queues acquisitions that resolve on day advance.
type ShoppingList struct {
	mu          sync.Mutex
	items       []Item
	transitDays int
}

// NewShoppingList returns an empty list. Found parts take transitDays to
// arrive.
func NewShoppingList(transitDays int) *ShoppingList {
	if transitDays < 0 {
		transitDays = 0
	}
	return &ShoppingList{transitDays: transitDays}
}

// Add queues quantity units of work. Repeated requests for the same work
// accumulate.
func (s *ShoppingList) Add(work part.Part, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Work.ID == work.ID {
			s.items[i].Quantity += quantity
			return
		}
	}
	s.items = append(s.items, Item{Work: work, Quantity: quantity})
}

// Items returns the queue in order.
func (s *ShoppingList) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Remove drops the entry for work.
func (s *ShoppingList) Remove(workID part.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Work.ID == workID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// AvailabilityTarget is the target number for finding work.
func AvailabilityTarget(work part.Part) check.Target {
	t := check.NewTarget(AvailabilityBase, "availability")
	t.Add(work.Difficulty, "rarity")
	return t
}

// Tick searches for every entry that is not waiting. A success acquires one
// unit; a failure waits RetryDays. On a roller error the list keeps every
// entry not yet searched.
func (s *ShoppingList) Tick(roller dice.Roller, procurer Procurer) ([]Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var attempts []Attempt
	kept := make([]Item, 0, len(s.items))
	for i, item := range s.items {
		if item.DaysToWait > 0 {
			item.DaysToWait--
			kept = append(kept, item)
			continue
		}
		result, err := roller.Roll(dice.TwoD6)
		if err != nil {
			s.items = append(kept, s.items[i:]...)
			return attempts, err
		}
		target := AvailabilityTarget(item.Work).Value()
		attempt := Attempt{Work: item.Work, Roll: result.Total, Target: target}
		if check.MeetsTarget(result.Total, target) {
			attempt.Report = procurer.Acquire(item.Work, s.transitDays)
		}
		if attempt.Report.Found {
			item.Quantity--
		} else {
			item.DaysToWait = RetryDays
		}
		if item.Quantity <= 0 {
			attempt.Done = true
		} else {
			kept = append(kept, item)
		}
		attempts = append(attempts, attempt)
	}
	s.items = kept
	return attempts, nil
}
