// Package retirement tracks pending payouts and the annual retirement roll.
package retirement

import (
	"sync"
	"time"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/calendar"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
)

// RollInterval is the number of days between retirement rolls.
const RollInterval = 365

// People is the subset of the roster the tracker needs.
type People interface {
	People() []personnel.Person
	UpdatePerson(personnel.Person) error
}

// Ledger pays out retirees.
type Ledger interface {
	Debit(date time.Time, amount int64, description string) error
}

// Tracker remembers when the last roll happened.
type Tracker struct {
	mu       sync.Mutex
	lastRoll time.Time
	rolled   bool
}

// NewTracker returns a tracker with no roll on record.
func NewTracker() *Tracker {
	return &Tracker{}
}

// LastRoll returns the date of the last roll.
func (t *Tracker) LastRoll() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRoll, t.rolled
}

// RecordRoll marks a roll on date.
func (t *Tracker) RecordRoll(date time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastRoll = calendar.Day(date)
	t.rolled = true
}

// RollDue reports whether today is exactly one interval after the last roll.
func RollDue(last time.Time, rolled bool, today time.Time) bool {
	return rolled && calendar.DaysBetween(last, today) == RollInterval
}

// Unresolved returns people whose retirement payout is not finalized.
func Unresolved(people []personnel.Person) []personnel.Person {
	var out []personnel.Person
	for _, p := range people {
		if p.RetirementPending && !p.PayoutResolved {
			out = append(out, p)
		}
	}
	return out
}

// Resolve pays every unresolved retiree and deactivates them. It returns the
// total paid.
func Resolve(date time.Time, people People, ledger Ledger) (int64, error) {
	var total int64
	for _, p := range Unresolved(people.People()) {
		if p.Payout > 0 {
			if err := ledger.Debit(date, p.Payout, "retirement payout "+p.Name); err != nil {
				return total, err
			}
			total += p.Payout
		}
		p.PayoutResolved = true
		p.Active = false
		p.DoctorID = ""
		if err := people.UpdatePerson(p); err != nil {
			return total, err
		}
	}
	return total, nil
}
