// Package acquisition buys parts: immediately through a Procurer, or over
// several days through the shopping list.
package acquisition

import (
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
)

// Report describes one acquisition attempt.
type Report struct {
	Found bool
	Days  int
	Text  string
}

// ArrivesToday reports whether the part is in stock now.
func (r Report) ArrivesToday() bool {
	return r.Found && r.Days == 0
}

// Procurer finds a part and schedules its delivery.
type Procurer interface {
	Acquire(work part.Part, transitDays int) Report
}

// Stock receives delivered parts.
type Stock interface {
	AddPart(part.Part) (part.ID, error)
}

// Funds pays for parts.
type Funds interface {
	CanAfford(amount int64) bool
	Debit(date time.Time, amount int64, description string) error
}

// Delivery is a part in transit.
type Delivery struct {
	Part part.Part
	Days int
}

// Quartermaster is the reference Procurer. It pays from Funds when
// PayForParts is set and delivers spares into Stock.
type Quartermaster struct {
	mu          sync.Mutex
	stock       Stock
	funds       Funds
	today       func() time.Time
	payForParts bool
	pending     []Delivery
}

// NewQuartermaster builds a quartermaster. funds may be nil when parts are
// free.
func NewQuartermaster(stock Stock, funds Funds, today func() time.Time, payForParts bool) *Quartermaster {
	if today == nil {
		today = time.Now
	}
	return &Quartermaster{stock: stock, funds: funds, today: today, payForParts: payForParts && funds != nil}
}

// Spare returns the finished stock part an acquisition produces.
func Spare(work part.Part) part.Part {
	return part.Part{
		Name:        work.Name,
		Kind:        part.KindRepair,
		Component:   work.Component,
		Category:    work.Category,
		MinSkill:    work.MinSkill,
		BaseMinutes: work.BaseMinutes,
		Difficulty:  work.Difficulty,
		Cost:        work.Cost,
		Quantity:    1,
		State:       part.StateCompleted,
	}
}

// Acquire buys one unit of work and delivers it after transitDays.
func (q *Quartermaster) Acquire(work part.Part, transitDays int) Report {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.payForParts && work.Cost > 0 {
		if !q.funds.CanAfford(work.Cost) {
			return Report{Text: fmt.Sprintf("cannot afford %s", work.Name)}
		}
		if err := q.funds.Debit(q.today(), work.Cost, "purchase "+work.Name); err != nil {
			return Report{Text: fmt.Sprintf("payment for %s failed: %v", work.Name, err)}
		}
	}
	if transitDays < 0 {
		transitDays = 0
	}
	spare := Spare(work)
	if transitDays == 0 {
		if _, err := q.stock.AddPart(spare); err != nil {
			return Report{Text: fmt.Sprintf("could not stock %s: %v", work.Name, err)}
		}
	} else {
		q.pending = append(q.pending, Delivery{Part: spare, Days: transitDays})
	}
	return Report{Found: true, Days: transitDays, Text: fmt.Sprintf("%s found, will arrive in %d days", work.Name, transitDays)}
}

// Pending returns parts in transit.
func (q *Quartermaster) Pending() []Delivery {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Delivery(nil), q.pending...)
}

// Tick moves deliveries one day closer and stocks the ones that arrive.
func (q *Quartermaster) Tick() ([]part.Part, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var arrived []part.Part
	remaining := q.pending[:0]
	for _, d := range q.pending {
		d.Days--
		if d.Days > 0 {
			remaining = append(remaining, d)
			continue
		}
		if _, err := q.stock.AddPart(d.Part); err != nil {
			q.pending = append(remaining, d)
			return arrived, err
		}
		arrived = append(arrived, d.Part)
	}
	q.pending = remaining
	return arrived, nil
}
