// Package pool models the finite shared pools that gate work: astech
// minutes and medic head-count.
//
// Every mutation is all-or-nothing. A request the pool cannot satisfy is
// rejected with ErrInsufficientPool and the balance is left untouched; the
// balance never goes negative.
package pool

import (
	"strconv"
	"sync"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
)

const (
	// AstechShiftMinutes is the work time one astech contributes per day.
	AstechShiftMinutes = 480
	// AstechOvertimeMinutes is the extra time one astech contributes on overtime.
	AstechOvertimeMinutes = 240
	// MedicsPerDoctor is how many medics one doctor needs to avoid being shorthanded.
	MedicsPerDoctor = 4
)

var (
	// ErrInvalidPoolAmount indicates a non-positive mutation amount.
	ErrInvalidPoolAmount = apperrors.New(apperrors.CodePoolInvalidAmount, "pool amount must be greater than zero")
	// ErrInsufficientPool indicates a request larger than the available balance.
	ErrInsufficientPool = apperrors.New(apperrors.CodePoolInsufficient, "pool balance is insufficient")
	// ErrNegativeCapacity indicates a pool configured below zero.
	ErrNegativeCapacity = apperrors.New(apperrors.CodePoolNegativeCap, "pool capacity cannot be negative")
)

// Change records a balance mutation for journals and reports.
type Change struct {
	Pool   string
	Before int
	After  int
}

// Delta is After minus Before.
func (c Change) Delta() int {
	return c.After - c.Before
}

// Pool is a non-negative balance with a daily capacity.
type Pool struct {
	mu        sync.Mutex
	name      string
	capacity  int
	overtime  int
	available int
}

// New creates a pool whose balance starts at capacity.
func New(name string, capacity int) (*Pool, error) {
	if capacity < 0 {
		return nil, ErrNegativeCapacity
	}
	return &Pool{name: name, capacity: capacity, available: capacity}, nil
}

// Name identifies the pool in reports.
func (p *Pool) Name() string {
	return p.name
}

// Available returns the current balance.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Capacity returns the daily capacity without overtime.
func (p *Pool) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity
}

// Overtime returns the overtime allowance added at each replenish.
func (p *Pool) Overtime() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overtime
}

// Increase adds n to both capacity and balance, as when hiring.
func (p *Pool) Increase(n int) (Change, error) {
	if n <= 0 {
		return Change{}, ErrInvalidPoolAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	before := p.available
	p.capacity += n
	p.available += n
	return Change{Pool: p.name, Before: before, After: p.available}, nil
}

// Decrease removes n from both capacity and balance, as when releasing.
// Only idle capacity can be released.
func (p *Pool) Decrease(n int) (Change, error) {
	if n <= 0 {
		return Change{}, ErrInvalidPoolAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > p.available || n > p.capacity {
		return Change{}, p.insufficient(n)
	}
	before := p.available
	p.capacity -= n
	p.available -= n
	return Change{Pool: p.name, Before: before, After: p.available}, nil
}

// Consume spends n from the balance for task execution.
func (p *Pool) Consume(n int) (Change, error) {
	if n <= 0 {
		return Change{}, ErrInvalidPoolAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > p.available {
		return Change{}, p.insufficient(n)
	}
	before := p.available
	p.available -= n
	return Change{Pool: p.name, Before: before, After: p.available}, nil
}

// Refund returns n consumed units to the balance, as when work that spent
// them is undone. The balance never exceeds capacity plus overtime.
func (p *Pool) Refund(n int) (Change, error) {
	if n <= 0 {
		return Change{}, ErrInvalidPoolAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.available+n > p.capacity+p.overtime {
		return Change{}, ErrInvalidPoolAmount
	}
	before := p.available
	p.available += n
	return Change{Pool: p.name, Before: before, After: p.available}, nil
}

// Release removes n from capacity and sets the overtime allowance, as when
// staff leave mid-day. Minutes already spent today are charged to the
// departing staff first, so the balance only drops below its current value
// when the remaining staff could not supply it.
func (p *Pool) Release(n, overtime int) (Change, error) {
	if n <= 0 || overtime < 0 {
		return Change{}, ErrInvalidPoolAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > p.capacity {
		return Change{}, apperrors.WithMetadata(apperrors.CodePoolInsufficient, "pool capacity is insufficient", map[string]string{
			"Pool":      p.name,
			"Available": strconv.Itoa(p.capacity),
			"Requested": strconv.Itoa(n),
		})
	}
	before := p.available
	p.capacity -= n
	p.overtime = overtime
	p.available = min(p.available, p.capacity+p.overtime)
	return Change{Pool: p.name, Before: before, After: p.available}, nil
}

// Daily returns the balance a replenish restores: capacity plus overtime.
func (p *Pool) Daily() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity + p.overtime
}

// SetOvertime sets the allowance Replenish adds on top of capacity.
func (p *Pool) SetOvertime(n int) error {
	if n < 0 {
		return ErrInvalidPoolAmount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overtime = n
	return nil
}

// Replenish resets the balance to capacity plus overtime at the day boundary.
func (p *Pool) Replenish() Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	before := p.available
	p.available = p.capacity + p.overtime
	return Change{Pool: p.name, Before: before, After: p.available}
}

func (p *Pool) insufficient(requested int) error {
	return apperrors.WithMetadata(apperrors.CodePoolInsufficient, "pool balance is insufficient", map[string]string{
		"Pool":      p.name,
		"Available": strconv.Itoa(p.available),
		"Requested": strconv.Itoa(requested),
	})
}

// Astechs returns the minute capacity and overtime for a number of astechs.
func Astechs(count int, overtime bool) (capacity, extra int) {
	if count <= 0 {
		return 0, 0
	}
	capacity = count * AstechShiftMinutes
	if overtime {
		extra = count * AstechOvertimeMinutes
	}
	return capacity, extra
}

// Shorthanded returns the healing penalty when fewer medics are available
// than the doctors need: one point per started quarter of the shortage.
func Shorthanded(medics, doctors int) int {
	required := doctors * MedicsPerDoctor
	if required <= 0 || medics >= required {
		return 0
	}
	missing := required - medics
	return (missing*4 + required - 1) / required
}
