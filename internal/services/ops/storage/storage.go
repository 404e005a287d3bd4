// Package storage defines persistence contracts for the operations journal.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured indicates a store without a database handle.
var ErrNotConfigured = errors.New("storage is not configured")

// WorkEntry records one "do task" outcome.
type WorkEntry struct {
	ID            string
	Day           time.Time
	TaskID        string
	TaskName      string
	AgentID       string
	Minutes       int
	AstechMinutes int
	Target        string
	Roll          int
	Margin        int
	Outcome       string
	UnitRemoved   string
	CreatedAt     time.Time
}

// DayEntry records one day-advance attempt.
type DayEntry struct {
	ID string
	// Day is the campaign date the attempt started on.
	Day       time.Time
	State     string
	Reason    string
	Notices   int
	CreatedAt time.Time
}

// BonusEntry records one bonus-part grant.
type BonusEntry struct {
	ID           string
	Day          time.Time
	TaskName     string
	ContractID   string
	Source       string
	Inconsistent bool
	Detail       string
	CreatedAt    time.Time
}

// ListOptions narrows a journal listing.
type ListOptions struct {
	// Filter is an AIP-160 expression.
	Filter   string
	PageSize int
}

// Journal persists operation history.
type Journal interface {
	RecordWork(ctx context.Context, entry WorkEntry) error
	RecordDay(ctx context.Context, entry DayEntry) error
	RecordBonus(ctx context.Context, entry BonusEntry) error
	ListWork(ctx context.Context, opts ListOptions) ([]WorkEntry, error)
	ListDays(ctx context.Context, opts ListOptions) ([]DayEntry, error)
	ListBonus(ctx context.Context, opts ListOptions) ([]BonusEntry, error)
}
