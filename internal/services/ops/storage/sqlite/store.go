// Package sqlite provides a SQLite-backed operations journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/campaignops/internal/platform/id"
	"github.com/louisbranch/campaignops/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/campaignops/internal/services/ops/core/filter"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
	"github.com/louisbranch/campaignops/internal/services/ops/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Store persists the operations journal in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func toDay(value time.Time) string {
	return value.UTC().Format(time.DateOnly)
}

func fromDay(value string) (time.Time, error) {
	return time.Parse(time.DateOnly, value)
}

// Open opens a SQLite journal and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ErrNotConfigured
	}
	return nil
}

func (s *Store) stamp(entryID *string, createdAt *time.Time) error {
	if *entryID == "" {
		next, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		*entryID = next
	}
	if createdAt.IsZero() {
		*createdAt = s.now().UTC()
	}
	return nil
}

// RecordWork appends a work outcome.
func (s *Store) RecordWork(ctx context.Context, entry storage.WorkEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(entry.TaskID) == "" {
		return fmt.Errorf("task id is required")
	}
	if err := s.stamp(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO work_entries (
		   id, day, task_id, task_name, agent_id, minutes, astech_minutes,
		   target, roll, margin, outcome, unit_removed, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		toDay(entry.Day),
		entry.TaskID,
		entry.TaskName,
		entry.AgentID,
		entry.Minutes,
		entry.AstechMinutes,
		entry.Target,
		entry.Roll,
		entry.Margin,
		entry.Outcome,
		entry.UnitRemoved,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record work: %w", err)
	}
	return nil
}

// RecordDay appends a day-advance attempt.
func (s *Store) RecordDay(ctx context.Context, entry storage.DayEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(entry.State) == "" {
		return fmt.Errorf("state is required")
	}
	if err := s.stamp(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO day_entries (id, day, state, reason, notices, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		toDay(entry.Day),
		entry.State,
		entry.Reason,
		entry.Notices,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record day: %w", err)
	}
	return nil
}

// RecordBonus appends a bonus-part grant.
func (s *Store) RecordBonus(ctx context.Context, entry storage.BonusEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := s.stamp(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}
	inconsistent := 0
	if entry.Inconsistent {
		inconsistent = 1
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO bonus_entries (
		   id, day, task_name, contract_id, source, inconsistent, detail, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		toDay(entry.Day),
		entry.TaskName,
		entry.ContractID,
		entry.Source,
		inconsistent,
		entry.Detail,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record bonus: %w", err)
	}
	return nil
}

// ListWork returns work entries oldest first.
func (s *Store) ListWork(ctx context.Context, opts storage.ListOptions) ([]storage.WorkEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, filter.WorkSchema, opts,
		`SELECT id, day, task_id, task_name, agent_id, minutes, astech_minutes,
		        target, roll, margin, outcome, unit_removed, created_at
		   FROM work_entries`)
	if err != nil {
		return nil, fmt.Errorf("list work: %w", err)
	}
	defer rows.Close()

	var entries []storage.WorkEntry
	for rows.Next() {
		var entry storage.WorkEntry
		var day string
		var createdAt int64
		if err := rows.Scan(
			&entry.ID,
			&day,
			&entry.TaskID,
			&entry.TaskName,
			&entry.AgentID,
			&entry.Minutes,
			&entry.AstechMinutes,
			&entry.Target,
			&entry.Roll,
			&entry.Margin,
			&entry.Outcome,
			&entry.UnitRemoved,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list work: %w", err)
		}
		if entry.Day, err = fromDay(day); err != nil {
			return nil, fmt.Errorf("list work: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list work: %w", err)
	}
	return entries, nil
}

// ListDays returns day-advance entries oldest first.
func (s *Store) ListDays(ctx context.Context, opts storage.ListOptions) ([]storage.DayEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, filter.DaySchema, opts,
		`SELECT id, day, state, reason, notices, created_at FROM day_entries`)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var entries []storage.DayEntry
	for rows.Next() {
		var entry storage.DayEntry
		var day string
		var createdAt int64
		if err := rows.Scan(&entry.ID, &day, &entry.State, &entry.Reason, &entry.Notices, &createdAt); err != nil {
			return nil, fmt.Errorf("list days: %w", err)
		}
		if entry.Day, err = fromDay(day); err != nil {
			return nil, fmt.Errorf("list days: %w", err)
		}
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return entries, nil
}

// ListBonus returns bonus-part entries oldest first.
func (s *Store) ListBonus(ctx context.Context, opts storage.ListOptions) ([]storage.BonusEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, filter.BonusSchema, opts,
		`SELECT id, day, task_name, contract_id, source, inconsistent, detail, created_at
		   FROM bonus_entries`)
	if err != nil {
		return nil, fmt.Errorf("list bonus: %w", err)
	}
	defer rows.Close()

	var entries []storage.BonusEntry
	for rows.Next() {
		var entry storage.BonusEntry
		var day string
		var inconsistent int
		var createdAt int64
		if err := rows.Scan(
			&entry.ID,
			&day,
			&entry.TaskName,
			&entry.ContractID,
			&entry.Source,
			&inconsistent,
			&entry.Detail,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list bonus: %w", err)
		}
		if entry.Day, err = fromDay(day); err != nil {
			return nil, fmt.Errorf("list bonus: %w", err)
		}
		entry.Inconsistent = inconsistent != 0
		entry.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bonus: %w", err)
	}
	return entries, nil
}

// query appends the filter condition, ordering and limit to base.
func (s *Store) query(ctx context.Context, schema filter.Schema, opts storage.ListOptions, base string) (*sql.Rows, error) {
	cond, err := filter.Parse(schema, opts.Filter)
	if err != nil {
		return nil, err
	}
	pageSize := opts.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}

	var b strings.Builder
	b.WriteString(base)
	params := cond.Params
	if !cond.Empty() {
		b.WriteString(" WHERE ")
		b.WriteString(cond.Clause)
	}
	b.WriteString(" ORDER BY rowid ASC LIMIT ?")
	params = append(params, pageSize)
	return s.sqlDB.QueryContext(ctx, b.String(), params...)
}

var _ storage.Journal = (*Store)(nil)
