package filter

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		filter string
		clause string
		params []any
	}{
		{name: "empty", schema: WorkSchema, filter: "  "},
		{name: "string equality", schema: WorkSchema, filter: `outcome = "failed"`,
			clause: "outcome = ?", params: []any{"failed"}},
		{name: "mapped column", schema: WorkSchema, filter: `task = "Gyro"`,
			clause: "task_name = ?", params: []any{"Gyro"}},
		{name: "int comparison", schema: WorkSchema, filter: "margin <= -4",
			clause: "margin <= ?", params: []any{int64(-4)}},
		{name: "and", schema: WorkSchema, filter: `agent_id = "t1" AND minutes > 60`,
			clause: "(agent_id = ? AND minutes > ?)", params: []any{"t1", int64(60)}},
		{name: "or", schema: DaySchema, filter: `state = "blocked" OR state = "committed"`,
			clause: "(state = ? OR state = ?)", params: []any{"blocked", "committed"}},
		{name: "timestamp to day", schema: DaySchema, filter: `day >= timestamp("2026-03-02T10:00:00Z")`,
			clause: "day >= ?", params: []any{"2026-03-02"}},
		{name: "bool", schema: BonusSchema, filter: "inconsistent = true",
			clause: "inconsistent = ?", params: []any{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.schema, tt.filter)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got.Clause != tt.clause {
				t.Fatalf("expected clause %q, got %q", tt.clause, got.Clause)
			}
			if len(tt.params) == 0 && len(got.Params) == 0 {
				return
			}
			if !reflect.DeepEqual(got.Params, tt.params) {
				t.Fatalf("expected params %v, got %v", tt.params, got.Params)
			}
		})
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	if _, err := Parse(DaySchema, `outcome = "failed"`); err == nil {
		t.Fatal("expected error for field outside schema")
	}
}

func TestParseRejectsInvalidSyntax(t *testing.T) {
	if _, err := Parse(WorkSchema, `outcome = `); err == nil {
		t.Fatal("expected syntax error")
	}
}
