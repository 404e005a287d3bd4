// Package filter provides AIP-160 filter expression parsing and SQL translation
// for the operations journal.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Field declares one filterable identifier.
type Field struct {
	// Column is the SQL column the identifier maps to.
	Column string
	Type   *expr.Type
}

// Schema is the set of identifiers a journal table accepts.
type Schema map[string]Field

// WorkSchema covers work journal entries.
var WorkSchema = Schema{
	"day":          {Column: "day", Type: filtering.TypeTimestamp},
	"task_id":      {Column: "task_id", Type: filtering.TypeString},
	"task":         {Column: "task_name", Type: filtering.TypeString},
	"agent_id":     {Column: "agent_id", Type: filtering.TypeString},
	"outcome":      {Column: "outcome", Type: filtering.TypeString},
	"minutes":      {Column: "minutes", Type: filtering.TypeInt},
	"roll":         {Column: "roll", Type: filtering.TypeInt},
	"margin":       {Column: "margin", Type: filtering.TypeInt},
	"unit_removed": {Column: "unit_removed", Type: filtering.TypeString},
}

// DaySchema covers day-advance journal entries.
var DaySchema = Schema{
	"day":    {Column: "day", Type: filtering.TypeTimestamp},
	"state":  {Column: "state", Type: filtering.TypeString},
	"reason": {Column: "reason", Type: filtering.TypeString},
}

// BonusSchema covers bonus-part journal entries.
var BonusSchema = Schema{
	"day":          {Column: "day", Type: filtering.TypeTimestamp},
	"task":         {Column: "task_name", Type: filtering.TypeString},
	"contract_id":  {Column: "contract_id", Type: filtering.TypeString},
	"source":       {Column: "source", Type: filtering.TypeString},
	"inconsistent": {Column: "inconsistent", Type: filtering.TypeBool},
}

// Declarations returns the filter declarations for a schema.
func (s Schema) Declarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, field := range s {
		opts = append(opts, filtering.DeclareIdent(name, field.Type))
	}
	return filtering.NewDeclarations(opts...)
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "outcome = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Empty reports whether the condition filters nothing.
func (c SQLCondition) Empty() bool {
	return c.Clause == ""
}

// Parse parses an AIP-160 filter expression against schema and returns a SQL
// condition. Returns an empty condition for an empty filter string.
func Parse(schema Schema, filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}

	decls, err := schema.Declarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}

	t := translator{schema: schema}
	return t.expr(filter.CheckedExpr.Expr)
}

type translator struct {
	schema Schema
}

func (t translator) expr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return t.call(kind.CallExpr)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (t translator) call(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return t.join(call.Args, "AND")
	case "_||_", "OR":
		return t.join(call.Args, "OR")
	case "NOT":
		return t.not(call.Args)
	case "_==_", "=":
		return t.comparison(call.Args, "=")
	case "_!=_", "!=":
		return t.comparison(call.Args, "!=")
	case "_<_", "<":
		return t.comparison(call.Args, "<")
	case "_<=_", "<=":
		return t.comparison(call.Args, "<=")
	case "_>_", ">":
		return t.comparison(call.Args, ">")
	case "_>=_", ">=":
		return t.comparison(call.Args, ">=")
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (t translator) join(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := t.expr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	right, err := t.expr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (t translator) not(args []*expr.Expr) (SQLCondition, error) {
	if len(args) != 1 {
		return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := t.expr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{Clause: fmt.Sprintf("(NOT %s)", inner.Clause), Params: inner.Params}, nil
}

func (t translator) comparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	name, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}

	field, ok := t.schema[name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", name)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	if b, ok := value.(bool); ok {
		value = 0
		if b {
			value = 1
		}
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", field.Column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractDayValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractDayValue turns timestamp("...") into the YYYY-MM-DD form days are
// stored in.
func extractDayValue(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil timestamp argument")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		if strVal, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_StringValue); ok {
			t, err := time.Parse(time.RFC3339, strVal.StringValue)
			if err != nil {
				t, err = time.Parse(time.RFC3339Nano, strVal.StringValue)
				if err != nil {
					return "", fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
				}
			}
			return t.UTC().Format(time.DateOnly), nil
		}
		return "", fmt.Errorf("timestamp argument must be a string")
	default:
		return "", fmt.Errorf("timestamp argument must be a constant string")
	}
}
