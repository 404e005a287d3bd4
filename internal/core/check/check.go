// Package check builds target numbers from modifiers and resolves rolls
// against them.
//
// A target is either impossible (with a reason) or a sum of labeled
// modifiers. Impossibility is a value, not an error: callers disable the
// action instead of failing.
package check

import (
	"strconv"
	"strings"
)

// Modifier is one labeled contribution to a target number.
type Modifier struct {
	Value int
	Desc  string
}

// Target is a target number with the modifiers that produced it.
type Target struct {
	impossible string
	mods       []Modifier
}

// NewTarget starts a target with a base value.
func NewTarget(base int, desc string) Target {
	return Target{mods: []Modifier{{Value: base, Desc: desc}}}
}

// Impossible returns a target that can never be met.
func Impossible(reason string) Target {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "impossible"
	}
	return Target{impossible: reason}
}

// Add appends a modifier. Zero-valued modifiers are skipped so descriptions
// stay short. Adding to an impossible target is a no-op.
func (t *Target) Add(value int, desc string) {
	if t.impossible != "" || value == 0 {
		return
	}
	t.mods = append(t.mods, Modifier{Value: value, Desc: desc})
}

// Append merges other into t; an impossible other makes t impossible.
func (t *Target) Append(other Target) {
	if t.impossible != "" {
		return
	}
	if other.impossible != "" {
		t.impossible = other.impossible
		t.mods = nil
		return
	}
	t.mods = append(t.mods, other.mods...)
}

// IsImpossible reports whether the target can never be met.
func (t Target) IsImpossible() bool {
	return t.impossible != ""
}

// Reason returns why the target is impossible, or "".
func (t Target) Reason() string {
	return t.impossible
}

// Value is the sum of all modifiers. It is zero for impossible targets.
func (t Target) Value() int {
	total := 0
	for _, mod := range t.mods {
		total += mod.Value
	}
	return total
}

// Modifiers returns a copy of the modifiers in insertion order.
func (t Target) Modifiers() []Modifier {
	return append([]Modifier(nil), t.mods...)
}

// Description renders the modifiers as "4 (base) + 1 (rush) - 1 (veteran)".
func (t Target) Description() string {
	if t.impossible != "" {
		return t.impossible
	}
	var b strings.Builder
	for i, mod := range t.mods {
		value := mod.Value
		switch {
		case i == 0:
			b.WriteString(strconv.Itoa(value))
		case value < 0:
			b.WriteString(" - ")
			b.WriteString(strconv.Itoa(-value))
		default:
			b.WriteString(" + ")
			b.WriteString(strconv.Itoa(value))
		}
		if mod.Desc != "" {
			b.WriteString(" (")
			b.WriteString(mod.Desc)
			b.WriteString(")")
		}
	}
	return b.String()
}

// MeetsTarget returns true if roll >= target.
func MeetsTarget(roll, target int) bool {
	return roll >= target
}

// Margin calculates the margin of success or failure.
// Positive values indicate success, negative indicate failure.
func Margin(roll, target int) int {
	return roll - target
}

// Result represents the outcome of a check.
type Result struct {
	Success bool
	Margin  int
}

// Check resolves roll against target.
func Check(roll, target int) Result {
	return Result{
		Success: MeetsTarget(roll, target),
		Margin:  Margin(roll, target),
	}
}
