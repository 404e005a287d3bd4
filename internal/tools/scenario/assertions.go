package scenario

import (
	"fmt"
	"log"
)

// AssertionMode decides whether failed expectations stop a run.
type AssertionMode int

const (
	// AssertionStrict fails the step on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs unmet expectations and keeps going.
	AssertionLogOnly
)

// Assertions reports unmet expectations according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
	// Failures counts expectations logged in log-only mode.
	Failures int
}

// Failf always returns an error. It is for broken scripts, not unmet
// expectations.
func (a *Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf returns an error in strict mode and logs otherwise.
func (a *Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionStrict {
		return fmt.Errorf(format, args...)
	}
	a.Failures++
	if a.Logger != nil {
		a.Logger.Printf("expectation: "+format, args...)
	}
	return nil
}
