package config

import (
	"fmt"
	"os"
)

// Exit codes shared by CLI entry points.
const (
	ExitFailure = 1
	// ExitRefused reports that the command ran but the campaign refused the
	// requested transition (for example a blocked day advance).
	ExitRefused = 2
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	ExitCodef(ExitFailure, format, args...)
}

// ExitCodef writes a formatted error message to stderr and exits with code.
func ExitCodef(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
