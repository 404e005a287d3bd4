// Package id provides utilities for generating entity handles.
//
// Handles are UUIDv4 bytes encoded as base32 (RFC 4648) with no padding. The
// resulting strings are 26 characters long, lowercase, and safe for use in
// URLs, file paths and sqlite keys.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a fresh random handle.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}

// MustNewID returns a fresh handle and panics when the random source fails.
func MustNewID() string {
	value, err := NewID()
	if err != nil {
		panic(err)
	}
	return value
}
