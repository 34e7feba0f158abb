// Package idgen produces primary keys for documents created without one.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the length of every generated id
const Length = 32

// Generator produces fixed-length, practically collision-free ids
type Generator interface {
	Next() string
}

// UUID generates random (version 4) UUIDs as 32 lowercase hex characters
type UUID struct{}

// Next returns a new id
func (UUID) Next() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Func adapts a function to Generator
type Func func() string

// Next calls f
func (f Func) Next() string {
	return f()
}
