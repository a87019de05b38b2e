// Package ident models names as they appear in a program description.
//
// An Ident compares, hashes and orders by its Name only, taken in Unicode
// normalization form C so that composed and decomposed spellings of the same
// name collide. The Span is diagnostic metadata and Generated marks
// placeholder names synthesized for positional fields and arguments.
package ident

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"abigen/internal/source"
)

// Ident is a name plus the place it was written.
type Ident struct {
	Name      string
	Span      source.Span
	Generated bool
}

// New returns an Ident written at span.
func New(name string, span source.Span) Ident {
	return Ident{Name: name, Span: span}
}

// Positional synthesizes the placeholder name prefix+index (field0, arg1, ...).
func Positional(prefix string, index int, span source.Span) Ident {
	return Ident{Name: fmt.Sprintf("%s%d", prefix, index), Span: span, Generated: true}
}

// Equal compares by name only.
func (id Ident) Equal(other Ident) bool {
	return id.Key() == other.Key()
}

// Compare orders by name only.
func (id Ident) Compare(other Ident) int {
	return strings.Compare(id.Key(), other.Key())
}

// Key is the value to use as a map key.
func (id Ident) Key() string {
	return KeyOf(id.Name)
}

// KeyOf is Key for a bare name, for lookups by a user supplied string.
func KeyOf(name string) string {
	return norm.NFC.String(name)
}

func (id Ident) String() string {
	return id.Name
}
