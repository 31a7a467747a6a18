// Package deck maps deck types to their record schema and card expansion
// rules, and builds the card list for an input collection.
package deck

import (
	"fmt"
	"strings"

	"github.com/rcliao/thai-anki/internal/model"
	"github.com/rcliao/thai-anki/internal/schema"
)

// Type selects which schema and expansion rule apply to the input.
type Type int

const (
	Numbers Type = iota + 1
	Vowels
)

// Types returns every registered deck type in a stable order.
func Types() []Type {
	return []Type{Numbers, Vowels}
}

// ParseType resolves a deck identifier such as "numbers".
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, &UnknownTypeError{ID: s}
}

// String returns the identifier used on the command line.
func (t Type) String() string {
	switch t {
	case Numbers:
		return "numbers"
	case Vowels:
		return "vowels"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Name returns the canonical display name of the produced deck.
func (t Type) Name() string {
	switch t {
	case Numbers:
		return "Thai numbers"
	case Vowels:
		return "Thai vowels"
	}
	return ""
}

// CardsPerRecord returns how many cards one record expands into.
func (t Type) CardsPerRecord() int {
	switch t {
	case Numbers:
		return 3
	case Vowels:
		return 1
	}
	return 0
}

// Valid reports whether t is a registered deck type.
func (t Type) Valid() bool {
	return t.CardsPerRecord() > 0
}

// UnknownTypeError is returned for a deck identifier outside the registered set.
type UnknownTypeError struct {
	ID string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown deck type %q (valid: %s)", e.ID, strings.Join(TypeIDs(), ", "))
}

// TypeIDs returns the identifiers of every registered deck type.
func TypeIDs() []string {
	ids := make([]string, 0, len(Types()))
	for _, t := range Types() {
		ids = append(ids, t.String())
	}
	return ids
}

// Result is the outcome of building a deck from an input collection.
type Result struct {
	Type    Type
	Records int
	Cards   []model.Card
}

// Build validates data against the schema of t and expands every record,
// in input order, into one flat card list. Nothing is expanded unless the
// whole collection is valid.
func Build(t Type, data any) (*Result, error) {
	switch t {
	case Numbers:
		records, err := schema.Numbers(data)
		if err != nil {
			return nil, err
		}
		return &Result{Type: t, Records: len(records), Cards: expandAll(records, ExpandNumber, t.CardsPerRecord())}, nil
	case Vowels:
		records, err := schema.Vowels(data)
		if err != nil {
			return nil, err
		}
		return &Result{Type: t, Records: len(records), Cards: expandAll(records, ExpandVowel, t.CardsPerRecord())}, nil
	}
	return nil, &UnknownTypeError{ID: t.String()}
}
