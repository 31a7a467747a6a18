// Package schema validates generic parsed YAML input into typed records.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rcliao/thai-anki/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their input key rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Issue describes one problem found in the input.
// Index is -1 when the problem is with the collection itself.
type Issue struct {
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Index < 0 {
		b.WriteString("input")
	} else {
		fmt.Fprintf(&b, "record %d", i.Index+1)
	}
	if i.Field != "" {
		fmt.Fprintf(&b, ": field %q", i.Field)
	}
	b.WriteString(": ")
	b.WriteString(i.Reason)
	return b.String()
}

// ValidationError is returned when the input does not match the deck's
// record schema. It lists every issue found.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "there is invalid data in the YAML"
	}
	msg := "there is invalid data in the YAML: " + e.Issues[0].String()
	if n := len(e.Issues) - 1; n == 1 {
		msg += " (and 1 more issue)"
	} else if n > 1 {
		msg += fmt.Sprintf(" (and %d more issues)", n)
	}
	return msg
}

// Numbers validates v as a sequence of number records.
func Numbers(v any) ([]model.NumberRecord, error) {
	return decodeAll(v, func(f *fields) model.NumberRecord {
		return model.NumberRecord{
			Arabic: f.str("arabic"),
			Thai:   f.str("thai"),
			PN:     f.str("pn"),
		}
	})
}

// Vowels validates v as a sequence of vowel records.
func Vowels(v any) ([]model.VowelRecord, error) {
	return decodeAll(v, func(f *fields) model.VowelRecord {
		return model.VowelRecord{
			Thai: f.str("thai"),
			IPA:  f.str("ipa"),
			Freq: model.Frequency(f.integer("freq")),
		}
	})
}

func decodeAll[R any](v any, decodeOne func(*fields) R) ([]R, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &ValidationError{Issues: []Issue{{
			Index:  -1,
			Reason: "expected a sequence of records, got " + describe(v),
		}}}
	}

	records := make([]R, 0, len(items))
	var issues []Issue
	for i, item := range items {
		m, err := asMapping(item)
		if err != nil {
			issues = append(issues, Issue{Index: i, Reason: err.Error()})
			continue
		}

		f := &fields{index: i, m: m}
		rec := decodeOne(f)
		issues = append(issues, f.issues...)
		issues = append(issues, structIssues(i, rec, f.reported)...)
		records = append(records, rec)
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return records, nil
}

// structIssues runs the struct tag rules, skipping fields the decoder
// already reported as missing or mistyped.
func structIssues(index int, rec any, reported map[string]bool) []Issue {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Index: index, Reason: err.Error()}}
	}
	var issues []Issue
	for _, fe := range verrs {
		if reported[fe.Field()] {
			continue
		}
		issues = append(issues, Issue{Index: index, Field: fe.Field(), Reason: ruleReason(fe)})
	}
	return issues
}

func ruleReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("must be one of %s, got %d", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

func asMapping(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is not a string", k)
			}
			out[ks] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %s", describe(v))
}

// fields reads typed values out of one record mapping, collecting issues
// for missing keys and wrong types.
type fields struct {
	index    int
	m        map[string]any
	issues   []Issue
	reported map[string]bool
}

func (f *fields) fail(key, reason string) {
	if f.reported == nil {
		f.reported = make(map[string]bool)
	}
	f.reported[key] = true
	f.issues = append(f.issues, Issue{Index: f.index, Field: key, Reason: reason})
}

func (f *fields) str(key string) string {
	v, ok := f.m[key]
	if !ok {
		f.fail(key, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(key, "must be a string, got "+describe(v))
		return ""
	}
	return s
}

func (f *fields) integer(key string) int {
	v, ok := f.m[key]
	if !ok {
		f.fail(key, "is required")
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		if n <= math.MaxInt32 {
			return int(n)
		}
		f.fail(key, fmt.Sprintf("%d is out of range", n))
		return 0
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt32 {
			return int(n)
		}
	}
	f.fail(key, "must be an integer, got "+describe(v))
	return 0
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64:
		return "integer"
	case float64:
		return "number"
	case []any:
		return "sequence"
	case map[string]any, map[any]any:
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}
