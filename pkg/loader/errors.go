package loader

import (
	"fmt"
	"strings"
)

// ParseError is a document that is not well-formed YAML.
type ParseError struct {
	Path string
	// Line is 1-based, or 0 when the parser did not report one.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError is one offending key of a SchemaError.
type FieldError struct {
	// KeyPath is dotted, like "data.transforms.random_flip.p"; empty for the document root.
	KeyPath string
	// Value is the offending value, or nil when the key is missing.
	Value   interface{}
	Message string
}

func (f FieldError) String() string {
	key := f.KeyPath
	if key == "" {
		key = "<root>"
	}
	if f.Value == nil {
		return fmt.Sprintf("%s: %s", key, f.Message)
	}
	return fmt.Sprintf("%s = %v: %s", key, f.Value, f.Message)
}

// SchemaError is a well-formed document that is not a valid training config: a missing required
// key, a wrong type, an out-of-range value or a broken cross-field constraint.
type SchemaError struct {
	Path   string
	Fields []FieldError
}

func (e *SchemaError) Error() string {
	lines := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		lines = append(lines, f.String())
	}
	return fmt.Sprintf("%s: invalid config, %d errors found:\n\t%s",
		e.Path, len(e.Fields), strings.Join(lines, "\n\t"))
}

// Duplicate is a key that appears more than once in the same mapping.
type Duplicate struct {
	KeyPath string
	// Lines has one entry per occurrence, in document order.
	Lines []int
}

// DuplicateKeyError is a document that repeats a key in some mapping, which the reject policy
// does not allow.
type DuplicateKeyError struct {
	Path       string
	Duplicates []Duplicate
}

func (e *DuplicateKeyError) Error() string {
	parts := make([]string, 0, len(e.Duplicates))
	for _, d := range e.Duplicates {
		lines := make([]string, 0, len(d.Lines))
		for _, l := range d.Lines {
			lines = append(lines, fmt.Sprint(l))
		}
		parts = append(parts, fmt.Sprintf("%s (lines %s)", d.KeyPath, strings.Join(lines, ", ")))
	}
	return fmt.Sprintf("%s: duplicate keys: %s", e.Path, strings.Join(parts, "; "))
}

// ReferenceError is a reference to another document (an aux config or a _base_ parent) that
// could not be resolved, read or validated.
type ReferenceError struct {
	// From is the referencing document.
	From    string
	KeyPath string
	// Ref is the reference as written.
	Ref string
	Err error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s references %q: %v", e.From, e.KeyPath, e.Ref, e.Err)
}

// Unwrap returns why the reference could not be used.
func (e *ReferenceError) Unwrap() error {
	return e.Err
}
