package journal

import (
	"fmt"
	"strings"
)

// FieldNotFoundError reports an expected column that is missing from a row.
// It always indicates a schema mismatch with the capture side.
type FieldNotFoundError struct {
	Column    string
	LowerCase bool
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("journal: column %q not found (lower-case identifiers: %t)", e.Column, e.LowerCase)
}

// FieldTypeError reports a column whose stored value has an unexpected type.
type FieldTypeError struct {
	Column string
	Want   string
	Got    any
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("journal: column %q holds %T, want %s", e.Column, e.Got, e.Want)
}

// ColumnName maps a canonical upper-case identifier to the physical name
// used by a store with the given case convention.
func ColumnName(logical string, lowerCase bool) string {
	if lowerCase {
		return strings.ToLower(logical)
	}
	return logical
}

// Get reads the column logical from e as a T. A present column holding nil
// yields the zero T.
func Get[T any](e *Entry, logical string, lowerCase bool) (T, error) {
	var zero T
	name := ColumnName(logical, lowerCase)
	raw, ok := e.Lookup(name)
	if !ok {
		return zero, &FieldNotFoundError{Column: name, LowerCase: lowerCase}
	}
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &FieldTypeError{Column: name, Want: fmt.Sprintf("%T", zero), Got: raw}
	}
	return v, nil
}

// Int64 is Get for integer columns; any Go integer kind is widened.
func Int64(e *Entry, logical string, lowerCase bool) (int64, error) {
	name := ColumnName(logical, lowerCase)
	raw, ok := e.Lookup(name)
	if !ok {
		return 0, &FieldNotFoundError{Column: name, LowerCase: lowerCase}
	}
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	default:
		return 0, &FieldTypeError{Column: name, Want: "integer", Got: raw}
	}
}
