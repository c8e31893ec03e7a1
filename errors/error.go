// Package errors defines the error taxonomy of the tabular engine.
// Every error carries enough context (column name, row index,
// conflicting types) to pinpoint the violation without source
// inspection.
package errors

import (
	"fmt"
)

// DuplicateNameError occurs when a column name would collide with an existing one
type DuplicateNameError struct{ Name string }

// Error returns a textual representation of this DuplicateNameError
func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("Column with name %s already exists", e.Name)
}

// TypeMismatchError occurs when a value's type is incompatible with a column's type and not coercible
type TypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

// Error returns a textual representation of this TypeMismatchError
func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("Value for column %s has type %s, expected %s", e.Name, e.Actual, e.Expected)
}

// IndexOutOfRangeError occurs when a row or column index falls outside a Table's bounds
type IndexOutOfRangeError struct {
	What   string
	Index  int
	Length int
}

// Error returns a textual representation of this IndexOutOfRangeError
func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d is out of range [0..%d)", e.What, e.Index, e.Length)
}

// MissingColumnError occurs when a named column does not exist in a Table
type MissingColumnError struct{ Name string }

// Error returns a textual representation of this MissingColumnError
func (e MissingColumnError) Error() string {
	return fmt.Sprintf("Column with name %s does not exist", e.Name)
}

// LengthMismatchError occurs when a sequence's length is incompatible with a Table's row count
type LengthMismatchError struct {
	Name     string
	Expected int
	Actual   int
}

// Error returns a textual representation of this LengthMismatchError
func (e LengthMismatchError) Error() string {
	return fmt.Sprintf("Values for column %s have length %d, expected 1 or %d", e.Name, e.Actual, e.Expected)
}

// StaleViewError occurs when a View or GroupIndex is accessed after a structural change to its parent Table
type StaleViewError struct {
	TableID  string
	Expected uint64
	Actual   uint64
}

// Error returns a textual representation of this StaleViewError
func (e StaleViewError) Error() string {
	return fmt.Sprintf("Table %s changed structurally (generation %d, expected %d); view is stale", e.TableID, e.Actual, e.Expected)
}

// CorruptedTableError occurs when a column's backing storage no longer matches its Table's row count,
// typically after an alias was resized out-of-band
type CorruptedTableError struct {
	Name     string
	Expected int
	Actual   int
}

// Error returns a textual representation of this CorruptedTableError
func (e CorruptedTableError) Error() string {
	return fmt.Sprintf("Column %s has length %d, expected %d; table is corrupted", e.Name, e.Actual, e.Expected)
}

// MissingKeyError occurs when a join key contains a missing value under the default match-missing policy
type MissingKeyError struct {
	Column string
	Row    int
}

// Error returns a textual representation of this MissingKeyError
func (e MissingKeyError) Error() string {
	return fmt.Sprintf("Join key column %s is missing at row %d", e.Column, e.Row)
}

// UnsupportedOptionError occurs when an option combination is not supported by an operation
type UnsupportedOptionError struct {
	Option string
	Reason string
}

// Error returns a textual representation of this UnsupportedOptionError
func (e UnsupportedOptionError) Error() string {
	return fmt.Sprintf("Option %s is not supported: %s", e.Option, e.Reason)
}

// ValidationError occurs when a requested precondition (such as key uniqueness) is violated
type ValidationError struct {
	Subject string
	Reason  string
}

// Error returns a textual representation of this ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("Validation of %s failed: %s", e.Subject, e.Reason)
}

// NoKeyColumnError occurs when unstacking leaves no key columns to group by
type NoKeyColumnError struct{}

// Error returns a textual representation of this NoKeyColumnError
func (e NoKeyColumnError) Error() string {
	return "No key columns remain to identify unstacked rows"
}

// EmptyGroupResultError occurs when a group operation produces zero rows for a group during a transform
type EmptyGroupResultError struct{ Group string }

// Error returns a textual representation of this EmptyGroupResultError
func (e EmptyGroupResultError) Error() string {
	return fmt.Sprintf("Group %s produced an empty result, which cannot be broadcast to its source rows", e.Group)
}
