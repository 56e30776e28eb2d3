// Package errors provides custom error types for the makeready system.
// These errors enable programmatic error checking and keep the distinction
// between fatal run errors and recoverable per-record failures explicit.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the makeready system
var (
	// ErrNoValidNetwork indicates that no valid pole or reference nodes
	// survived filtering. This is fatal for the run.
	ErrNoValidNetwork = errors.New("no valid pole or reference nodes")

	// ErrInvalidManualRoute indicates a manual route referencing an edge
	// absent from the network export. This is fatal for the run.
	ErrInvalidManualRoute = errors.New("invalid manual route")

	// ErrUnparseableHeight indicates a height expression that could not be
	// converted to decimal feet.
	ErrUnparseableHeight = errors.New("unparseable height")

	// ErrMissingColumns indicates a sheet missing required columns.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCanceled indicates that a run was canceled.
	ErrCanceled = errors.New("run canceled")

	// ErrNotFound indicates that a requested record was not found.
	ErrNotFound = errors.New("not found")
)

// NoValidNetworkError reports the node counts that led to an empty network
// after filtering.
type NoValidNetworkError struct {
	TotalNodes int
	Excluded   int
}

// Error implements the error interface
func (e *NoValidNetworkError) Error() string {
	return fmt.Sprintf("no valid pole or reference nodes after filtering (%d nodes loaded, %d excluded)",
		e.TotalNodes, e.Excluded)
}

// Is implements errors.Is support
func (e *NoValidNetworkError) Is(target error) bool {
	return target == ErrNoValidNetwork
}

// ManualRouteError reports every manual-route connection that does not exist
// in the network export, in one message.
type ManualRouteError struct {
	Missing [][2]string // (from, to) pairs, normalized
}

// Error implements the error interface
func (e *ManualRouteError) Error() string {
	pairs := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		pairs = append(pairs, fmt.Sprintf("%s -> %s", m[0], m[1]))
	}
	return fmt.Sprintf("manual route connections missing from network export: %s", strings.Join(pairs, ", "))
}

// Is implements errors.Is support
func (e *ManualRouteError) Is(target error) bool {
	return target == ErrInvalidManualRoute
}

// SheetError represents a recoverable problem with one input sheet, such as
// missing required columns. The affected sheet is skipped; the run continues.
type SheetError struct {
	Sheet   string
	Missing []string
	Err     error
}

// Error implements the error interface
func (e *SheetError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("sheet %q missing columns: %s", e.Sheet, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SheetError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SheetError) Is(target error) bool {
	return target == ErrMissingColumns && len(e.Missing) > 0
}

// ParseError represents an error when parsing a single data value.
type ParseError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse error for %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("parse error for %q: %s", e.Value, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a configuration or input validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IOError represents an error during I/O operations in the CLI layer.
type IOError struct {
	Operation string // "read", "write", "open"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNoValidNetwork checks if an error indicates an empty network after filtering.
func IsNoValidNetwork(err error) bool {
	return errors.Is(err, ErrNoValidNetwork)
}

// IsInvalidManualRoute checks if an error indicates a bad manual route.
func IsInvalidManualRoute(err error) bool {
	return errors.Is(err, ErrInvalidManualRoute)
}

// IsUnparseableHeight checks if an error indicates an unparseable height value.
func IsUnparseableHeight(err error) bool {
	return errors.Is(err, ErrUnparseableHeight)
}

// IsMissingColumns checks if an error indicates a sheet missing required columns.
func IsMissingColumns(err error) bool {
	return errors.Is(err, ErrMissingColumns)
}

// IsCanceled checks if an error indicates a canceled run.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(field, value string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Field: field, Value: value, Message: err.Error(), Err: err}
}
