package binding

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery indicates an empty or invalid SQL query.
	ErrInvalidQuery = errors.New("query is invalid")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to marshal request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")

	// ErrQueryFailed marks a statement the database engine rejected.
	ErrQueryFailed = errors.New("query failed")
)

// Database is a handle to a D1 database. Implementations must be safe for
// concurrent use.
type Database interface {
	// Prepare creates a statement for query. Nothing is sent until All or Run.
	Prepare(query string) Statement
}

// Statement is a prepared SQL statement.
type Statement interface {
	// Bind returns a copy of the statement with values bound, in order, to
	// its ? placeholders.
	Bind(values ...any) Statement

	// All runs the statement and returns every row it produces.
	All(ctx context.Context) (*AllResult, error)

	// Run runs the statement for its effect.
	Run(ctx context.Context) (*RunResult, error)
}

// Meta describes the effect of a statement.
type Meta struct {
	Changes     int64
	LastRowID   int64
	Duration    float64
	RowsRead    int64
	RowsWritten int64
	ChangedDB   bool
}

// AllResult is the outcome of Statement.All.
type AllResult struct {
	Results []map[string]any
	Meta    Meta

	// Error is set when the database rejected the statement without failing the call.
	Error string
}

// RunResult is the outcome of Statement.Run.
type RunResult struct {
	Meta Meta

	// Error is set when the database rejected the statement without failing the call.
	Error string
}

// CallError reports a call to the binding that did not complete. Kind is the
// sentinel describing the failure and Err the underlying cause.
type CallError struct {
	Op   string
	Kind error
	Err  error
}

func (e *CallError) Error() string {
	if e.Kind == nil || errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("d1 %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("d1 %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CallError) Unwrap() error { return e.Err }

// Is reports whether target is the failure kind of e.
func (e *CallError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}
