package dialect

import "errors"

var (
	// ErrEmptyTable is returned when a Query does not name a table.
	ErrEmptyTable = errors.New("empty table name")

	// ErrValidation is returned when a Query is malformed, for example when
	// columns and values do not line up.
	ErrValidation = errors.New("validation error")

	// ErrUnsupportedOperator is returned when a Condition uses an operator
	// the compiler does not know.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnknownAction is returned when a Query carries an Action the
	// compiler cannot handle.
	ErrUnknownAction = errors.New("unknown query action")
)
