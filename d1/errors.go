package d1

import "errors"

// unknownErrorMessage is reported when a failed call offers no usable cause.
const unknownErrorMessage = "unknown error"

var (
	// ErrExecute matches every *ExecuteError.
	ErrExecute = errors.New("d1 execute error")

	// ErrNotImplemented matches every *NotImplementedError.
	ErrNotImplemented = errors.New("d1 operation not implemented")
)

// ExecuteError reports a query D1 did not execute successfully. Message is
// the most specific diagnostic available; Err, when set, is the failure the
// binding raised.
type ExecuteError struct {
	Message string
	Err     error
}

func (e *ExecuteError) Error() string { return e.Message }

// Unwrap returns the failure the binding raised, if any.
func (e *ExecuteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrExecute.
func (e *ExecuteError) Is(target error) bool { return target == ErrExecute }

// NotImplementedError reports a capability D1 cannot provide. It is
// permanent; retrying will not help.
type NotImplementedError struct {
	Message string
}

func (e *NotImplementedError) Error() string { return e.Message }

// Is reports whether target is ErrNotImplemented.
func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplemented }

func notImplemented(msg string) error { return &NotImplementedError{Message: msg} }

// CauseMessage returns the message of the cause err wraps. It reports false
// when err wraps nothing or only causes with empty messages.
func CauseMessage(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	switch u := err.(type) {
	case interface{ Unwrap() error }:
		if cause := u.Unwrap(); cause != nil && cause.Error() != "" {
			return cause.Error(), true
		}
	case interface{ Unwrap() []error }:
		for _, cause := range u.Unwrap() {
			if cause != nil && cause.Error() != "" {
				return cause.Error(), true
			}
		}
	}
	return "", false
}

// executeError converts an error raised by the binding. The cause's message
// wins; without one the generic message is used.
func executeError(err error) *ExecuteError {
	msg, ok := CauseMessage(err)
	if !ok {
		msg = unknownErrorMessage
	}
	return &ExecuteError{Message: msg, Err: err}
}
