package lua

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a script runs too long.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoHost is returned by module functions that need an editor.
	ErrNoHost = errors.New("not available while configuring")
)
