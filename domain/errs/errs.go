// Package errs defines the error sentinels shared across domain packages.
package errs

import "errors"

var (
	// ErrValidation indicates the caller supplied invalid input.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = errors.New("conflict")
)
