package errors

import "errors"

// Common application errors. Repositories and services return these (usually
// wrapped via fmt.Errorf %w); handlers map them to HTTP status codes.
var (
	// ErrNotFound is returned when a record is missing or not owned by the
	// caller. Missing and not-owned are deliberately conflated so responses
	// do not leak resource existence.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (bad
	// credentials, missing or invalid token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks rights to a resource
	// that is known to exist (role or ownership mismatch).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts, e.g. submitting an
	// attempt that has already been submitted.
	ErrConflict = errors.New("resource state conflict")

	// ErrGenerationFailed is returned when the upstream question generation
	// service fails or produces unusable output.
	ErrGenerationFailed = errors.New("question generation failed")
)
