package apperrors

import "errors"

// Sentinel errors for the failure categories the API distinguishes.
// Repositories and gateways wrap these with fmt.Errorf("...: %w", ...) so
// handlers can map them to HTTP statuses with errors.Is.
var (
	// ErrValidation indicates missing or malformed user input.
	ErrValidation = errors.New("validation failed")

	// ErrAuth indicates a missing or invalid session.
	ErrAuth = errors.New("unauthorized")

	// ErrNotFound indicates a trip or flight that is absent or not owned by
	// the caller. Ownership failures are deliberately reported the same way
	// as nonexistence so trip IDs don't leak across users.
	ErrNotFound = errors.New("not found")

	// ErrUpstream indicates a non-success response from the external flight
	// search provider.
	ErrUpstream = errors.New("upstream request failed")

	// ErrConfiguration indicates a missing service credential or setting.
	ErrConfiguration = errors.New("service not configured")

	// ErrPersistence indicates a failed store operation.
	ErrPersistence = errors.New("persistence failed")
)
