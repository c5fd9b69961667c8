package domain

import "errors"

// Sentinel errors classifying every failure the services can surface.
// Adapters and usecases wrap these with fmt.Errorf("%w: ...") so the API
// layer can pick a status code with errors.Is while the message still
// names the offending field or operation.
var (
	// ErrInvalidInput marks a missing or empty required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidID marks a session identifier that does not match the
	// backend's id format.
	ErrInvalidID = errors.New("invalid session id")

	// ErrNotFound marks a session id with no matching record.
	ErrNotFound = errors.New("session not found")

	// ErrProvider marks a transport failure or non-2xx reply from an
	// external provider. The raw provider body is logged, never wrapped
	// into the error message.
	ErrProvider = errors.New("provider request failed")

	// ErrMalformedResponse marks a provider reply that came back 2xx but
	// could not be parsed or failed shape validation.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrUnavailable marks a store or provider that is not configured or
	// not reachable.
	ErrUnavailable = errors.New("service unavailable")
)
