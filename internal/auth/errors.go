package auth

import "errors"

var (
	// ErrMissingAPIKey is returned when the request carries no Authorization header
	ErrMissingAPIKey = errors.New("missing Authorization header")

	// ErrMalformedHeader is returned when the header is not a Bearer token
	ErrMalformedHeader = errors.New("invalid Authorization header format, expected 'Bearer <api_key>'")

	// ErrInvalidAPIKey is returned when the key does not match
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrForbidden is returned when a valid actor lacks the permission
	ErrForbidden = errors.New("operation not permitted")
)
