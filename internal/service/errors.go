package service

import "errors"

// Error kinds returned by URLService. They are wrapped with context, so
// callers must compare with errors.Is.
var (
	// ErrInvalidInput is returned for a malformed URL, short code or listing parameter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a requested custom short code is already taken.
	ErrConflict = errors.New("short code already taken")
	// ErrNotFound is returned when a URL is missing, or at redirect time inactive or expired.
	ErrNotFound = errors.New("url not found")
	// ErrForbidden is returned when the caller does not own the targeted URL.
	ErrForbidden = errors.New("not the owner of the url")
	// ErrExhausted is returned when no unused short code was found within the retry budget.
	ErrExhausted = errors.New("maximum retries exceeded for generating short code")
	// ErrInternal wraps unexpected storage failures.
	ErrInternal = errors.New("internal error")
)
