package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidPeriod marks a job whose period is neither week nor month.
var ErrInvalidPeriod = errors.New("invalid period")

// CardSystemError reports a non-zero return code from the upstream card API.
// The upstream message is passed through to the client unchanged.
type CardSystemError struct {
	Message string
}

func (e *CardSystemError) Error() string {
	return "card system error: " + e.Message
}

// AuthError reports a failed session derivation, usually an expired or
// invalid auth token. Not retried by the worker; the client must
// re-authenticate and resubmit.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// ParseError reports a missing or malformed field in an upstream response.
// It indicates an upstream contract violation, not a transient failure.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed upstream response: missing field %q", e.Field)
	}
	return fmt.Sprintf("malformed upstream response: field %q: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StoreError reports a persistence-layer failure from any of the backing
// stores. Always propagated as a job failure, never swallowed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
