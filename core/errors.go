package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when the server rejects an email/password pair
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionExpired is returned when the access token is rejected and could not be refreshed
	ErrSessionExpired = errors.New("session has expired")

	// ErrStoreUnavailable is returned when the token store cannot be reached
	ErrStoreUnavailable = errors.New("token store unavailable")

	// ErrNotAuthenticated is returned when an operation requires an authenticated session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentialFormat is returned when a stored bearer token cannot be decoded
	ErrInvalidCredentialFormat = errors.New("malformed credential")
)

// GeneralField keys the non-field-specific entry of a ValidationError.
const GeneralField = "general"

// ValidationError maps offending field names to human-readable messages.
// Server-side errors that are not tied to a field are stored under GeneralField.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// APIError is a server rejection that is neither an authorization failure
// nor a validation problem, carried through to the caller unchanged.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Detail)
}
