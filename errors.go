package galenus

import "github.com/galenus-health/galenus-go/core"

// Error identities are defined in core so every layer shares them;
// they are re-exported here for callers of the facade.
var (
	// ErrInvalidCredentials is returned when the server rejects an email/password pair
	ErrInvalidCredentials = core.ErrInvalidCredentials

	// ErrSessionExpired is returned when the access token is rejected and could not be refreshed
	ErrSessionExpired = core.ErrSessionExpired

	// ErrStoreUnavailable is returned when the token store cannot be reached
	ErrStoreUnavailable = core.ErrStoreUnavailable

	// ErrNotAuthenticated is returned when an operation requires an authenticated session
	ErrNotAuthenticated = core.ErrNotAuthenticated
)
