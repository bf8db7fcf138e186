// Package galenus is the Go client for the Galenus pharmacy API:
// a durable token store, an authenticated transport with one-shot
// silent refresh, and the client-side session state machine consumed
// by presentation components.
package galenus

import (
	"context"

	"github.com/galenus-health/galenus-go/core"
)

// Client represents the public interface of the session subsystem.
// service.Session is the implementation.
type Client interface {
	// State returns the current session state.
	State() core.State

	// User returns the current profile, or nil when not authenticated.
	User() *core.UserProfile

	// Restore re-establishes the session from the persisted credential.
	Restore(ctx context.Context) error

	// Login authenticates with an email/password pair.
	Login(ctx context.Context, email, password string) (*core.UserProfile, error)

	// Register validates and submits a registration request.
	Register(ctx context.Context, form core.RegisterForm) (string, error)

	// Verify confirms an emailed verification code.
	Verify(ctx context.Context, email, code string) error

	// RequestVerification asks the server to resend a verification code.
	RequestVerification(ctx context.Context, email string) error

	// Logout tears the session down, locally always, remotely best-effort.
	Logout(ctx context.Context) error
}
