package ports

import (
	"context"

	"github.com/galenus-health/galenus-go/core"
)

// AuthAPI is the set of remote authentication operations the session
// service depends on. The REST client implements it; tests substitute
// an in-memory fake.
type AuthAPI interface {
	// Login exchanges an email/password pair for a credential and the
	// user's profile. It bypasses the refresh-retry path: no credential
	// exists yet when it runs.
	Login(ctx context.Context, email, password string) (core.Credential, *core.UserProfile, error)

	// Register submits a registration and returns the server's
	// confirmation message. Authentication state does not change:
	// email verification gates the subsequent login server-side.
	Register(ctx context.Context, form core.RegisterForm) (string, error)

	// VerifyCode confirms an emailed verification code.
	VerifyCode(ctx context.Context, email, code string) error

	// RequestVerification asks the server to send a fresh code.
	RequestVerification(ctx context.Context, email string) error

	// CurrentUser fetches the authenticated profile through the
	// refresh-retrying transport.
	CurrentUser(ctx context.Context) (*core.UserProfile, error)

	// Logout invalidates the server-side session. Failures are
	// ignorable: local teardown never waits on this call.
	Logout(ctx context.Context) error
}
