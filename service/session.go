// Package service holds the client-side session state machine: the
// single authority on "who is currently signed in" for the process.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	galenus "github.com/galenus-health/galenus-go"
	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
)

var _ galenus.Client = (*Session)(nil)

// Session owns the process-wide authentication state and the current
// user profile. Operations are meant to be invoked one at a time, as
// screen actions are; the mutex keeps reads consistent, not operations
// ordered.
type Session struct {
	api    ports.AuthAPI
	store  ports.TokenStore
	events ports.EventPublisher
	log    *slog.Logger

	mu    sync.RWMutex
	state core.State
	user  *core.UserProfile
}

// Option configures a Session.
type Option func(*Session)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates a session in the Unauthenticated state.
func NewSession(api ports.AuthAPI, store ports.TokenStore, events ports.EventPublisher, opts ...Option) *Session {
	s := &Session{
		api:    api,
		store:  store,
		events: events,
		log:    slog.Default(),
		state:  core.StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session state.
func (s *Session) State() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the current profile, or nil when not
// authenticated.
func (s *Session) User() *core.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Restore re-establishes the session from the persisted credential at
// process start. An empty store settles in Unauthenticated without any
// network call; any failure tears the stored credential down. The
// state is settled when Restore returns, whatever the error value.
func (s *Session) Restore(ctx context.Context) error {
	s.setState(ctx, core.StateChecking, nil)

	_, ok, err := s.store.Get(ctx)
	if err != nil {
		s.log.Warn("token store unreachable during restore", "error", err)
		s.setState(ctx, core.StateUnauthenticated, nil)
		return nil
	}
	if !ok {
		s.setState(ctx, core.StateUnauthenticated, nil)
		return nil
	}

	profile, err := s.api.CurrentUser(ctx)
	if err != nil {
		// SessionExpired means the transport already cleared the store;
		// clearing again is idempotent and covers the other failures.
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.log.Warn("failed to clear token store during restore", "error", clearErr)
		}
		s.setState(ctx, core.StateUnauthenticated, nil)
		if errors.Is(err, core.ErrSessionExpired) {
			return core.ErrSessionExpired
		}
		return err
	}

	s.setState(ctx, core.StateAuthenticated, profile)
	return nil
}

// Login authenticates with an email/password pair. On failure the
// state is left untouched and the error is returned for display.
func (s *Session) Login(ctx context.Context, email, password string) (*core.UserProfile, error) {
	token, profile, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, token); err != nil {
		// Degraded success: the user is signed in for this run, but the
		// credential will not survive a restart.
		s.log.Warn("failed to persist credential after login", "error", err)
	}

	s.setState(ctx, core.StateAuthenticated, profile)
	return profile, nil
}

// Register validates the form locally and submits it. A validation
// failure returns before any network call. Registration never changes
// the session state: verification gates the subsequent login.
func (s *Session) Register(ctx context.Context, form core.RegisterForm) (string, error) {
	if errs := form.Validate(); errs != nil {
		return "", errs
	}
	return s.api.Register(ctx, form)
}

// Verify confirms an emailed verification code.
func (s *Session) Verify(ctx context.Context, email, code string) error {
	return s.api.VerifyCode(ctx, email, code)
}

// RequestVerification asks the server to resend a verification code.
func (s *Session) RequestVerification(ctx context.Context, email string) error {
	return s.api.RequestVerification(ctx, email)
}

// Logout tears the local session down unconditionally. The remote
// logout call is best-effort: its failure is logged and never blocks
// the local sign-out.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("remote logout failed, tearing down locally", "error", err)
	}

	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("failed to clear token store during logout", "error", err)
	}
	s.setState(ctx, core.StateUnauthenticated, nil)
	return nil
}

// setState records a transition and notifies subscribers. Publish
// failures are logged: presentation updates are advisory, the state
// itself is authoritative.
func (s *Session) setState(ctx context.Context, state core.State, user *core.UserProfile) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()

	if s.events == nil {
		return
	}
	event := core.SessionEvent{
		State: state.String(),
		At:    time.Now().UTC(),
	}
	if user != nil {
		event.Email = user.Email
	}
	if err := s.events.PublishStateChange(ctx, event); err != nil {
		s.log.Warn("failed to publish session event", "state", event.State, "error", err)
	}
}
