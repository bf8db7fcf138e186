package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galenus-health/galenus-go/adapters/events"
	"github.com/galenus-health/galenus-go/adapters/store"
	"github.com/galenus-health/galenus-go/core"
)

// stubAPI is a hand-rolled ports.AuthAPI double with call counters.
type stubAPI struct {
	loginToken   core.Credential
	loginProfile *core.UserProfile
	loginErr     error

	currentUserProfile *core.UserProfile
	currentUserErr     error

	registerMsg string
	registerErr error

	logoutErr error

	loginCalls       int
	currentUserCalls int
	registerCalls    int
	verifyCalls      int
	logoutCalls      int
}

func (s *stubAPI) Login(ctx context.Context, email, password string) (core.Credential, *core.UserProfile, error) {
	s.loginCalls++
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return s.loginToken, s.loginProfile, nil
}

func (s *stubAPI) Register(ctx context.Context, form core.RegisterForm) (string, error) {
	s.registerCalls++
	return s.registerMsg, s.registerErr
}

func (s *stubAPI) VerifyCode(ctx context.Context, email, code string) error {
	s.verifyCalls++
	return nil
}

func (s *stubAPI) RequestVerification(ctx context.Context, email string) error {
	return nil
}

func (s *stubAPI) CurrentUser(ctx context.Context) (*core.UserProfile, error) {
	s.currentUserCalls++
	if s.currentUserErr != nil {
		return nil, s.currentUserErr
	}
	return s.currentUserProfile, nil
}

func (s *stubAPI) Logout(ctx context.Context) error {
	s.logoutCalls++
	return s.logoutErr
}

func profileFixture() *core.UserProfile {
	return &core.UserProfile{ID: 1, Email: "a@b.com", FirstName: "Amina", IsVerified: true}
}

func TestRestoreWithEmptyStore(t *testing.T) {
	api := &stubAPI{}
	session := NewSession(api, store.NewMemoryStore(), nil)

	require.NoError(t, session.Restore(context.Background()))
	assert.Equal(t, core.StateUnauthenticated, session.State())
	assert.Nil(t, session.User())
	assert.Equal(t, 0, api.currentUserCalls, "empty store means zero network calls")
}

func TestRestoreWithValidToken(t *testing.T) {
	api := &stubAPI{currentUserProfile: profileFixture()}
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(context.Background(), "stored-token"))

	session := NewSession(api, tokens, nil)
	require.NoError(t, session.Restore(context.Background()))

	assert.Equal(t, core.StateAuthenticated, session.State())
	require.NotNil(t, session.User())
	assert.Equal(t, "a@b.com", session.User().Email)
	assert.Equal(t, 1, api.currentUserCalls)
}

func TestRestoreFailureConvergesToSignedOut(t *testing.T) {
	api := &stubAPI{currentUserErr: core.ErrSessionExpired}
	tokens := store.NewMemoryStore()
	require.NoError(t, tokens.Set(context.Background(), "stale-token"))

	session := NewSession(api, tokens, nil)
	err := session.Restore(context.Background())
	assert.ErrorIs(t, err, core.ErrSessionExpired)
	assert.Equal(t, core.StateUnauthenticated, session.State())

	_, ok, getErr := tokens.Get(context.Background())
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestLoginSuccess(t *testing.T) {
	api := &stubAPI{loginToken: "fresh-token", loginProfile: profileFixture()}
	tokens := store.NewMemoryStore()
	session := NewSession(api, tokens, nil)

	profile, err := session.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, core.StateAuthenticated, session.State())

	stored, ok, err := tokens.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.Credential("fresh-token"), stored)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	api := &stubAPI{loginErr: core.ErrInvalidCredentials}
	tokens := store.NewMemoryStore()
	session := NewSession(api, tokens, nil)

	_, err := session.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	assert.Equal(t, core.StateUnauthenticated, session.State())

	_, ok, getErr := tokens.Get(context.Background())
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestLoginSucceedsWhenPersistenceDegrades(t *testing.T) {
	api := &stubAPI{loginToken: "fresh-token", loginProfile: profileFixture()}
	session := NewSession(api, &writeFailingStore{}, nil)

	profile, err := session.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err, "login reports success even when the store write fails")
	assert.NotNil(t, profile)
	assert.Equal(t, core.StateAuthenticated, session.State())
}

func TestLogoutAlwaysTearsDownLocally(t *testing.T) {
	api := &stubAPI{
		loginToken:   "fresh-token",
		loginProfile: profileFixture(),
		logoutErr:    errors.New("gateway timeout"),
	}
	tokens := store.NewMemoryStore()
	session := NewSession(api, tokens, nil)

	_, err := session.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)

	require.NoError(t, session.Logout(context.Background()), "remote failure never blocks local sign-out")
	assert.Equal(t, core.StateUnauthenticated, session.State())
	assert.Nil(t, session.User())
	assert.Equal(t, 1, api.logoutCalls)

	_, ok, getErr := tokens.Get(context.Background())
	require.NoError(t, getErr)
	assert.False(t, ok)
}

func TestRegisterValidatesBeforeNetwork(t *testing.T) {
	api := &stubAPI{}
	session := NewSession(api, store.NewMemoryStore(), nil)

	form := validRegisterForm()
	form.Email = "not-an-email"

	_, err := session.Register(context.Background(), form)
	var errs core.ValidationError
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Email is invalid.", errs["email"])
	assert.Equal(t, 0, api.registerCalls, "invalid input never reaches the network")
	assert.Equal(t, core.StateUnauthenticated, session.State())
}

func TestRegisterPassesThrough(t *testing.T) {
	api := &stubAPI{registerMsg: "Verification code sent."}
	session := NewSession(api, store.NewMemoryStore(), nil)

	msg, err := session.Register(context.Background(), validRegisterForm())
	require.NoError(t, err)
	assert.Equal(t, "Verification code sent.", msg)
	assert.Equal(t, core.StateUnauthenticated, session.State(), "registration does not authenticate")
}

func TestSessionEventsReachSubscribers(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubsub.Subscribe(ctx, events.SessionTopic)
	require.NoError(t, err)

	api := &stubAPI{
		loginToken:   "fresh-token",
		loginProfile: profileFixture(),
	}
	session := NewSession(api, store.NewMemoryStore(), events.NewWatermillPublisher(pubsub))

	_, err = session.Login(ctx, "a@b.com", "secret")
	require.NoError(t, err)
	require.NoError(t, session.Logout(ctx))

	var states []string
	for len(states) < 2 {
		select {
		case msg := <-messages:
			var event core.SessionEvent
			require.NoError(t, json.Unmarshal(msg.Payload, &event))
			msg.Ack()
			states = append(states, event.State)
		case <-ctx.Done():
			t.Fatalf("timed out, got states %v", states)
		}
	}
	assert.Equal(t, []string{"authenticated", "unauthenticated"}, states)
}

func validRegisterForm() core.RegisterForm {
	return core.RegisterForm{
		FirstName:       "Amina",
		SecondName:      "Haddad",
		Email:           "a@b.com",
		PhoneNumber:     "5551234567",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		Gender:          "female",
		Address:         "12 Harbor Street",
		Birthdate:       time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
	}
}

// writeFailingStore accepts reads but fails every write.
type writeFailingStore struct {
	store.MemoryStore
}

func (s *writeFailingStore) Set(ctx context.Context, token core.Credential) error {
	return core.ErrStoreUnavailable
}
