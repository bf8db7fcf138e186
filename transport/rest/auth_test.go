package rest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galenus-health/galenus-go/adapters/store"
	"github.com/galenus-health/galenus-go/apitest"
	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/transport/rest"
)

func newClient(t *testing.T) (*rest.Client, *apitest.Server, *store.MemoryStore) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	tokens := store.NewMemoryStore()
	client, err := rest.New(srv.URL, tokens)
	require.NoError(t, err)
	return client, srv, tokens
}

func TestLoginReturnsTokenAndProfile(t *testing.T) {
	client, srv, tokens := newClient(t)
	srv.Seed(testEmail, testPassword, core.UserProfile{FirstName: "Amina"})

	token, profile, err := client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	assert.False(t, token.IsZero())
	assert.Equal(t, testEmail, profile.Email)
	assert.Equal(t, "Amina", profile.FirstName)

	// persisting the credential is the session service's decision
	_, ok, err := tokens.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	client, srv, _ := newClient(t)
	srv.Seed(testEmail, testPassword, core.UserProfile{})

	_, _, err := client.Login(context.Background(), testEmail, "wrong")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	client, _, _ := newClient(t)
	ctx := context.Background()

	form := core.RegisterForm{
		FirstName:       "Amina",
		SecondName:      "Haddad",
		Email:           testEmail,
		PhoneNumber:     "5551234567",
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Gender:          "female",
		Address:         "12 Harbor Street",
		Birthdate:       time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
	}
	msg, err := client.Register(ctx, form)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	// unverified accounts cannot log in yet
	_, _, err = client.Login(ctx, testEmail, testPassword)
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	require.NoError(t, client.VerifyCode(ctx, testEmail, "123456"))

	_, profile, err := client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)
}

func TestVerifyCodeRejectsWrongCode(t *testing.T) {
	client, srv, _ := newClient(t)
	srv.Seed(testEmail, testPassword, core.UserProfile{})

	err := client.VerifyCode(context.Background(), testEmail, "000000")
	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}

func TestRequestVerification(t *testing.T) {
	client, _, _ := newClient(t)
	assert.NoError(t, client.RequestVerification(context.Background(), testEmail))
}

func TestRemoteLogout(t *testing.T) {
	client, srv, _, _ := signedIn(t)

	require.NoError(t, client.Logout(context.Background()))

	srv.SetFailLogout(true)
	err := client.Logout(context.Background())
	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, 0, srv.RefreshCalls(), "logout never spends a refresh")
}
