package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

// Login exchanges an email/password pair for a bearer credential and
// the user's profile. It never enters the refresh-retry path: no
// credential exists yet when it runs. The store is not touched; that
// is the session service's decision.
func (c *Client) Login(ctx context.Context, email, password string) (core.Credential, *core.UserProfile, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := c.dispatch(ctx, &request{
		method:      http.MethodPost,
		path:        "/auth/jwt/login",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		noAuth:      true,
	}, "", false)
	if err != nil {
		return "", nil, err
	}
	switch resp.status {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized:
		return "", nil, core.ErrInvalidCredentials
	default:
		return "", nil, decodeError(resp)
	}

	var out tokenPayload
	if err := json.Unmarshal(resp.body, &out); err != nil || out.AccessToken == "" {
		return "", nil, fmt.Errorf("login response malformed")
	}
	token := core.Credential(out.AccessToken)

	// The login response carries only the token; the profile comes from
	// /users/me using the fresh credential directly, since the store
	// may not hold it yet.
	profile, err := c.userWithToken(ctx, token)
	if err != nil {
		return "", nil, fmt.Errorf("fetch profile after login: %w", err)
	}
	return token, profile, nil
}

func (c *Client) userWithToken(ctx context.Context, token core.Credential) (*core.UserProfile, error) {
	resp, err := c.dispatch(ctx, &request{
		method: http.MethodGet,
		path:   "/users/me",
		noAuth: true,
	}, token, true)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, decodeError(resp)
	}

	var profile core.UserProfile
	if err := json.Unmarshal(resp.body, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}

// CurrentUser fetches the authenticated profile through the
// refresh-retrying transport.
func (c *Client) CurrentUser(ctx context.Context) (*core.UserProfile, error) {
	var profile core.UserProfile
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &profile, false); err != nil {
		return nil, err
	}
	return &profile, nil
}

type registerPayload struct {
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Birthdate   string `json:"birthdate"`
}

// Register submits a registration request and returns the server's
// confirmation message. Local field validation happens in the session
// service before this call is made.
func (c *Client) Register(ctx context.Context, form core.RegisterForm) (string, error) {
	payload := registerPayload{
		FirstName:   form.FirstName,
		SecondName:  form.SecondName,
		Email:       form.Email,
		PhoneNumber: form.PhoneNumber,
		Password:    form.Password,
		Gender:      form.Gender,
		Address:     form.Address,
		Birthdate:   form.Birthdate.Format("2006-01-02"),
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", payload, &out, true); err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = "Registration received. Check your email for a verification code."
	}
	return out.Message, nil
}

// VerifyCode confirms an emailed verification code.
func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	payload := map[string]string{"email": email, "code": code}
	return c.doJSON(ctx, http.MethodPost, "/auth/verify-code", payload, nil, true)
}

// RequestVerification asks the server to send a fresh verification code.
func (c *Client) RequestVerification(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.doJSON(ctx, http.MethodPost, "/auth/request-verification", payload, nil, true)
}

// Logout invalidates the server-side session. It uses the direct path:
// a 401 here must not spend a refresh round trip on a session that is
// being torn down.
func (c *Client) Logout(ctx context.Context) error {
	token, haveToken := c.currentToken(ctx)
	resp, err := c.dispatch(ctx, &request{
		method: http.MethodPost,
		path:   "/auth/jwt/logout",
		noAuth: true,
	}, token, haveToken)
	if err != nil {
		return err
	}
	if resp.status >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	return nil
}
