// Package rest is the HTTP client for the Galenus pharmacy API. It
// attaches the stored bearer credential to outgoing requests and
// transparently recovers from an authorization failure exactly once
// per logical call by exchanging the cookie-held session credential
// for a fresh access token.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
)

const (
	defaultTimeout = 30 * time.Second

	// refreshTimeout bounds the silent refresh round trip so a hung
	// refresh cannot stall the original call indefinitely.
	refreshTimeout = 10 * time.Second
)

// Client performs authenticated calls against the pharmacy API.
type Client struct {
	base  *url.URL
	http  *http.Client
	store ports.TokenStore
	log   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// installed if the replacement has none: the refresh credential rides
// on cookies.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the API at baseURL, reading and writing the
// bearer credential through store.
func New(baseURL string, store ports.TokenStore, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		base:  base,
		http:  &http.Client{Timeout: defaultTimeout},
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	return c, nil
}

// request is a single logical outgoing call. The body is held as bytes
// so a post-refresh retry re-sends an identical payload.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string

	// noAuth skips the bearer header and the refresh-retry path:
	// login, refresh and the public medicine-database endpoints.
	noAuth bool
}

type response struct {
	status int
	body   []byte
}

// do performs req with the stored credential attached, refreshing the
// credential at most once when the server reports an authorization
// failure. attemptedRefresh is the one-shot marker: scoped to this
// call, never to the request value.
func (c *Client) do(ctx context.Context, req *request) (*response, error) {
	var token core.Credential
	haveToken := false
	if !req.noAuth {
		token, haveToken = c.currentToken(ctx)
	}

	attemptedRefresh := false
	for {
		resp, err := c.dispatch(ctx, req, token, haveToken)
		if err != nil {
			// Network failures surface unchanged; only a genuine
			// authorization status triggers the refresh path.
			return nil, err
		}
		if req.noAuth || resp.status != http.StatusUnauthorized {
			return resp, nil
		}
		if attemptedRefresh {
			// The refreshed credential was rejected as well.
			return nil, core.ErrSessionExpired
		}
		attemptedRefresh = true

		token, err = c.refresh(ctx)
		if err != nil {
			if clearErr := c.store.Clear(ctx); clearErr != nil {
				c.log.Warn("failed to clear token store after refresh failure", "error", clearErr)
			}
			return nil, fmt.Errorf("%w: %v", core.ErrSessionExpired, err)
		}
		if err := c.store.Set(ctx, token); err != nil {
			// Degraded persistence: the retry still carries the fresh
			// token, but the next process start will look signed out.
			c.log.Warn("failed to persist refreshed token", "error", err)
		}
		haveToken = true
	}
}

// currentToken reads the store, degrading a storage failure to "no
// token" so requests proceed unauthenticated rather than failing.
func (c *Client) currentToken(ctx context.Context) (core.Credential, bool) {
	token, ok, err := c.store.Get(ctx)
	if err != nil {
		c.log.Warn("token store read failed, proceeding without credential", "error", err)
		return "", false
	}
	return token, ok
}

// dispatch sends one HTTP request and drains the body.
func (c *Client) dispatch(ctx context.Context, req *request, token core.Credential, haveToken bool) (*response, error) {
	u := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", req.method, req.path, err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if haveToken && !token.IsZero() {
		httpReq.Header.Set("Authorization", "Bearer "+token.String())
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", req.method, req.path, err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

type tokenPayload struct {
	AccessToken string `json:"access_token"`
}

// refresh exchanges the implicit cookie credential for a new bearer
// token. The caller persists the result and decides what a failure
// means for the current call.
func (c *Client) refresh(ctx context.Context) (core.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	resp, err := c.dispatch(ctx, &request{
		method: http.MethodPost,
		path:   "/auth/jwt/refresh",
		noAuth: true,
	}, "", false)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("refresh rejected: status %d", resp.status)
	}

	var out tokenPayload
	if err := json.Unmarshal(resp.body, &out); err != nil || out.AccessToken == "" {
		return "", fmt.Errorf("refresh response malformed")
	}
	c.log.Debug("access token refreshed")
	return core.Credential(out.AccessToken), nil
}

// doJSON performs a JSON round trip through the authenticated path.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, noAuth bool) error {
	req := &request{method: method, path: path, noAuth: noAuth}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		req.body = body
		req.contentType = "application/json"
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		return decodeError(resp)
	}
	if out != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// decodeError maps a non-2xx response onto the typed error model.
// FastAPI-shaped bodies carry either a string detail or a list of
// field-located validation messages.
func decodeError(resp *response) error {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := ""
	if len(resp.body) > 0 && json.Unmarshal(resp.body, &payload) == nil && payload.Detail != nil {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			detail = s
		} else if fieldErrs := decodeFieldErrors(payload.Detail); len(fieldErrs) > 0 {
			return fieldErrs
		}
	}
	return &core.APIError{Status: resp.status, Detail: detail}
}

func decodeFieldErrors(raw json.RawMessage) core.ValidationError {
	var items []struct {
		Loc []json.RawMessage `json:"loc"`
		Msg string            `json:"msg"`
	}
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}

	errs := core.ValidationError{}
	for _, it := range items {
		field := core.GeneralField
		if len(it.Loc) > 0 {
			var name string
			if json.Unmarshal(it.Loc[len(it.Loc)-1], &name) == nil && name != "" {
				field = name
			}
		}
		errs[field] = it.Msg
	}
	return errs
}
