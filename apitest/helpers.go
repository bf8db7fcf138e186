package apitest

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/galenus-health/galenus-go/core"
)

// Seed registers a verified account that can log in immediately.
func (s *Server) Seed(email, password string, profile core.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile.Email = email
	profile.IsActive = true
	profile.IsVerified = true
	s.accounts[email] = &account{
		password: password,
		profile:  profile,
		verified: true,
	}
}

// IssueToken mints a valid access token for email without a login
// round trip, so tests can place it straight into a token store.
func (s *Server) IssueToken(email string) core.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.New().String()
	s.tokens[token] = email
	return core.Credential(token)
}

// RevokeToken makes the middleware reject one access token, the way
// an expired token is rejected by the real API.
func (s *Server) RevokeToken(token core.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[string(token)] = true
}

// TokenValid reports whether the middleware would accept token.
func (s *Server) TokenValid(token core.Credential) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.tokens[string(token)]
	return known && !s.revoked[string(token)] && !s.rejectBearer
}

// SetRejectBearer makes every authenticated call fail with 401, even
// after a successful refresh.
func (s *Server) SetRejectBearer(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectBearer = reject
}

// SetFailRefresh makes the refresh endpoint answer 401.
func (s *Server) SetFailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// SetFailLogout makes the remote logout endpoint answer 500.
func (s *Server) SetFailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

// RefreshCalls returns how many times the refresh endpoint was hit.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// MeCalls returns how many times /users/me was hit.
func (s *Server) MeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meCalls
}

// LoginCalls returns how many times the login endpoint was hit.
func (s *Server) LoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls
}

// SeedInventory replaces the inventory list.
func (s *Server) SeedInventory(items []gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory = items
}

// SeedMedicines replaces the medicine database.
func (s *Server) SeedMedicines(items []gin.H) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medicines = items
}
