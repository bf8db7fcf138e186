package core

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the opaque bearer token issued by the pharmacy API.
// The client never verifies its signature; the server is the only
// authority on validity. Claim accessors exist for display and logging.
type Credential string

// IsZero reports whether no credential is held.
func (c Credential) IsZero() bool {
	return c == ""
}

func (c Credential) String() string {
	return string(c)
}

func (c Credential) claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(string(c), claims); err != nil {
		return nil, ErrInvalidCredentialFormat
	}
	return claims, nil
}

// ExpiresAt returns the token's exp claim. The zero time is returned
// for tokens without an expiry claim.
func (c Credential) ExpiresAt() (time.Time, error) {
	claims, err := c.claims()
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// Subject returns the token's sub claim, typically the user ID.
func (c Credential) Subject() (string, error) {
	claims, err := c.claims()
	if err != nil {
		return "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", ErrInvalidCredentialFormat
	}
	return sub, nil
}
