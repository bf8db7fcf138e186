package ports

import (
	"context"

	"github.com/galenus-health/galenus-go/core"
)

// TokenStore persists the single bearer credential across process
// restarts. Presence, absence and storage failure are distinct
// outcomes so that callers can decide how to degrade.
type TokenStore interface {
	// Get returns the stored credential. ok is false when nothing is
	// stored. err wraps core.ErrStoreUnavailable when storage cannot
	// be reached; in that case ok is false as well.
	Get(ctx context.Context) (token core.Credential, ok bool, err error)

	// Set overwrites any prior credential. The value is durable when
	// Set returns.
	Set(ctx context.Context, token core.Credential) error

	// Clear removes the credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
