package ports

import (
	"context"

	"github.com/galenus-health/galenus-go/core"
)

// EventPublisher notifies subscribers about session state transitions.
// Presentation components subscribe in-process; peer terminals can be
// reached through a broker-backed implementation.
type EventPublisher interface {
	PublishStateChange(ctx context.Context, event core.SessionEvent) error
}
