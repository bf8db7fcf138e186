package core

import "time"

// State is the process-wide authentication state. Exactly one value is
// live at a time; transitions are driven by the session service.
type State int

const (
	// StateUnauthenticated is the initial state: no usable credential
	StateUnauthenticated State = iota

	// StateChecking means session restoration is in progress
	StateChecking

	// StateAuthenticated means a profile has been fetched with a valid credential
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionEvent describes a session state transition, published so that
// presentation components and peer terminals can react to it.
type SessionEvent struct {
	State string    `json:"state"`
	Email string    `json:"email,omitempty"`
	At    time.Time `json:"at"`
}
