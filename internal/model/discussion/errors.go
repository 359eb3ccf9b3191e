package discussion

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session identifier is unknown.
var ErrSessionNotFound = errors.New("session not found")

// InvalidStateTransitionError reports an illegal lifecycle move. The session
// is left untouched; the error carries enough context for the caller to
// explain what was attempted.
type InvalidStateTransitionError struct {
	From   State
	To     State
	Reason string
}

func (e *InvalidStateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition %s -> %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}

// NewInvalidTransition builds an InvalidStateTransitionError.
func NewInvalidTransition(from, to State, reason string) error {
	return &InvalidStateTransitionError{From: from, To: to, Reason: reason}
}
