package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for compile- and dispatch-level rejections.
var (
	// ErrEmptyConversation: compilation was asked to run on an empty log.
	ErrEmptyConversation = errors.New("empty conversation")

	// ErrLastTurnNotUser: the most recent turn was not authored by the user.
	ErrLastTurnNotUser = errors.New("last turn is not a user turn")

	// ErrNoTargetResource: a directive named no path and no resource is active.
	ErrNoTargetResource = errors.New("no target resource")

	// ErrExchangeActive: a submission arrived while an exchange was in flight.
	ErrExchangeActive = errors.New("an exchange is already active for this session")

	// ErrNotFound: a stored session or resource does not exist.
	ErrNotFound = errors.New("not found")
)

// ConfigurationError is fatal to an exchange: missing API key, model or
// base URL. It is reported to the user verbatim and never retried.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Field, e.Msg)
}

// TransportError wraps a network-level failure from the LLM transport.
// The exchange ends; the user may resubmit.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport error: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ResolutionError reports an unreadable or missing resource. It is
// non-fatal: compilation degrades the attachment to a placeholder block.
type ResolutionError struct {
	Ref string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %v", e.Ref, e.Err)
}
func (e *ResolutionError) Unwrap() error { return e.Err }

// DispatchError reports bad or missing directive arguments. It is folded
// into the directive's textual result so the model can self-correct.
type DispatchError struct {
	Tool string
	Msg  string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Msg)
}
