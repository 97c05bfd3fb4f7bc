// Package session orchestrates conversation rounds: submitting user
// turns, streaming model replies with reasoning separated from content,
// cooperative cancellation, and dispatching model-emitted directives to
// host actions.
package session
