// Package types defines the shared data model for vaultmind: conversation
// sessions and turns, mentionable vault resources, modes, model selection,
// query progress, and the error taxonomy used across the engine.
package types
