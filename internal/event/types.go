package event

import "github.com/vaultmind-ai/vaultmind/pkg/types"

// TurnCreatedData is the data for turn.created events.
type TurnCreatedData struct {
	SessionID string      `json:"sessionID"`
	Turn      *types.Turn `json:"turn"`
}

// TurnUpdatedData is the data for turn.updated events. Delta carries the
// content chunk that produced the update, when one exists.
type TurnUpdatedData struct {
	SessionID string      `json:"sessionID"`
	Turn      *types.Turn `json:"turn"`
	Delta     string      `json:"delta,omitempty"`
}

// ReasoningUpdatedData is the data for turn.reasoning events, streamed on
// a channel distinct from content updates.
type ReasoningUpdatedData struct {
	SessionID string `json:"sessionID"`
	TurnID    string `json:"turnID"`
	Delta     string `json:"delta"`
}

// ProgressChangedData is the data for progress.changed events.
type ProgressChangedData struct {
	SessionID string              `json:"sessionID"`
	Progress  types.QueryProgress `json:"progress"`
}

// SessionSavedData is the data for session.saved events.
type SessionSavedData struct {
	SessionID string `json:"sessionID"`
}

// ResourceChangedData is the data for resource.changed events published by
// the vault watcher.
type ResourceChangedData struct {
	Path string `json:"path"`
	Op   string `json:"op"`
}
