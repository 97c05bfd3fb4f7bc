package types

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a conversation's ordered log. Turns are immutable
// once appended, except that the most recent assistant turn grows in place
// while its exchange is streaming.
type Turn struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`

	// Attachments are the mentionables the user attached to this turn.
	// Set semantics keyed by Mentionable.Key, insertion order preserved.
	Attachments []Mentionable `json:"attachments,omitempty"`

	// IsToolResult marks an assistant turn that only echoes a directive
	// result back to the model. Such turns are excluded from the request
	// window sent to the transport.
	IsToolResult bool `json:"isToolResult,omitempty"`

	// Reasoning holds model reasoning streamed on the separate channel.
	Reasoning string `json:"reasoning,omitempty"`

	// PromptContent is the compiled form of a user turn: attachment blocks,
	// environment snapshot and the wrapped query. Filled in once at compile
	// time and reused on retry instead of re-resolving attachments.
	PromptContent string `json:"promptContent,omitempty"`
}

// ModelSelection names the provider and model serving a session.
type ModelSelection struct {
	ProviderID string `json:"providerId"`
	ModelID    string `json:"modelId"`
}

// Session is the ordered turn log plus mutable session state.
type Session struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`

	Turns []*Turn `json:"turns"`

	// ModeSlug is the active mode for the next compilation.
	ModeSlug string `json:"modeSlug,omitempty"`

	// Model is the active provider/model selection.
	Model ModelSelection `json:"model"`

	// Pending holds mentionables attached in the UI but not yet submitted
	// with a turn.
	Pending []Mentionable `json:"pending,omitempty"`
}

// LastTurn returns the most recent turn, or nil for an empty log.
func (s *Session) LastTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return s.Turns[len(s.Turns)-1]
}

// UserTurnCount reports how many user turns the log contains.
func (s *Session) UserTurnCount() int {
	n := 0
	for _, t := range s.Turns {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}
