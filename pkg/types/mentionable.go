package types

import (
	"encoding/json"
	"fmt"
)

// MentionableKind discriminates the variants of a mentionable resource.
type MentionableKind string

const (
	MentionFile    MentionableKind = "file"
	MentionFolder  MentionableKind = "folder"
	MentionBlock   MentionableKind = "block"
	MentionCurrent MentionableKind = "current"
	MentionURL     MentionableKind = "url"
	MentionCorpus  MentionableKind = "corpus"
)

// Mentionable is a typed reference to a host resource attached to a user
// turn. It carries identity only; content is resolved at compile time.
type Mentionable struct {
	Kind MentionableKind `json:"kind"`

	// Path identifies file, folder and block variants.
	Path string `json:"path,omitempty"`

	// StartLine/EndLine bound a block variant (1-based, inclusive).
	StartLine int `json:"startLine,omitempty"`
	EndLine   int `json:"endLine,omitempty"`

	// URL identifies the url variant.
	URL string `json:"url,omitempty"`
}

// Key derives the identity used for set semantics on a turn's attachment
// list: resource path, variant, and range.
func (m Mentionable) Key() string {
	switch m.Kind {
	case MentionBlock:
		return fmt.Sprintf("%s:%s#L%d-%d", m.Kind, m.Path, m.StartLine, m.EndLine)
	case MentionURL:
		return fmt.Sprintf("%s:%s", m.Kind, m.URL)
	default:
		return fmt.Sprintf("%s:%s", m.Kind, m.Path)
	}
}

// AddMentionable appends m to list, preserving insertion order and
// collapsing duplicates by derived key.
func AddMentionable(list []Mentionable, m Mentionable) []Mentionable {
	key := m.Key()
	for _, existing := range list {
		if existing.Key() == key {
			return list
		}
	}
	return append(list, m)
}

// UnmarshalMentionable decodes a mentionable, rejecting unknown kinds.
func UnmarshalMentionable(data json.RawMessage) (Mentionable, error) {
	var m Mentionable
	if err := json.Unmarshal(data, &m); err != nil {
		return Mentionable{}, err
	}
	switch m.Kind {
	case MentionFile, MentionFolder, MentionBlock, MentionCurrent, MentionURL, MentionCorpus:
		return m, nil
	default:
		return Mentionable{}, fmt.Errorf("unknown mentionable kind: %q", m.Kind)
	}
}
