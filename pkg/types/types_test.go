package types

import (
	"encoding/json"
	"testing"
)

func TestMentionableKeys(t *testing.T) {
	cases := map[string]Mentionable{
		"file:a.md":          {Kind: MentionFile, Path: "a.md"},
		"block:a.md#L3-9":    {Kind: MentionBlock, Path: "a.md", StartLine: 3, EndLine: 9},
		"url:https://x.test": {Kind: MentionURL, URL: "https://x.test"},
		"current:":           {Kind: MentionCurrent},
	}
	for want, m := range cases {
		if got := m.Key(); got != want {
			t.Errorf("Key() = %q, want %q", got, want)
		}
	}
}

func TestAddMentionableCollapsesDuplicates(t *testing.T) {
	var list []Mentionable
	list = AddMentionable(list, Mentionable{Kind: MentionFile, Path: "a.md"})
	list = AddMentionable(list, Mentionable{Kind: MentionFile, Path: "b.md"})
	list = AddMentionable(list, Mentionable{Kind: MentionFile, Path: "a.md"})

	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0].Path != "a.md" || list[1].Path != "b.md" {
		t.Error("insertion order not preserved")
	}
}

func TestAddMentionableDistinguishesRanges(t *testing.T) {
	var list []Mentionable
	list = AddMentionable(list, Mentionable{Kind: MentionBlock, Path: "a.md", StartLine: 1, EndLine: 5})
	list = AddMentionable(list, Mentionable{Kind: MentionBlock, Path: "a.md", StartLine: 6, EndLine: 9})

	if len(list) != 2 {
		t.Errorf("distinct ranges collapsed: %d", len(list))
	}
}

func TestUnmarshalMentionableRejectsUnknownKind(t *testing.T) {
	if _, err := UnmarshalMentionable(json.RawMessage(`{"kind":"hologram","path":"a.md"}`)); err == nil {
		t.Fatal("unknown kind accepted")
	}
	m, err := UnmarshalMentionable(json.RawMessage(`{"kind":"folder","path":"dir"}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind != MentionFolder {
		t.Errorf("kind %q", m.Kind)
	}
}

func TestProgressTerminalIsSticky(t *testing.T) {
	p := QueryProgress{Phase: PhaseDone}
	if next := p.Advance(QueryProgress{Phase: PhaseGenerating}); next.Phase != PhaseDone {
		t.Errorf("terminal phase advanced to %s", next.Phase)
	}
}

func TestProgressCounterIsMonotonic(t *testing.T) {
	p := QueryProgress{Phase: PhaseReadingAttachments, Completed: 3, Total: 5}
	next := p.Advance(QueryProgress{Phase: PhaseReadingAttachments, Completed: 1, Total: 5})
	if next.Completed != 3 {
		t.Errorf("counter regressed to %d", next.Completed)
	}
}

func TestSessionHelpers(t *testing.T) {
	s := &Session{}
	if s.LastTurn() != nil {
		t.Error("LastTurn on empty session")
	}
	s.Turns = append(s.Turns,
		&Turn{Role: RoleUser},
		&Turn{Role: RoleAssistant},
		&Turn{Role: RoleUser},
	)
	if s.UserTurnCount() != 2 {
		t.Errorf("user turns %d", s.UserTurnCount())
	}
	if s.LastTurn().Role != RoleUser {
		t.Error("LastTurn wrong")
	}
}
