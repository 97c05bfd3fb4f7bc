package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vaultmind-ai/vaultmind/internal/config"
	"github.com/vaultmind-ai/vaultmind/internal/mode"
	"github.com/vaultmind-ai/vaultmind/internal/tool"
	"github.com/vaultmind-ai/vaultmind/internal/vault"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// fakeResolver serves canned content and fails for paths in failing.
type fakeResolver struct {
	content map[string]string
	failing map[string]bool
}

func (f *fakeResolver) Resolve(_ context.Context, m types.Mentionable) (string, error) {
	if f.failing[m.Path] {
		return "", &types.ResolutionError{Ref: m.Key(), Err: errors.New("unreadable")}
	}
	if c, ok := f.content[m.Path]; ok {
		return c, nil
	}
	return "", &types.ResolutionError{Ref: m.Key(), Err: errors.New("missing")}
}

func (f *fakeResolver) ListChildren(context.Context, string, int) ([]vault.Entry, error) {
	return nil, nil
}

func newTestCompiler(resolver *fakeResolver) *Compiler {
	settings := &config.Settings{
		VaultDir:    "/vault",
		Experiments: map[string]bool{},
	}
	c := NewCompiler(resolver, mode.NewRegistry(), tool.NewRegistry(), settings, nil)
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func userTurn(content string, attachments ...types.Mentionable) *types.Turn {
	return &types.Turn{ID: "t-user", Role: types.RoleUser, Content: content, Attachments: attachments}
}

func TestCompileRejectsEmptyConversation(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	_, err := c.Compile(context.Background(), &types.Session{ID: "s"}, nil)
	if !errors.Is(err, types.ErrEmptyConversation) {
		t.Fatalf("got %v, want ErrEmptyConversation", err)
	}
}

func TestCompileRejectsTrailingAssistantTurn(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	sess := &types.Session{ID: "s", Turns: []*types.Turn{
		userTurn("hi"),
		{Role: types.RoleAssistant, Content: "hello"},
	}}
	_, err := c.Compile(context.Background(), sess, nil)
	if !errors.Is(err, types.ErrLastTurnNotUser) {
		t.Fatalf("got %v, want ErrLastTurnNotUser", err)
	}
}

func TestFirstTurnWrappedAsTask(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	sess := &types.Session{ID: "s", Turns: []*types.Turn{userTurn("Summarize this note")}}

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	last := compiled.Messages[len(compiled.Messages)-1]
	if !strings.Contains(last.Content, "<task>Summarize this note</task>") {
		t.Errorf("missing task wrap:\n%s", last.Content)
	}
}

func TestFollowUpTurnWrappedAsFeedback(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	sess := &types.Session{ID: "s", Turns: []*types.Turn{
		userTurn("first"),
		{Role: types.RoleAssistant, Content: "reply"},
		userTurn("make it shorter"),
	}}

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	last := compiled.Messages[len(compiled.Messages)-1]
	if !strings.Contains(last.Content, "<feedback>make it shorter</feedback>") {
		t.Errorf("missing feedback wrap:\n%s", last.Content)
	}
}

func TestFailedAttachmentDegradesToPlaceholder(t *testing.T) {
	resolver := &fakeResolver{
		content: map[string]string{"a.md": "A", "c.md": "C"},
		failing: map[string]bool{"b.md": true},
	}
	c := newTestCompiler(resolver)
	sess := &types.Session{ID: "s", Turns: []*types.Turn{userTurn("go",
		types.Mentionable{Kind: types.MentionFile, Path: "a.md"},
		types.Mentionable{Kind: types.MentionFile, Path: "b.md"},
		types.Mentionable{Kind: types.MentionFile, Path: "c.md"},
	)}}

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	content := compiled.Messages[len(compiled.Messages)-1].Content
	if got := strings.Count(content, "<user_mention_file"); got != 3 {
		t.Errorf("expected 3 context blocks, got %d", got)
	}
	if got := strings.Count(content, "(Error reading"); got != 1 {
		t.Errorf("expected exactly 1 placeholder, got %d:\n%s", got, content)
	}
}

func TestAttachmentBlocksPrecedeEnvironmentSnapshot(t *testing.T) {
	resolver := &fakeResolver{content: map[string]string{"a.md": "A"}}
	c := newTestCompiler(resolver)
	sess := &types.Session{ID: "s", Turns: []*types.Turn{userTurn("go",
		types.Mentionable{Kind: types.MentionFile, Path: "a.md"},
	)}}

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	content := compiled.Messages[len(compiled.Messages)-1].Content
	block := strings.Index(content, "<user_mention_file")
	env := strings.Index(content, "<environment_details>")
	task := strings.Index(content, "<task>")
	if block < 0 || env < 0 || task < 0 {
		t.Fatalf("missing segment:\n%s", content)
	}
	if !(block < env && env < task) {
		t.Errorf("segment order wrong: block=%d env=%d task=%d", block, env, task)
	}
}

func TestPromptContentResolvedOnce(t *testing.T) {
	resolver := &fakeResolver{content: map[string]string{"a.md": "A"}}
	c := newTestCompiler(resolver)
	turn := userTurn("go", types.Mentionable{Kind: types.MentionFile, Path: "a.md"})
	sess := &types.Session{ID: "s", Turns: []*types.Turn{turn}}

	if _, err := c.Compile(context.Background(), sess, nil); err != nil {
		t.Fatal(err)
	}
	first := turn.PromptContent

	resolver.content["a.md"] = "CHANGED"
	if _, err := c.Compile(context.Background(), sess, nil); err != nil {
		t.Fatal(err)
	}
	if turn.PromptContent != first {
		t.Error("prompt content re-resolved on second compile")
	}
}

func TestHistoryWindowCapsAtNineteen(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	sess := &types.Session{ID: "s"}
	for i := 0; i < 15; i++ {
		sess.Turns = append(sess.Turns,
			userTurn(fmt.Sprintf("q%d", i)),
			&types.Turn{Role: types.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	sess.Turns = append(sess.Turns, userTurn("final"))

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	// One system message plus exactly the window of resolved turns.
	if got := len(compiled.Messages) - 1; got != 19 {
		t.Errorf("window size %d, want 19", got)
	}
	last := compiled.Messages[len(compiled.Messages)-1]
	if !strings.Contains(last.Content, "final") {
		t.Error("latest user turn missing from window")
	}
}

func TestToolResultTurnsExcludedFromWindow(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	sess := &types.Session{ID: "s", Turns: []*types.Turn{
		userTurn("read it"),
		{Role: types.RoleAssistant, Content: "<read_file>...</read_file>"},
		{Role: types.RoleAssistant, Content: "[read_file] Result:\nsecret", IsToolResult: true},
		userTurn("thanks"),
	}}

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range compiled.Messages {
		if strings.Contains(msg.Content, "secret") {
			t.Error("tool-result echo leaked into request window")
		}
	}
	if got := len(compiled.Messages) - 1; got != 3 {
		t.Errorf("expected 3 windowed turns, got %d", got)
	}
}

func TestAttachmentProgressIsMonotonic(t *testing.T) {
	resolver := &fakeResolver{content: map[string]string{"a.md": "A", "b.md": "B"}}
	c := newTestCompiler(resolver)
	sess := &types.Session{ID: "s", Turns: []*types.Turn{userTurn("go",
		types.Mentionable{Kind: types.MentionFile, Path: "a.md"},
		types.Mentionable{Kind: types.MentionFile, Path: "b.md"},
	)}}

	var counts []int
	progress := types.QueryProgress{}
	onProgress := func(p types.QueryProgress) {
		progress = progress.Advance(p)
		if p.Phase == types.PhaseReadingAttachments {
			counts = append(counts, progress.Completed)
		}
	}
	if _, err := c.Compile(context.Background(), sess, onProgress); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] < counts[i-1] {
			t.Errorf("progress regressed: %v", counts)
		}
	}
	if len(counts) == 0 || counts[len(counts)-1] != 2 {
		t.Errorf("expected final count 2, got %v", counts)
	}
}

func TestSystemMessageSectionOrder(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})
	sess := &types.Session{ID: "s", ModeSlug: "write", Turns: []*types.Turn{userTurn("go")}}

	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	system := compiled.System

	markers := []string{
		"You are vaultmind",
		"TOOL USE",
		"# Tools",
		"# Tool Use Guidelines",
		"CAPABILITIES",
		"MODES",
		"RULES",
		"OBJECTIVE",
	}
	prev := -1
	for _, m := range markers {
		idx := strings.Index(system, m)
		if idx < 0 {
			t.Fatalf("section %q missing from system message", m)
		}
		if idx <= prev {
			t.Errorf("section %q out of order", m)
		}
		prev = idx
	}
	if strings.Contains(system, "\n\n\n") {
		t.Error("stray separator from an omitted section")
	}
}

func TestWriteModeCatalogueIncludesEditingTools(t *testing.T) {
	c := newTestCompiler(&fakeResolver{})

	askSess := &types.Session{ID: "a", ModeSlug: "ask", Turns: []*types.Turn{userTurn("go")}}
	askCompiled, err := c.Compile(context.Background(), askSess, nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(askCompiled.System, "## write_to_file") {
		t.Error("ask mode exposes write_to_file")
	}

	writeSess := &types.Session{ID: "w", ModeSlug: "write", Turns: []*types.Turn{userTurn("go")}}
	writeCompiled, err := c.Compile(context.Background(), writeSess, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"## write_to_file", "## insert_content", "## search_and_replace"} {
		if !strings.Contains(writeCompiled.System, name) {
			t.Errorf("write mode missing %s", name)
		}
	}
	if !strings.Contains(writeCompiled.System, "prefer the most surgical tool") {
		t.Error("write mode missing editing rules")
	}
}

func TestCustomInstructionsModeBeforeGlobal(t *testing.T) {
	resolver := &fakeResolver{}
	settings := &config.Settings{
		VaultDir:           "/vault",
		GlobalInstructions: "GLOBAL-RULE",
		Experiments:        map[string]bool{},
	}
	modes := mode.NewRegistry()
	modes.Register(types.Mode{
		Slug:               "ask",
		Name:               "Ask",
		RoleDefinition:     "You are vaultmind, a custom ask mode.",
		Groups:             []types.GroupName{types.GroupRead},
		CustomInstructions: "MODE-RULE",
	})
	c := NewCompiler(resolver, modes, tool.NewRegistry(), settings, nil)

	sess := &types.Session{ID: "s", Turns: []*types.Turn{userTurn("go")}}
	compiled, err := c.Compile(context.Background(), sess, nil)
	if err != nil {
		t.Fatal(err)
	}
	modeIdx := strings.Index(compiled.System, "MODE-RULE")
	globalIdx := strings.Index(compiled.System, "GLOBAL-RULE")
	if modeIdx < 0 || globalIdx < 0 {
		t.Fatal("custom instructions missing")
	}
	if modeIdx > globalIdx {
		t.Error("mode instructions must precede global instructions")
	}
}
