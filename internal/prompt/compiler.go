package prompt

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/vaultmind-ai/vaultmind/internal/config"
	"github.com/vaultmind-ai/vaultmind/internal/mode"
	"github.com/vaultmind-ai/vaultmind/internal/tool"
	"github.com/vaultmind-ai/vaultmind/internal/vault"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// historyWindow caps how many resolved turns are sent to the model.
const historyWindow = 19

// Compiler turns a session's turn log into provider-ready messages. It is
// deterministic given the same session, settings and resolver results.
type Compiler struct {
	resolver   vault.Resolver
	modes      *mode.Registry
	tools      *tool.Registry
	settings   *config.Settings
	activePath func() string
	now        func() time.Time
}

// NewCompiler wires a compiler. activePath reports the host's active
// resource and may be nil.
func NewCompiler(resolver vault.Resolver, modes *mode.Registry, tools *tool.Registry, settings *config.Settings, activePath func() string) *Compiler {
	if activePath == nil {
		activePath = func() string { return "" }
	}
	return &Compiler{
		resolver:   resolver,
		modes:      modes,
		tools:      tools,
		settings:   settings,
		activePath: activePath,
		now:        time.Now,
	}
}

// Mode resolves a slug through the compiler's mode registry.
func (c *Compiler) Mode(slug string) (types.Mode, error) {
	return c.modes.Get(slug)
}

// Compiled is the result of one compilation pass.
type Compiled struct {
	System    string
	Messages  []*schema.Message
	Mode      types.Mode
	Catalogue []tool.Description
}

// Compile validates the session, resolves the latest user turn's
// attachments into its prompt content, assembles the system message for
// the session's mode, and windows the resolved history.
//
// The latest turn's attachments are resolved exactly once: a turn whose
// prompt content is already set is reused verbatim on recompilation.
func (c *Compiler) Compile(ctx context.Context, session *types.Session, onProgress func(types.QueryProgress)) (*Compiled, error) {
	if len(session.Turns) == 0 {
		return nil, types.ErrEmptyConversation
	}
	last := session.LastTurn()
	if last.Role != types.RoleUser {
		return nil, types.ErrLastTurnNotUser
	}

	m, err := c.modes.Get(session.ModeSlug)
	if err != nil {
		return nil, err
	}

	if last.PromptContent == "" {
		last.PromptContent = c.resolveUserTurn(ctx, session, last, m, onProgress)
	}

	describeCtx := tool.DescribeContext{
		VaultRoot:  c.settings.VaultDir,
		ActivePath: c.activePath(),
	}
	catalogue := c.tools.CatalogueFor(m, c.settings.Experiments, describeCtx)
	system := systemMessage(m, catalogue, c.modes.List(), c.settings.GlobalInstructions, c.settings.VaultDir)

	messages := []*schema.Message{schema.SystemMessage(system)}
	for _, t := range windowTurns(session.Turns) {
		switch t.Role {
		case types.RoleUser:
			content := t.PromptContent
			if content == "" {
				content = t.Content
			}
			messages = append(messages, schema.UserMessage(content))
		case types.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(t.Content, nil))
		}
	}

	return &Compiled{
		System:    system,
		Messages:  messages,
		Mode:      m,
		Catalogue: catalogue,
	}, nil
}

// resolveUserTurn builds the full prompt content for the latest user turn:
// attachment context blocks, then the environment snapshot, then the query
// wrapped as a task on the first user turn or feedback afterwards.
func (c *Compiler) resolveUserTurn(ctx context.Context, session *types.Session, turn *types.Turn, m types.Mode, onProgress func(types.QueryProgress)) string {
	attached := resolveAttachments(ctx, c.resolver, turn.Attachments, onProgress)

	wrapper := "feedback"
	if session.UserTurnCount() <= 1 {
		wrapper = "task"
	}
	wrapped := fmt.Sprintf("<%s>%s</%s>", wrapper, turn.Content, wrapper)

	var sb []byte
	if attached != "" {
		sb = append(sb, attached...)
		sb = append(sb, '\n')
	}
	sb = append(sb, c.environmentDetails(session, m)...)
	sb = append(sb, "\n\n"...)
	sb = append(sb, wrapped...)
	return string(sb)
}

// environmentDetails is the host state snapshot appended to every
// resolved user turn.
func (c *Compiler) environmentDetails(session *types.Session, m types.Mode) string {
	active := c.activePath()
	if active == "" {
		active = "(none)"
	}
	return fmt.Sprintf(`<environment_details>
# Current File
%s

# Current Time
%s

# Current Mode
%s (%s)
</environment_details>`, active, c.now().Format(time.RFC1123), m.Name, m.Slug)
}

// windowTurns drops assistant turns that merely echo tool results, then
// keeps the most recent turns up to the history window.
func windowTurns(turns []*types.Turn) []*types.Turn {
	kept := make([]*types.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == types.RoleAssistant && t.IsToolResult {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > historyWindow {
		kept = kept[len(kept)-historyWindow:]
	}
	return kept
}
