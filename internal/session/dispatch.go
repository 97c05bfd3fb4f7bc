package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vaultmind-ai/vaultmind/internal/logging"
	"github.com/vaultmind-ai/vaultmind/internal/mode"
	"github.com/vaultmind-ai/vaultmind/internal/policy"
	"github.com/vaultmind-ai/vaultmind/internal/tool"
	"github.com/vaultmind-ai/vaultmind/internal/vault"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Dispatcher maps parsed directives to host actions. It owns no state of
// its own; the session it acts on is passed per call.
type Dispatcher struct {
	actions  vault.Actions
	resolver vault.Resolver
	active   func() string
	modes    *mode.Registry
	tools    *tool.Registry
	policy   policy.Policy
}

// NewDispatcher wires a dispatcher. active reports the host's active
// resource for target fallback and may be nil.
func NewDispatcher(actions vault.Actions, resolver vault.Resolver, active func() string, modes *mode.Registry, tools *tool.Registry, pol policy.Policy) *Dispatcher {
	if active == nil {
		active = func() string { return "" }
	}
	return &Dispatcher{
		actions:  actions,
		resolver: resolver,
		active:   active,
		modes:    modes,
		tools:    tools,
		policy:   pol,
	}
}

// Known reports whether a directive name resolves to a registered tool.
func (dp *Dispatcher) Known(name string) bool {
	_, ok := dp.tools.Get(name)
	return ok
}

// Dispatch executes one directive against the host and returns the result
// text folded back into the conversation. An unknown tool is not an
// error; it yields a diagnostic string the model can read. Target-less
// directives fall back to the active resource; with no active resource
// either, ErrNoTargetResource is returned.
func (dp *Dispatcher) Dispatch(ctx context.Context, sess *types.Session, m types.Mode, experiments map[string]bool, d Directive) (string, error) {
	desc, ok := dp.tools.Get(d.Name)
	if !ok {
		return fmt.Sprintf("Tool %s is not available.", d.Name), nil
	}

	describeCtx := tool.DescribeContext{ActivePath: dp.active()}
	inCatalogue := dp.tools.Allowed(d.Name, m, experiments, describeCtx)
	if err := dp.policy.Check(d.Name, inCatalogue); err != nil {
		return "", err
	}

	logging.Debug().Str("tool", d.Name).Str("session", sess.ID).Msg("dispatching directive")

	switch desc.Kind {
	case tool.KindReadFile:
		return dp.readFile(ctx, d)
	case tool.KindWriteToFile:
		return dp.writeToFile(ctx, d)
	case tool.KindListFiles:
		return dp.listFiles(ctx, d)
	case tool.KindInsertContent:
		return dp.insertContent(ctx, d)
	case tool.KindSearchAndReplace:
		return dp.searchAndReplace(ctx, d)
	case tool.KindFetchURLsContent:
		return dp.fetchURLs(ctx, d)
	case tool.KindAskFollowupQuestion:
		return dp.askFollowup(d)
	case tool.KindAttemptCompletion:
		return strings.TrimSpace(d.Args["result"]), nil
	case tool.KindSwitchMode:
		return dp.switchMode(sess, d)
	default:
		return fmt.Sprintf("Tool %s is not available.", d.Name), nil
	}
}

// targetPath resolves a directive's path argument, falling back to the
// host's active resource.
func (dp *Dispatcher) targetPath(d Directive) (string, error) {
	if p := d.Args["path"]; p != "" {
		return p, nil
	}
	if p := dp.active(); p != "" {
		return p, nil
	}
	return "", types.ErrNoTargetResource
}

func (dp *Dispatcher) readFile(ctx context.Context, d Directive) (string, error) {
	path, err := dp.targetPath(d)
	if err != nil {
		return "", err
	}
	content, err := dp.actions.ReadFull(ctx, path)
	if err != nil {
		return fmt.Sprintf("Error reading %s: %v", path, err), nil
	}
	return vault.AddLineNumbers(content, 1), nil
}

func (dp *Dispatcher) writeToFile(ctx context.Context, d Directive) (string, error) {
	path, err := dp.targetPath(d)
	if err != nil {
		return "", err
	}
	if err := dp.actions.WriteFull(ctx, path, d.Args["content"]); err != nil {
		return fmt.Sprintf("Error writing %s: %v", path, err), nil
	}
	return fmt.Sprintf("Successfully wrote to %s.", path), nil
}

func (dp *Dispatcher) listFiles(ctx context.Context, d Directive) (string, error) {
	path := d.Args["path"]
	recursive := d.Args["recursive"] == "true"
	paths, err := dp.actions.ListTree(ctx, path, recursive)
	if err != nil {
		return fmt.Sprintf("Error listing %s: %v", path, err), nil
	}
	if len(paths) == 0 {
		return "(empty)", nil
	}
	return strings.Join(paths, "\n"), nil
}

func (dp *Dispatcher) insertContent(ctx context.Context, d Directive) (string, error) {
	path, err := dp.targetPath(d)
	if err != nil {
		return "", err
	}
	var position *int
	if raw := d.Args["line"]; raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			return fmt.Sprintf("Invalid line number %q.", raw), nil
		}
		position = &n
	}
	if err := dp.actions.AppendOrInsert(ctx, path, d.Args["content"], position); err != nil {
		return fmt.Sprintf("Error inserting into %s: %v", path, err), nil
	}
	if position != nil {
		return fmt.Sprintf("Inserted content into %s at line %d.", path, *position), nil
	}
	return fmt.Sprintf("Appended content to %s.", path), nil
}

func (dp *Dispatcher) searchAndReplace(ctx context.Context, d Directive) (string, error) {
	path, err := dp.targetPath(d)
	if err != nil {
		return "", err
	}
	result, err := dp.actions.SearchAndReplace(ctx, path, d.Args["search"], d.Args["replace"])
	if err != nil {
		return fmt.Sprintf("Error editing %s: %v", path, err), nil
	}
	return result, nil
}

// fetchURLs resolves each listed url to markdown; one failing url does not
// abort the rest.
func (dp *Dispatcher) fetchURLs(ctx context.Context, d Directive) (string, error) {
	listed := d.Args["url"]
	if listed == "" {
		listed = d.Args["urls"]
	}
	var urls []string
	for _, raw := range strings.FieldsFunc(listed, func(r rune) bool { return r == '\n' || r == ',' }) {
		if u := strings.TrimSpace(raw); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return "No urls provided.", nil
	}

	var sb strings.Builder
	for i, u := range urls {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		content, err := dp.resolver.Resolve(ctx, types.Mentionable{Kind: types.MentionURL, URL: u})
		if err != nil {
			content = fmt.Sprintf("(Error fetching %s: %v)", u, err)
		}
		fmt.Fprintf(&sb, "Content of %s:\n\n%s", u, content)
	}
	return sb.String(), nil
}

func (dp *Dispatcher) askFollowup(d Directive) (string, error) {
	question := strings.TrimSpace(d.Args["question"])
	if question == "" {
		return "No question provided.", nil
	}
	if followUp := strings.TrimSpace(d.Args["follow_up"]); followUp != "" {
		return question + "\n\n" + followUp, nil
	}
	return question, nil
}

// switchMode changes the session's mode for subsequent compilations.
func (dp *Dispatcher) switchMode(sess *types.Session, d Directive) (string, error) {
	slug := strings.TrimSpace(d.Args["mode_slug"])
	m, err := dp.modes.Get(slug)
	if err != nil {
		return fmt.Sprintf("Cannot switch mode: %v", err), nil
	}
	sess.ModeSlug = m.Slug
	return fmt.Sprintf("Switched to %q mode.", m.Name), nil
}
