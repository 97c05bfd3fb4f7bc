package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaultmind-ai/vaultmind/internal/vault"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// resolutionOrder is the fixed variant order for attachment blocks:
// files, folders, ranged blocks, urls, corpus, then the active resource.
var resolutionOrder = []types.MentionableKind{
	types.MentionFile,
	types.MentionFolder,
	types.MentionBlock,
	types.MentionURL,
	types.MentionCorpus,
	types.MentionCurrent,
}

// resolveAttachments renders one delimited context block per attachment.
// A failed resolution degrades to a placeholder inside its block; it
// never aborts compilation. Progress is reported monotonically.
func resolveAttachments(
	ctx context.Context,
	resolver vault.Resolver,
	attachments []types.Mentionable,
	onProgress func(types.QueryProgress),
) string {
	if len(attachments) == 0 {
		return ""
	}

	ordered := make([]types.Mentionable, 0, len(attachments))
	for _, kind := range resolutionOrder {
		for _, m := range attachments {
			if m.Kind == kind {
				ordered = append(ordered, m)
			}
		}
	}

	total := len(ordered)
	report := func(completed int) {
		if onProgress != nil {
			onProgress(types.QueryProgress{
				Phase:     types.PhaseReadingAttachments,
				Completed: completed,
				Total:     total,
			})
		}
	}
	report(0)

	var sb strings.Builder
	for i, m := range ordered {
		content, err := resolver.Resolve(ctx, m)
		if err != nil {
			content = fmt.Sprintf("(Error reading %s: %v)", m.Key(), err)
		}
		sb.WriteString(renderBlock(m, content))
		report(i + 1)
	}
	return sb.String()
}

// renderBlock tags resolved content with its kind and source identity.
func renderBlock(m types.Mentionable, content string) string {
	switch m.Kind {
	case types.MentionFile:
		return fmt.Sprintf("<user_mention_file path=%q>\n%s\n</user_mention_file>\n", m.Path, content)
	case types.MentionFolder:
		return fmt.Sprintf("<user_mention_folder path=%q>\n%s\n</user_mention_folder>\n", m.Path, content)
	case types.MentionBlock:
		location := fmt.Sprintf("%s#L%d-%d", m.Path, m.StartLine, m.EndLine)
		return fmt.Sprintf("<user_mention_blocks location=%q>\n%s\n</user_mention_blocks>\n", location, content)
	case types.MentionURL:
		return fmt.Sprintf("<user_mention_url url=%q>\n%s\n</user_mention_url>\n", m.URL, content)
	case types.MentionCorpus:
		return fmt.Sprintf("<vault_overview>\n%s\n</vault_overview>\n", content)
	case types.MentionCurrent:
		return fmt.Sprintf("<current_tab_note>\n%s\n</current_tab_note>\n", content)
	default:
		return fmt.Sprintf("<user_mention kind=%q>\n%s\n</user_mention>\n", m.Kind, content)
	}
}
