package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SearchAndReplace replaces every literal occurrence of search in the file
// at path and returns a short human-readable change summary. When the
// search string does not occur, the error names the closest-matching line
// so the model can correct itself on the next turn.
func (v *Vault) SearchAndReplace(ctx context.Context, path, search, replace string) (string, error) {
	if search == "" {
		return "", fmt.Errorf("search text must not be empty")
	}

	content, err := v.ReadFull(ctx, path)
	if err != nil {
		return "", err
	}

	count := strings.Count(content, search)
	if count == 0 {
		hint := closestLine(content, search)
		if hint != "" {
			return "", fmt.Errorf("search text not found in %s; closest line is %q", path, hint)
		}
		return "", fmt.Errorf("search text not found in %s", path)
	}

	updated := strings.ReplaceAll(content, search, replace)
	if err := v.WriteFull(ctx, path, updated); err != nil {
		return "", err
	}

	return fmt.Sprintf("Replaced %d occurrence(s) in %s\n%s",
		count, path, DiffSummary(content, updated)), nil
}

// closestLine finds the line of content most similar to target by
// normalized Levenshtein distance. Returns "" when nothing comes close.
func closestLine(content, target string) string {
	best := ""
	bestScore := 0.0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		score := similarity(trimmed, strings.TrimSpace(target))
		if score > bestScore {
			bestScore = score
			best = trimmed
		}
	}
	if bestScore < 0.5 {
		return ""
	}
	return best
}

// similarity is 1 - dist/maxLen over the two strings.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

const maxSummaryLines = 20

// DiffSummary renders a compact +/- line summary of a content change.
func DiffSummary(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, true)
	dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	lines := 0
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			if lines >= maxSummaryLines {
				sb.WriteString("…\n")
				return sb.String()
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
			lines++
		}
	}
	return sb.String()
}
