// Package tool defines the directive catalogue: a closed set of built-in
// tool kinds with descriptors, an override table for user-registered
// tools, and the pure catalogue filter that selects which descriptions a
// mode exposes to the model.
package tool

import (
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Kind enumerates the built-in tool variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindReadFile
	KindWriteToFile
	KindListFiles
	KindInsertContent
	KindSearchAndReplace
	KindFetchURLsContent
	KindAskFollowupQuestion
	KindAttemptCompletion
	KindSwitchMode
)

// Built-in directive names as emitted by the model.
const (
	NameReadFile            = "read_file"
	NameWriteToFile         = "write_to_file"
	NameListFiles           = "list_files"
	NameInsertContent       = "insert_content"
	NameSearchAndReplace    = "search_and_replace"
	NameFetchURLsContent    = "fetch_urls_content"
	NameAskFollowupQuestion = "ask_followup_question"
	NameAttemptCompletion   = "attempt_completion"
	NameSwitchMode          = "switch_mode"
)

// DescribeContext carries the environment a description is generated for.
type DescribeContext struct {
	VaultRoot  string
	ActivePath string
}

// Descriptor describes one tool: its identity, group membership,
// applicability gate and description generator. A Describe returning ""
// disables the tool for the current build configuration, excluding it
// from both the prompt catalogue and dispatch.
type Descriptor struct {
	Kind            Kind
	Name            string
	Groups          []types.GroupName
	AlwaysAvailable bool

	// AppliesTo gates the tool on mode slug and experiment flags.
	// Nil means always applicable.
	AppliesTo func(mode types.Mode, experiments map[string]bool) bool

	// Describe renders the prompt catalogue entry for this tool.
	Describe func(ctx DescribeContext) string

	// ArgumentNames documents the flat key-value argument set; unknown
	// keys in a directive are ignored, not errors.
	ArgumentNames []string
}

func (d Descriptor) inGroup(g types.GroupName) bool {
	for _, have := range d.Groups {
		if have == g {
			return true
		}
	}
	return false
}

// applies evaluates the applicability gate.
func (d Descriptor) applies(mode types.Mode, experiments map[string]bool) bool {
	if d.AppliesTo == nil {
		return true
	}
	return d.AppliesTo(mode, experiments)
}
