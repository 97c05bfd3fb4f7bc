package tool

import (
	"fmt"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// builtinDescriptors returns the closed built-in variant set in catalogue
// order.
func builtinDescriptors() []Descriptor {
	return []Descriptor{
		{
			Kind:          KindReadFile,
			Name:          NameReadFile,
			Groups:        []types.GroupName{types.GroupRead},
			Describe:      describeReadFile,
			ArgumentNames: []string{"path"},
		},
		{
			Kind:          KindListFiles,
			Name:          NameListFiles,
			Groups:        []types.GroupName{types.GroupRead},
			Describe:      describeListFiles,
			ArgumentNames: []string{"path", "recursive"},
		},
		{
			Kind:          KindWriteToFile,
			Name:          NameWriteToFile,
			Groups:        []types.GroupName{types.GroupEdit},
			Describe:      describeWriteToFile,
			ArgumentNames: []string{"path", "content"},
		},
		{
			Kind:          KindInsertContent,
			Name:          NameInsertContent,
			Groups:        []types.GroupName{types.GroupEdit},
			Describe:      describeInsertContent,
			ArgumentNames: []string{"path", "content", "line"},
		},
		{
			Kind:          KindSearchAndReplace,
			Name:          NameSearchAndReplace,
			Groups:        []types.GroupName{types.GroupEdit},
			Describe:      describeSearchAndReplace,
			ArgumentNames: []string{"path", "search", "replace"},
		},
		{
			Kind:   KindFetchURLsContent,
			Name:   NameFetchURLsContent,
			Groups: []types.GroupName{types.GroupWeb},
			AppliesTo: func(_ types.Mode, experiments map[string]bool) bool {
				// Web access can be disabled wholesale.
				disabled, ok := experiments["disable_web"]
				return !ok || !disabled
			},
			Describe:      describeFetchURLs,
			ArgumentNames: []string{"url"},
		},
		{
			Kind:            KindAskFollowupQuestion,
			Name:            NameAskFollowupQuestion,
			AlwaysAvailable: true,
			Describe:        describeAskFollowup,
			ArgumentNames:   []string{"question"},
		},
		{
			Kind:            KindAttemptCompletion,
			Name:            NameAttemptCompletion,
			AlwaysAvailable: true,
			Describe:        describeAttemptCompletion,
			ArgumentNames:   []string{"result"},
		},
		{
			Kind:            KindSwitchMode,
			Name:            NameSwitchMode,
			AlwaysAvailable: true,
			Describe:        describeSwitchMode,
			ArgumentNames:   []string{"mode_slug", "reason"},
		},
	}
}

func describeReadFile(ctx DescribeContext) string {
	return fmt.Sprintf(`## read_file
Description: Read the full contents of a file in the vault (root: %s). Returns the content with line numbers so you can reference exact locations. If path is omitted, the currently active note is read.
Parameters:
- path: (optional) Vault-relative path of the file to read. Defaults to the active note.
Usage:
<read_file>
<path>notes/example.md</path>
</read_file>`, ctx.VaultRoot)
}

func describeListFiles(ctx DescribeContext) string {
	return `## list_files
Description: List files and folders in the vault. Use this to discover what exists before reading or editing.
Parameters:
- path: (optional) Folder to list, relative to the vault root. Defaults to the root.
- recursive: (optional) "true" to list the entire subtree.
Usage:
<list_files>
<path>projects</path>
<recursive>true</recursive>
</list_files>`
}

func describeWriteToFile(ctx DescribeContext) string {
	return `## write_to_file
Description: Write the COMPLETE content of a file, creating it if needed and overwriting it otherwise. Any parent folders are created automatically. Always provide the entire intended content; partial content will replace the whole file.
Parameters:
- path: (optional) Vault-relative path of the file to write. Defaults to the active note.
- content: (required) The complete content to write.
Usage:
<write_to_file>
<path>notes/new-note.md</path>
<content>
Full note content here
</content>
</write_to_file>`
}

func describeInsertContent(ctx DescribeContext) string {
	return `## insert_content
Description: Add new lines to an existing file without touching the rest of it. Appends to the end unless a line number is given, in which case the content is inserted before that line.
Parameters:
- path: (optional) Vault-relative path of the target file. Defaults to the active note.
- content: (required) The lines to insert.
- line: (optional) 1-based line number to insert before.
Usage:
<insert_content>
<path>notes/journal.md</path>
<line>10</line>
<content>
New entry
</content>
</insert_content>`
}

func describeSearchAndReplace(ctx DescribeContext) string {
	return `## search_and_replace
Description: Replace every literal occurrence of a text fragment in a file. Best for small, scattered, repetitive changes such as correcting a term or a typo that appears in several places.
Parameters:
- path: (optional) Vault-relative path of the target file. Defaults to the active note.
- search: (required) The exact text to find.
- replace: (required) The replacement text.
Usage:
<search_and_replace>
<path>notes/example.md</path>
<search>teh</search>
<replace>the</replace>
</search_and_replace>`
}

func describeFetchURLs(ctx DescribeContext) string {
	return `## fetch_urls_content
Description: Fetch the content of a web page and return it as markdown. Use this to bring external reference material into the conversation.
Parameters:
- url: (required) A fully-formed http(s) URL.
Usage:
<fetch_urls_content>
<url>https://example.com/article</url>
</fetch_urls_content>`
}

func describeAskFollowup(ctx DescribeContext) string {
	return `## ask_followup_question
Description: Ask the user a question when you are missing information required to proceed. Use sparingly; prefer using tools to find answers yourself.
Parameters:
- question: (required) A clear, specific question.
Usage:
<ask_followup_question>
<question>Which folder should the summary go in?</question>
</ask_followup_question>`
}

func describeAttemptCompletion(ctx DescribeContext) string {
	return `## attempt_completion
Description: Present the final result of the task to the user. Use this once the task is done. The result must be final: never end it with a question or an offer of further assistance.
Parameters:
- result: (required) The final result of the task.
Usage:
<attempt_completion>
<result>The note has been summarized and saved.</result>
</attempt_completion>`
}

func describeSwitchMode(ctx DescribeContext) string {
	return `## switch_mode
Description: Request a switch to a different mode when the task needs capabilities the current mode lacks, for example switching to write mode to edit a note.
Parameters:
- mode_slug: (required) The slug of the mode to switch to.
- reason: (optional) Why the switch is needed.
Usage:
<switch_mode>
<mode_slug>write</mode_slug>
<reason>Need to edit the note</reason>
</switch_mode>`
}
