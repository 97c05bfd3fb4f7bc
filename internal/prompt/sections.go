package prompt

import (
	"fmt"
	"strings"

	"github.com/vaultmind-ai/vaultmind/internal/tool"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// systemMessage assembles the system prompt in its fixed section order:
// role definition, tool-use protocol, tool catalogue, guidelines,
// extension servers, capabilities, mode catalogue, rules, objective and
// custom instructions. Empty sections are omitted without leaving stray
// separators.
func systemMessage(m types.Mode, catalogue []tool.Description, modes []types.Mode, globalInstructions, vaultRoot string) string {
	sections := []string{
		m.RoleDefinition,
		toolUseSection(),
		toolCatalogueSection(catalogue),
		toolGuidelinesSection(),
		extensionServersSection(),
		capabilitiesSection(m, vaultRoot),
		modesSection(modes),
		rulesSection(m, vaultRoot),
		objectiveSection(),
		customInstructionsSection(m.CustomInstructions, globalInstructions),
	}

	var nonEmpty []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(s))
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

func toolUseSection() string {
	return `====

TOOL USE

You have access to a set of tools that are executed upon the user's approval. You use one tool per message, and receive the result of that tool use in the user's next response. You use tools step-by-step to accomplish a given task, with each tool use informed by the result of the previous tool use.

# Tool Use Formatting

Tool use is formatted using XML-style tags. The tool name is enclosed in opening and closing tags, and each parameter is similarly enclosed within its own set of tags. Here's the structure:

<tool_name>
<parameter1_name>value1</parameter1_name>
<parameter2_name>value2</parameter2_name>
</tool_name>

For example:

<read_file>
<path>notes/ideas.md</path>
</read_file>

Always adhere to this format for the tool use to ensure proper parsing and execution.`
}

func toolCatalogueSection(catalogue []tool.Description) string {
	if len(catalogue) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("# Tools\n")
	for _, d := range catalogue {
		sb.WriteString("\n")
		sb.WriteString(d.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func toolGuidelinesSection() string {
	return `# Tool Use Guidelines

1. Choose the most appropriate tool based on the task and the tool descriptions provided. Assess if you need additional information to proceed, and which of the available tools would be most effective for gathering this information.
2. If multiple actions are needed, use one tool at a time per message to accomplish the task iteratively, with each tool use being informed by the result of the previous tool use. Do not assume the outcome of any tool use.
3. Formulate your tool use using the XML format specified for each tool.
4. After each tool use, the user will respond with the result of that tool use. This result will provide you with the necessary information to continue your task or make further decisions.
5. ALWAYS wait for user confirmation after each tool use before proceeding. Never assume the success of a tool use without explicit confirmation of the result.

It is crucial to proceed step-by-step, waiting for the user's message after each tool use before moving forward with the task. This approach allows you to:
1. Confirm the success of each step before proceeding.
2. Address any issues or errors that arise immediately.
3. Adapt your approach based on new information or unexpected results.
4. Ensure that each action builds correctly on the previous ones.`
}

// extensionServersSection lists connected extension tool servers. None are
// wired in this build, so the section collapses to nothing.
func extensionServersSection() string {
	return ""
}

func capabilitiesSection(m types.Mode, vaultRoot string) string {
	var sb strings.Builder
	sb.WriteString("====\n\nCAPABILITIES\n\n")
	sb.WriteString(fmt.Sprintf("- You have access to tools that let you work with the user's document vault ('%s').\n", vaultRoot))
	sb.WriteString("- You can read files and list directory contents to understand the vault's structure and content before acting.\n")
	if m.AllowsGroup(types.GroupEdit) {
		sb.WriteString("- You can create new notes, overwrite existing ones, insert content at specific lines, and make targeted replacements within a note.\n")
	}
	if m.AllowsGroup(types.GroupWeb) {
		sb.WriteString("- You can fetch web pages and read their content as markdown to bring external information into the conversation.\n")
	}
	sb.WriteString("- When the user mentions files, folders or block ranges in their message, their content is provided to you directly in the message, so you do not need to re-read it.")
	return sb.String()
}

func modesSection(modes []types.Mode) string {
	if len(modes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("====\n\nMODES\n\n- These are the currently available modes:\n")
	for _, m := range modes {
		sb.WriteString(fmt.Sprintf("  * %q mode (%s) - %s\n", m.Name, m.Slug, firstSentence(m.RoleDefinition)))
	}
	sb.WriteString("- You can switch to another mode with the switch_mode tool when the current mode cannot accomplish what the user asks.")
	return sb.String()
}

func rulesSection(m types.Mode, vaultRoot string) string {
	var sb strings.Builder
	sb.WriteString("====\n\nRULES\n\n")
	sb.WriteString(fmt.Sprintf("- The vault root directory is: %s\n", vaultRoot))
	sb.WriteString("- All file paths must be relative to the vault root. Do not use absolute paths or paths that escape the vault.\n")
	sb.WriteString("- Do not ask for more information than necessary. Use the tools provided to accomplish the user's request efficiently.\n")
	sb.WriteString("- When you ask a question with ask_followup_question, provide concrete suggested answers the user can pick from.\n")
	sb.WriteString("- Your goal is to accomplish the user's task, NOT to engage in a back and forth conversation.\n")
	if m.AllowsGroup(types.GroupEdit) {
		sb.WriteString(`- For editing notes you have access to these tools: write_to_file (for creating new notes or complete rewrites), insert_content (for adding lines without touching existing content), and search_and_replace (for targeted replacements of existing text).
- You should always prefer the most surgical tool available: use search_and_replace to change existing text, insert_content to add new text at a position, and fall back to write_to_file only for new notes or when most of the note changes.
- When using write_to_file, ALWAYS provide the COMPLETE intended content of the note. Partial updates or placeholders like '// rest unchanged' are strictly forbidden.
`)
	}
	sb.WriteString("- It is critical you wait for the user's response after each tool use, in order to confirm its success before proceeding.")
	return sb.String()
}

func objectiveSection() string {
	return `====

OBJECTIVE

You accomplish a given task iteratively, breaking it down into clear steps and working through them methodically.

1. Analyze the user's task and set clear, achievable goals to accomplish it. Prioritize these goals in a logical order.
2. Work through these goals sequentially, utilizing available tools one at a time as necessary.
3. Once you've completed the user's task, use the attempt_completion tool to present the result to the user.
4. The user may provide feedback, which you can use to make improvements and try again. But DO NOT continue in pointless back and forth conversations.`
}

// customInstructionsSection layers mode-level instructions before global
// ones; mode-level wins by coming first under the same header.
func customInstructionsSection(modeInstructions, globalInstructions string) string {
	var parts []string
	if strings.TrimSpace(modeInstructions) != "" {
		parts = append(parts, strings.TrimSpace(modeInstructions))
	}
	if strings.TrimSpace(globalInstructions) != "" {
		parts = append(parts, strings.TrimSpace(globalInstructions))
	}
	if len(parts) == 0 {
		return ""
	}
	return "====\n\nUSER'S CUSTOM INSTRUCTIONS\n\nThe following additional instructions are provided by the user, and should be followed to the best of your ability.\n\n" +
		strings.Join(parts, "\n\n")
}

func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i+1]
	}
	return s
}
