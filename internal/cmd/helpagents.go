package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// helpAgentsCmd represents the help-agents command
var helpAgentsCmd = &cobra.Command{
	Use:   "help-agents",
	Short: "Output agent-optimized command reference",
	Long: `Output a concise, token-efficient command reference for AI agents.

Examples:
  clipctx help-agents                # Markdown output (default)
  clipctx help-agents --format json  # JSON output for parsing`,
	Run: runHelpAgents,
}

func init() {
	rootCmd.AddCommand(helpAgentsCmd)
}

func runHelpAgents(cmd *cobra.Command, args []string) {
	if outputFormat == "json" {
		fmt.Fprint(cmd.OutOrStdout(), generateAgentReferenceJSON())
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), generateAgentReference())
}

func generateAgentReference() string {
	return `# clipctx Command Reference for AI Agents

## Where is this line?

` + "```bash" + `
clipctx context <file> --line N --column N                 # cursor
clipctx context <file> --line N --column N --end-line M    # selection
` + "```" + `

Returns function_name (Type::method when the type is known), class_name
and module_name (outer::inner). Missing fields were not determined.
extra.module_source is "ast" when the module came from the syntax tree and
"path" when it was inferred from the file path.

## Share a snippet

` + "```bash" + `
clipctx copy <file> --start N --end M            # to clipboard (stdout fallback)
clipctx copy <file> --start N --stdout --style plain
` + "```" + `

## Long sessions

` + "```bash" + `
clipctx serve        # MCP tools: clip_context, clip_snippet
` + "```" + `

Lines and columns are 1-based. Columns count characters.
`
}

type agentCommand struct {
	Command string `json:"command"`
	Purpose string `json:"purpose"`
}

func generateAgentReferenceJSON() string {
	ref := map[string]interface{}{
		"version": Version,
		"commands": []agentCommand{
			{"clipctx context <file> --line N --column N [--end-line M --end-column K]", "structural context at a position or selection"},
			{"clipctx copy <file> --start N [--end M] [--style rich|plain] [--stdout]", "copy lines with a context header"},
			{"clipctx serve", "MCP server exposing clip_context and clip_snippet"},
			{"clipctx cache stats|clear|prune", "inspect the revision store"},
		},
		"positions": "1-based lines, 1-based character columns",
	}
	data, _ := json.MarshalIndent(ref, "", "  ")
	return string(data) + "\n"
}
