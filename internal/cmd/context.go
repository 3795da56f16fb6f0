package cmd

import (
	"github.com/spf13/cobra"

	"github.com/snipkit/clipctx/internal/output"
)

// contextCmd represents the context command
var contextCmd = &cobra.Command{
	Use:   "context <file>",
	Short: "Show the function, class and module at a position",
	Long: `Resolve the structural context at a position in a source file.

Lines and columns are 1-based; columns count characters, not bytes. Give
--end-line (and optionally --end-column) to resolve a selection instead
of a cursor: the result is the context enclosing the whole selection.

Unsupported files produce an empty context, not an error. When a file's
syntax declares no module, the module is inferred from its path for
languages with path-based modules (Rust, Python).`,
	Example: `  clipctx context src/net/http.rs --line 42 --column 9
  clipctx context app/models.py --line 10 --column 1 --end-line 30
  clipctx context main.go --line 5 --column 3 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

var (
	contextLine      int
	contextColumn    int
	contextEndLine   int
	contextEndColumn int
)

func init() {
	rootCmd.AddCommand(contextCmd)

	contextCmd.Flags().IntVarP(&contextLine, "line", "l", 0, "Line (1-based)")
	contextCmd.Flags().IntVarP(&contextColumn, "column", "c", 1, "Column in characters (1-based)")
	contextCmd.Flags().IntVar(&contextEndLine, "end-line", 0, "End line of a selection (1-based)")
	contextCmd.Flags().IntVar(&contextEndColumn, "end-column", 0, "End column of a selection (1-based)")
	contextCmd.MarkFlagRequired("line")
}

func runContext(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}

	svc, _, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := svc.Context(cmd.Context(), path, output.Range{
		StartLine:   contextLine,
		StartColumn: contextColumn,
		EndLine:     contextEndLine,
		EndColumn:   contextEndColumn,
	})
	if err != nil {
		return err
	}
	out.File = args[0]

	return writeOutput(cmd, out)
}
