package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snipkit/clipctx/internal/clipboard"
	"github.com/snipkit/clipctx/internal/snippet"
)

// copyCmd represents the copy command
var copyCmd = &cobra.Command{
	Use:   "copy <file>",
	Short: "Copy lines with a context header to the clipboard",
	Long: `Copy a range of lines to the clipboard, preceded by a header naming the
file, the line range, the enclosing function, class and module, and git
metadata (branch, commit, commit time, permalink).

Header fields that cannot be determined are left out. Outside a git
repository, or for unsupported languages, the copy still happens with
whatever is known. When no clipboard tool is available the snippet is
printed to stdout instead.

Clipboard tools tried: pbcopy (macOS), clip.exe (Windows, WSL), wl-copy,
xclip and xsel (Linux). Set clipboard.command in the config to override.`,
	Example: `  clipctx copy src/net/http.rs --start 40 --end 55
  clipctx copy main.go --start 12 --style plain
  clipctx copy lib.rs --start 3 --end 9 --stdout`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

var (
	copyStart  int
	copyEnd    int
	copyStyle  string
	copyStdout bool
)

func init() {
	rootCmd.AddCommand(copyCmd)

	copyCmd.Flags().IntVarP(&copyStart, "start", "s", 0, "First line (1-based)")
	copyCmd.Flags().IntVarP(&copyEnd, "end", "e", 0, "Last line, inclusive (default: --start)")
	copyCmd.Flags().StringVar(&copyStyle, "style", "", "Header style: rich or plain (default: from config)")
	copyCmd.Flags().BoolVar(&copyStdout, "stdout", false, "Print the snippet instead of copying it")
	copyCmd.MarkFlagRequired("start")
}

func runCopy(cmd *cobra.Command, args []string) error {
	var style snippet.Style
	if copyStyle != "" {
		parsed, err := snippet.ParseStyle(copyStyle)
		if err != nil {
			return err
		}
		style = parsed
	}

	path, err := absPath(args[0])
	if err != nil {
		return err
	}

	svc, cfg, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	sn, err := svc.Snippet(cmd.Context(), path, copyStart, copyEnd)
	if err != nil {
		return err
	}
	text := svc.Render(sn, style)

	stdout := clipboard.StreamWriter{W: cmd.OutOrStdout()}
	if copyStdout {
		return stdout.WriteText(cmd.Context(), text)
	}

	copied := true
	writer := clipboard.FallbackWriter{
		Primary:   clipboard.NewCommandWriter(cfg.Clipboard.Command),
		Secondary: stdout,
		OnFallback: func(err error) {
			copied = false
			logger.Warn("clipboard unavailable, printing snippet", "error", err)
		},
	}
	if err := writer.WriteText(cmd.Context(), text); err != nil {
		return err
	}
	if copied {
		fmt.Fprintf(cmd.ErrOrStderr(), "Copied %s lines %d-%d\n", sn.Value(snippet.FieldFile), sn.StartLine, sn.EndLine)
	}
	return nil
}
