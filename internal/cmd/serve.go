package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snipkit/clipctx/internal/mcp"
	"github.com/snipkit/clipctx/internal/workspace"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

The server stays up between calls, so a file parsed once is reused until it
changes. With --watch (the default), files deleted or renamed in the
workspace are dropped from the tree cache and the revision store.

Available Tools:
  clip_context   Enclosing function, class and module at a position
  clip_snippet   Lines rendered with a context header`,
	Example: `  clipctx serve
  clipctx serve --tools context
  clipctx serve --timeout 30m --watch=false
  clipctx serve --list-tools`,
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   string
	serveWatch     bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "0", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Evict deleted and renamed files from the caches")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available MCP tools:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  clip_context   Enclosing function, class and module at a position")
		fmt.Fprintln(out, "  clip_snippet   Lines rendered with a context header")
		return nil
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	svc, _, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	server, err := mcp.New(svc, mcp.Config{
		Tools:    parseTools(serveTools),
		Timeout:  timeout,
		Watch:    serveWatch,
		Debounce: workspace.DefaultDebounce,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		svc.Close()
		os.Exit(0)
	}()

	// stdout is for MCP protocol
	logger.Info("starting MCP server", "root", svc.Root(), "tools", server.ListTools(), "timeout", timeout)

	return server.ServeStdio(cmd.Context())
}

// parseTools splits a comma-separated tool list. Shorthand names get the
// clip_ prefix (context -> clip_context).
func parseTools(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "clip_") {
			t = "clip_" + t
		}
		tools = append(tools, t)
	}
	return tools
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
