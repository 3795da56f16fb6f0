// Package mcp provides an MCP (Model Context Protocol) server for clipctx.
// Agents resolve code context and build snippets through MCP tools; the
// process stays up, so parsed trees are reused across calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/snipkit/clipctx/internal/clip"
	"github.com/snipkit/clipctx/internal/output"
	"github.com/snipkit/clipctx/internal/snippet"
	"github.com/snipkit/clipctx/internal/workspace"
)

// Server wraps the MCP server with clipctx-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	svc          *clip.Service
	logger       *slog.Logger
	watch        bool
	debounce     time.Duration
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	// Watch evicts cached state for files deleted or renamed in the workspace.
	Watch    bool
	Debounce time.Duration
}

// AllTools lists all available tools
var AllTools = []string{"clip_context", "clip_snippet"}

// New creates a new MCP server backed by svc.
func New(svc *clip.Service, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := server.NewMCPServer(
		"clipctx",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		svc:          svc,
		logger:       logger,
		watch:        cfg.Watch,
		debounce:     cfg.Debounce,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case "clip_context":
		return s.registerContextTool()
	case "clip_snippet":
		return s.registerSnippetTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio(ctx context.Context) error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	if s.watch {
		stop, err := s.startWatcher(ctx)
		if err != nil {
			s.logger.Warn("file watcher unavailable", "root", s.svc.Root(), "error", err)
		} else {
			defer stop()
		}
	}

	return server.ServeStdio(s.mcpServer)
}

// startWatcher evicts trees and revisions of files that disappear.
func (s *Server) startWatcher(ctx context.Context) (func(), error) {
	w, err := workspace.NewWatcher(s.svc.Root(), s.debounce, s.logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := w.Start(ctx); err != nil {
		cancel()
		w.Close()
		return nil, err
	}

	go s.consumeEvents(ctx, w.Events())

	return func() {
		cancel()
		w.Close()
	}, nil
}

func (s *Server) consumeEvents(ctx context.Context, events <-chan workspace.FileEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleFileEvent(ev)
		}
	}
}

func (s *Server) handleFileEvent(ev workspace.FileEvent) {
	if !ev.Type.Gone() {
		return
	}
	s.logger.Debug("evicting", "path", ev.Path, "event", ev.Type)
	s.svc.Forget(ev.Path)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.logger.Info("exiting after inactivity", "timeout", s.timeout)
			s.svc.Close()
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

const (
	contextDescription = "Resolve the enclosing function, class and module at a position or selection in a source file."
	snippetDescription = "Render a range of lines with a header naming the file, lines, enclosing function, class, module and git metadata."
)

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"clip_context": {
		Name:        "clip_context",
		Description: contextDescription,
		Parameters: []ParameterSchema{
			{Name: "file", Type: "string", Description: "File path, absolute or relative to the workspace root", Required: true},
			{Name: "line", Type: "number", Description: "1-based line", Required: true},
			{Name: "column", Type: "number", Description: "1-based column in characters", Required: true},
			{Name: "end_line", Type: "number", Description: "1-based end line of a selection"},
			{Name: "end_column", Type: "number", Description: "1-based end column of a selection"},
		},
	},
	"clip_snippet": {
		Name:        "clip_snippet",
		Description: snippetDescription,
		Parameters: []ParameterSchema{
			{Name: "file", Type: "string", Description: "File path, absolute or relative to the workspace root", Required: true},
			{Name: "start_line", Type: "number", Description: "First line, 1-based", Required: true},
			{Name: "end_line", Type: "number", Description: "Last line, inclusive (default: start_line)"},
			{Name: "style", Type: "string", Description: "Header style: rich or plain (default: configured style)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case "clip_context":
		return s.executeContext(ctx, args)
	case "clip_snippet":
		return s.executeSnippet(ctx, args)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerContextTool registers the clip_context tool
func (s *Server) registerContextTool() error {
	tool := mcp.NewTool("clip_context",
		mcp.WithDescription(contextDescription),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the workspace root"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line"),
		),
		mcp.WithNumber("column",
			mcp.Required(),
			mcp.Description("1-based column in characters"),
		),
		mcp.WithNumber("end_line",
			mcp.Description("1-based end line of a selection"),
		),
		mcp.WithNumber("end_column",
			mcp.Description("1-based end column of a selection"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleContext)
	return nil
}

// registerSnippetTool registers the clip_snippet tool
func (s *Server) registerSnippetTool() error {
	tool := mcp.NewTool("clip_snippet",
		mcp.WithDescription(snippetDescription),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the workspace root"),
		),
		mcp.WithNumber("start_line",
			mcp.Required(),
			mcp.Description("First line, 1-based"),
		),
		mcp.WithNumber("end_line",
			mcp.Description("Last line, inclusive (default: start_line)"),
		),
		mcp.WithString("style",
			mcp.Description("Header style: rich or plain (default: configured style)"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleSnippet)
	return nil
}

func (s *Server) handleContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeContext(ctx, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleSnippet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.executeSnippet(ctx, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeContext(ctx context.Context, args map[string]interface{}) (string, error) {
	file, _ := args["file"].(string)
	if file == "" {
		return "", fmt.Errorf("file parameter is required")
	}
	line, ok := intArg(args, "line")
	if !ok {
		return "", fmt.Errorf("line parameter is required")
	}
	column, ok := intArg(args, "column")
	if !ok {
		return "", fmt.Errorf("column parameter is required")
	}
	endLine, _ := intArg(args, "end_line")
	endColumn, _ := intArg(args, "end_column")

	out, err := s.svc.Context(ctx, file, output.Range{
		StartLine:   line,
		StartColumn: column,
		EndLine:     endLine,
		EndColumn:   endColumn,
	})
	if err != nil {
		return "", err
	}
	return toJSON(out)
}

func (s *Server) executeSnippet(ctx context.Context, args map[string]interface{}) (string, error) {
	file, _ := args["file"].(string)
	if file == "" {
		return "", fmt.Errorf("file parameter is required")
	}
	start, ok := intArg(args, "start_line")
	if !ok {
		return "", fmt.Errorf("start_line parameter is required")
	}
	end, ok := intArg(args, "end_line")
	if !ok {
		end = start
	}

	var style snippet.Style
	if raw, _ := args["style"].(string); raw != "" {
		parsed, err := snippet.ParseStyle(raw)
		if err != nil {
			return "", err
		}
		style = parsed
	}

	sn, err := s.svc.Snippet(ctx, file, start, end)
	if err != nil {
		return "", err
	}
	return s.svc.Render(sn, style), nil
}

// Helper functions

// intArg reads a numeric argument. JSON numbers decode as float64.
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
