package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/snipkit/clipctx/internal/clip"
	"github.com/snipkit/clipctx/internal/config"
	"github.com/snipkit/clipctx/internal/output"
	"github.com/snipkit/clipctx/internal/workspace"
)

const queueSource = `package queue

type Queue struct {
	items []int
}

func (q *Queue) Push(v int) {
	q.items = append(q.items, v)
}
`

func newTestServer(t *testing.T, withStore bool) (*Server, string) {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "queue"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "queue", "queue.go"), []byte(queueSource), 0644); err != nil {
		t.Fatal(err)
	}
	if withStore {
		if _, err := config.EnsureConfigDir(root); err != nil {
			t.Fatal(err)
		}
	}

	svc, err := clip.Open(config.DefaultConfig(), root, nil)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	s, err := New(svc, Config{Debounce: 10 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, root
}

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(AllTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(AllTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool     string
		param    string
		required bool
	}{
		{"clip_context", "file", true},
		{"clip_context", "line", true},
		{"clip_context", "column", true},
		{"clip_context", "end_line", false},
		{"clip_context", "end_column", false},
		{"clip_snippet", "file", true},
		{"clip_snippet", "start_line", true},
		{"clip_snippet", "end_line", false},
		{"clip_snippet", "style", false},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.param {
				found = true
				if p.Required != tt.required {
					t.Errorf("tool %s param %s required = %v, want %v", tt.tool, tt.param, p.Required, tt.required)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.param)
		}
	}
}

func TestNewRegistersTools(t *testing.T) {
	s, _ := newTestServer(t, false)

	tools := s.ListTools()
	sort.Strings(tools)
	if strings.Join(tools, ",") != "clip_context,clip_snippet" {
		t.Errorf("ListTools() = %v", tools)
	}
	if len(s.GetToolSchemas()) != 2 {
		t.Errorf("GetToolSchemas() returned %d schemas, want 2", len(s.GetToolSchemas()))
	}
}

func TestNewUnknownTool(t *testing.T) {
	svc, err := clip.Open(config.DefaultConfig(), t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if _, err := New(svc, Config{Tools: []string{"cx_show"}}, nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestCallToolContext(t *testing.T) {
	s, _ := newTestServer(t, false)

	result, err := s.CallTool(context.Background(), "clip_context", map[string]interface{}{
		"file":   "queue/queue.go",
		"line":   float64(8),
		"column": float64(2),
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}

	var out output.ContextOutput
	if err := json.Unmarshal([]byte(result), &out); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, result)
	}
	if out.Context.FunctionName != "Queue::Push" {
		t.Errorf("function_name = %q, want Queue::Push", out.Context.FunctionName)
	}
	if out.Context.ClassName != "Queue" {
		t.Errorf("class_name = %q, want Queue", out.Context.ClassName)
	}
	if out.Language != "go" {
		t.Errorf("language = %q, want go", out.Language)
	}
}

func TestCallToolSnippet(t *testing.T) {
	s, _ := newTestServer(t, false)

	result, err := s.CallTool(context.Background(), "clip_snippet", map[string]interface{}{
		"file":       "queue/queue.go",
		"start_line": float64(8),
		"style":      "plain",
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}

	for _, want := range []string{
		"File: queue/queue.go\n",
		"Lines: 8\n",
		"Function: Queue::Push\n",
		"\tq.items = append(q.items, v)\n",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("snippet missing %q:\n%s", want, result)
		}
	}
}

func TestCallToolErrors(t *testing.T) {
	s, _ := newTestServer(t, false)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"unknown tool", "cx_find", map[string]interface{}{}},
		{"context without file", "clip_context", map[string]interface{}{"line": float64(1), "column": float64(1)}},
		{"context without line", "clip_context", map[string]interface{}{"file": "queue/queue.go", "column": float64(1)}},
		{"context without column", "clip_context", map[string]interface{}{"file": "queue/queue.go", "line": float64(1)}},
		{"context line zero", "clip_context", map[string]interface{}{"file": "queue/queue.go", "line": float64(0), "column": float64(1)}},
		{"context missing file", "clip_context", map[string]interface{}{"file": "nope.go", "line": float64(1), "column": float64(1)}},
		{"snippet without start", "clip_snippet", map[string]interface{}{"file": "queue/queue.go"}},
		{"snippet bad style", "clip_snippet", map[string]interface{}{"file": "queue/queue.go", "start_line": float64(1), "style": "html"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CallTool(context.Background(), tt.tool, tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHandleContextReturnsToolError(t *testing.T) {
	s, _ := newTestServer(t, false)

	req := mcp.CallToolRequest{}
	req.Params.Name = "clip_context"
	req.Params.Arguments = map[string]any{"file": "queue/queue.go"}

	result, err := s.handleContext(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error result for missing line")
	}
}

func TestHandleFileEventEvicts(t *testing.T) {
	s, root := newTestServer(t, true)
	path := filepath.Join(root, "queue", "queue.go")

	if _, err := s.CallTool(context.Background(), "clip_context", map[string]interface{}{
		"file": path, "line": float64(8), "column": float64(2),
	}); err != nil {
		t.Fatal(err)
	}

	s.handleFileEvent(workspace.FileEvent{Type: workspace.EventModify, Path: path})
	stats, err := s.svc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Trees.Entries != 1 || stats.Store.Documents != 1 {
		t.Errorf("modify must not evict: %+v %+v", stats.Trees, stats.Store)
	}

	s.handleFileEvent(workspace.FileEvent{Type: workspace.EventDelete, Path: path})
	stats, err = s.svc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Trees.Entries != 0 || stats.Store.Documents != 0 {
		t.Errorf("delete must evict: %+v %+v", stats.Trees, stats.Store)
	}
}

func TestWatcherEvictsDeletedFile(t *testing.T) {
	s, root := newTestServer(t, true)
	path := filepath.Join(root, "queue", "queue.go")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := s.startWatcher(ctx)
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	defer stop()

	if _, err := s.CallTool(ctx, "clip_context", map[string]interface{}{
		"file": path, "line": float64(8), "column": float64(2),
	}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		stats, err := s.svc.Stats()
		if err != nil {
			t.Fatal(err)
		}
		if stats.Store.Documents == 0 && stats.Trees.Entries == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("deleted file was not evicted")
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{"f": float64(3), "i": 4, "s": "5"}

	if v, ok := intArg(args, "f"); !ok || v != 3 {
		t.Errorf("intArg(f) = %d, %v", v, ok)
	}
	if v, ok := intArg(args, "i"); !ok || v != 4 {
		t.Errorf("intArg(i) = %d, %v", v, ok)
	}
	if _, ok := intArg(args, "s"); ok {
		t.Error("string argument must not parse")
	}
	if _, ok := intArg(args, "missing"); ok {
		t.Error("missing argument must not parse")
	}
}
