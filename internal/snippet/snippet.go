// Package snippet renders a code snippet with its metadata header.
package snippet

import (
	"fmt"
	"strings"

	"github.com/snipkit/clipctx/internal/extract"
	"github.com/snipkit/clipctx/internal/git"
)

// Style selects the header layout.
type Style string

const (
	// StyleRich renders **Label:** value lines and a fenced code block.
	StyleRich Style = "rich"
	// StylePlain renders Label: value lines and the raw code.
	StylePlain Style = "plain"
)

// ParseStyle converts a string to a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rich", "markdown", "md":
		return StyleRich, nil
	case "plain", "text":
		return StylePlain, nil
	default:
		return "", fmt.Errorf("invalid style %q: must be rich or plain", s)
	}
}

// Header field names, in default order.
const (
	FieldFile       = "file"
	FieldLines      = "lines"
	FieldFunction   = "function"
	FieldClass      = "class"
	FieldModule     = "module"
	FieldBranch     = "branch"
	FieldCommit     = "commit"
	FieldCommitTime = "commit_time"
	FieldPermalink  = "permalink"
)

var labels = map[string]string{
	FieldFile:       "File",
	FieldLines:      "Lines",
	FieldFunction:   "Function",
	FieldClass:      "Class",
	FieldModule:     "Module",
	FieldBranch:     "Branch",
	FieldCommit:     "Commit",
	FieldCommitTime: "Commit Time",
	FieldPermalink:  "Permalink",
}

// DefaultFields returns every header field in display order.
func DefaultFields() []string {
	return []string{
		FieldFile, FieldLines, FieldFunction, FieldClass, FieldModule,
		FieldBranch, FieldCommit, FieldCommitTime, FieldPermalink,
	}
}

// IsField reports whether name is a known header field.
func IsField(name string) bool {
	_, ok := labels[name]
	return ok
}

// Snippet is a range of code and everything known about where it came from.
type Snippet struct {
	Path       string       `json:"path" yaml:"path"`
	RelPath    string       `json:"rel_path,omitempty" yaml:"rel_path,omitempty"`
	StartLine  int          `json:"start_line" yaml:"start_line"`
	EndLine    int          `json:"end_line" yaml:"end_line"`
	Code       string       `json:"code" yaml:"code"`
	LanguageID string       `json:"language,omitempty" yaml:"language,omitempty"`
	Context    extract.Info `json:"context" yaml:"context"`
	Git        git.Metadata `json:"git" yaml:"git"`
}

// Options controls rendering.
type Options struct {
	Style Style
	// Fields lists header fields in display order. Empty uses DefaultFields.
	Fields []string
	// Fence is the minimum code fence for rich output. Defaults to ```.
	Fence string
}

// Value returns the display value of a header field, or "".
func (s Snippet) Value(field string) string {
	switch field {
	case FieldFile:
		if s.RelPath != "" {
			return s.RelPath
		}
		return s.Path
	case FieldLines:
		return lineRange(s.StartLine, s.EndLine)
	case FieldFunction:
		return s.Context.FunctionName
	case FieldClass:
		return s.Context.ClassName
	case FieldModule:
		return s.Context.ModuleName
	case FieldBranch:
		return s.Git.Branch
	case FieldCommit:
		return s.Git.Commit
	case FieldCommitTime:
		return s.Git.CommitTime
	case FieldPermalink:
		return s.Git.Permalink
	default:
		return ""
	}
}

// Render formats the header and the code. Fields with empty values are
// left out.
func Render(s Snippet, opts Options) string {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields()
	}

	var b strings.Builder
	for _, field := range fields {
		label, ok := labels[field]
		if !ok {
			continue
		}
		value := s.Value(field)
		if value == "" {
			continue
		}
		if opts.Style == StylePlain {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		} else {
			fmt.Fprintf(&b, "**%s:** %s\n", label, value)
		}
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}

	code := strings.TrimSuffix(s.Code, "\n")
	if opts.Style == StylePlain {
		b.WriteString(code)
		b.WriteByte('\n')
		return b.String()
	}

	fence := fenceFor(code, opts.Fence)
	b.WriteString(fence)
	b.WriteString(fenceLanguage(s.LanguageID))
	b.WriteByte('\n')
	b.WriteString(code)
	b.WriteByte('\n')
	b.WriteString(fence)
	b.WriteByte('\n')
	return b.String()
}

// Extract returns lines start through end of text, 1-based and inclusive.
// The range is clamped to the text.
func Extract(text string, start, end int) string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	start = max(start, 1)
	end = min(end, len(lines))
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

func lineRange(start, end int) string {
	switch {
	case start <= 0:
		return ""
	case end <= start:
		return fmt.Sprintf("%d", start)
	default:
		return fmt.Sprintf("%d-%d", start, end)
	}
}

// fenceFor returns a backtick fence longer than any backtick run in code.
func fenceFor(code, minimum string) string {
	if minimum == "" {
		minimum = "```"
	}
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	if longest < len(minimum) {
		return minimum
	}
	return strings.Repeat("`", longest+1)
}

// fenceLanguage maps editor language ids to common fence info strings.
func fenceLanguage(id string) string {
	switch id {
	case "typescriptreact":
		return "tsx"
	case "javascriptreact":
		return "jsx"
	case "csharp", "c_sharp":
		return "cs"
	default:
		return id
	}
}
