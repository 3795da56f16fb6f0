// Package clipboard writes text to the system clipboard through whichever
// clipboard tool the platform provides.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoClipboard is returned when no clipboard tool is available.
var ErrNoClipboard = errors.New("no clipboard tool found")

// Writer receives the rendered snippet.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// Command is a clipboard tool invocation that reads text on stdin.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ParseCommand splits a configured command line on whitespace.
func ParseCommand(line string) (Command, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, false
	}
	return Command{Name: parts[0], Args: parts[1:]}, true
}

// Candidates returns the clipboard tools to try on goos, in order.
func Candidates(goos string) []Command {
	switch goos {
	case "darwin":
		return []Command{{Name: "pbcopy"}}
	case "windows":
		return []Command{{Name: "clip.exe"}}
	default:
		return []Command{
			{Name: "wl-copy"},
			{Name: "xclip", Args: []string{"-selection", "clipboard"}},
			{Name: "xsel", Args: []string{"--clipboard", "--input"}},
			// WSL
			{Name: "clip.exe"},
		}
	}
}

// CommandWriter pipes text into the first available clipboard tool.
type CommandWriter struct {
	commands []Command
	lookPath func(string) (string, error)
}

// NewCommandWriter returns a writer that uses override when set, otherwise
// the platform's candidates.
func NewCommandWriter(override string) *CommandWriter {
	w := &CommandWriter{lookPath: exec.LookPath}
	if cmd, ok := ParseCommand(override); ok {
		w.commands = []Command{cmd}
	} else {
		w.commands = Candidates(runtime.GOOS)
	}
	return w
}

// Available returns the command that would be used, if any.
func (w *CommandWriter) Available() (Command, bool) {
	for _, cmd := range w.commands {
		if _, err := w.lookPath(cmd.Name); err == nil {
			return cmd, true
		}
	}
	return Command{}, false
}

// WriteText sends text to the clipboard.
func (w *CommandWriter) WriteText(ctx context.Context, text string) error {
	cmd, ok := w.Available()
	if !ok {
		return ErrNoClipboard
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", cmd, err, msg)
		}
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// StreamWriter writes text to a stream, typically stdout.
type StreamWriter struct {
	W io.Writer
}

// WriteText writes text unchanged.
func (s StreamWriter) WriteText(_ context.Context, text string) error {
	_, err := io.WriteString(s.W, text)
	return err
}

// FallbackWriter tries Primary and writes to Secondary when it fails, so a
// copy always produces output somewhere.
type FallbackWriter struct {
	Primary   Writer
	Secondary Writer
	// OnFallback is called with the primary error before falling back.
	OnFallback func(error)
}

func (f FallbackWriter) WriteText(ctx context.Context, text string) error {
	err := f.Primary.WriteText(ctx, text)
	if err == nil {
		return nil
	}
	if f.OnFallback != nil {
		f.OnFallback(err)
	}
	return f.Secondary.WriteText(ctx, text)
}
