package workspace

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/snipkit/clipctx/internal/exclude"
	"github.com/snipkit/clipctx/internal/parser"
)

// DefaultDebounce is how long the watcher waits for a burst of events on
// the same file to settle.
const DefaultDebounce = 200 * time.Millisecond

// EventType classifies a file change.
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "CREATE"
	case EventModify:
		return "MODIFY"
	case EventDelete:
		return "DELETE"
	case EventRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Gone reports whether the file no longer exists at its path.
func (e EventType) Gone() bool {
	return e == EventDelete || e == EventRename
}

// FileEvent is a debounced change to a source file. Path is absolute.
type FileEvent struct {
	Type EventType
	Path string
}

// Watcher reports changes to source files under a root directory.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	excluded *exclude.Set
	exts     map[string]bool
	debounce time.Duration
	logger   *slog.Logger

	events    chan FileEvent
	done      chan struct{}
	closeOnce sync.Once

	pendingMu sync.Mutex
	pending   map[string]FileEvent
	timer     *time.Timer
}

// NewWatcher creates a watcher for root. Dependency directories detected
// under root are not watched.
func NewWatcher(root string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	exts := make(map[string]bool)
	for _, ext := range parser.SupportedExtensions() {
		exts[ext] = true
	}

	return &Watcher{
		root:     abs,
		watcher:  fsw,
		excluded: exclude.Detect(abs),
		exts:     exts,
		debounce: debounce,
		logger:   logger,
		events:   make(chan FileEvent, 100),
		done:     make(chan struct{}),
		pending:  make(map[string]FileEvent),
	}, nil
}

// Start watches root and every directory below it, then processes events
// until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)
	return nil
}

// Events returns the debounced event stream.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.pendingMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.pendingMu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) skipDir(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	return w.excluded.Skip(rel)
}

// relevant reports whether path is a source file the engine can parse and
// that lies outside hidden and excluded directories.
func (w *Watcher) relevant(path string) bool {
	if !w.exts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	dir := filepath.Dir(path)
	return dir == w.root || !w.skipDir(dir)
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) && isDir(event.Name) {
		if !w.skipDir(event.Name) {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to add new directory", "path", event.Name, "error", err)
			}
		}
		return
	}
	if !w.relevant(event.Name) {
		return
	}

	var evType EventType
	switch {
	case event.Has(fsnotify.Remove):
		evType = EventDelete
	case event.Has(fsnotify.Rename):
		evType = EventRename
	case event.Has(fsnotify.Create):
		evType = EventCreate
	case event.Has(fsnotify.Write):
		evType = EventModify
	default:
		return
	}

	w.debounceEvent(FileEvent{Type: evType, Path: event.Name})
}

func (w *Watcher) debounceEvent(event FileEvent) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	// A delete followed quickly by a recreate is still reported as a delete
	// so cached state for the old file is dropped.
	if existing, ok := w.pending[event.Path]; !ok || !existing.Type.Gone() || event.Type.Gone() {
		w.pending[event.Path] = event
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	events := make([]FileEvent, 0, len(w.pending))
	for _, event := range w.pending {
		events = append(events, event)
	}
	w.pending = make(map[string]FileEvent)
	w.pendingMu.Unlock()

	for _, event := range events {
		select {
		case <-w.done:
			return
		case w.events <- event:
		default:
			w.logger.Warn("event channel full, dropping event", "path", event.Path)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
