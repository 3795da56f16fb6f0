package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snipkit/clipctx/internal/cache"
	"github.com/snipkit/clipctx/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Revision(string, []byte) (int64, error) {
	return 0, errors.New("database is locked")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFile_DetectsLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src", "lib.rs")
	writeFile(t, path, "fn main() {}\n")

	doc, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "rust", doc.LanguageID())
	assert.Equal(t, path, doc.Path())
	assert.Equal(t, doc.Path(), doc.Key())
	text, err := doc.Text()
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", string(text))

	override, err := LoadFile(path, WithLanguageID("plaintext"))
	require.NoError(t, err)
	assert.Equal(t, "plaintext", override.LanguageID())
}

func TestLoadFile_RevisionsFromStore(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	path := filepath.Join(t.TempDir(), "a.py")
	writeFile(t, path, "x = 1\n")

	first, err := LoadFile(path, WithStore(store))
	require.NoError(t, err)
	same, err := LoadFile(path, WithStore(store))
	require.NoError(t, err)
	writeFile(t, path, "x = 2\n")
	changed, err := LoadFile(path, WithStore(store))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Revision())
	assert.Equal(t, int64(1), same.Revision())
	assert.Equal(t, int64(2), changed.Revision())
}

func TestLoadFile_StoreFailureFallsBackToHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.go")
	writeFile(t, path, "package a\n")

	a, err := LoadFile(path, WithStore(brokenStore{}))
	require.NoError(t, err)
	b, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, b.Revision(), a.Revision())
	assert.GreaterOrEqual(t, a.Revision(), int64(0))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.rs"))
	var readErr *parser.FileReadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("mem://buffer", "go", []byte("package x"), 4)
	assert.Equal(t, "mem://buffer", doc.Key())
	assert.Equal(t, int64(4), doc.Revision())
	assert.Equal(t, "go", doc.LanguageID())
}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, 20*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWatcher_Relevant(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[package]\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "debug"), 0o755))

	w := newTestWatcher(t, root)

	assert.True(t, w.relevant(filepath.Join(root, "main.rs")))
	assert.True(t, w.relevant(filepath.Join(root, "src", "lib.RS")))
	assert.False(t, w.relevant(filepath.Join(root, "notes.md")))
	assert.False(t, w.relevant(filepath.Join(root, ".hidden.rs")))
	assert.False(t, w.relevant(filepath.Join(root, "target", "debug", "build.rs")))
	assert.False(t, w.relevant(filepath.Join(root, ".git", "hook.py")))
}

func waitFor(t *testing.T, w *Watcher, path string, want EventType) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if ev.Path == path && ev.Type == want {
				return
			}
		case <-timeout:
			t.Fatalf("no %s event for %s", want, path)
		}
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	require.NoError(t, w.Start(context.Background()))

	path := filepath.Join(root, "lib.rs")
	writeFile(t, path, "fn a() {}\n")

	timeout := time.After(5 * time.Second)
	select {
	case ev := <-w.Events():
		assert.Equal(t, path, ev.Path)
		assert.False(t, ev.Type.Gone())
	case <-timeout:
		t.Fatal("no event for new file")
	}

	require.NoError(t, os.Remove(path))
	waitFor(t, w, path, EventDelete)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	require.NoError(t, w.Start(context.Background()))

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// Give the watcher time to pick up the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "mod.py")
	writeFile(t, path, "x = 1\n")
	require.NoError(t, os.Remove(path))
	waitFor(t, w, path, EventDelete)
}

func TestEventType(t *testing.T) {
	assert.Equal(t, "DELETE", EventDelete.String())
	assert.Equal(t, "UNKNOWN", EventType(42).String())
	assert.True(t, EventRename.Gone())
	assert.False(t, EventModify.Gone())
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

type fixedStore struct{ rev int64 }

func (s fixedStore) Revision(string, []byte) (int64, error) { return s.rev, nil }

func TestRevisions_CountsContentChanges(t *testing.T) {
	revs := NewRevisions(nil, nil)

	steps := []struct {
		content string
		want    int64
	}{
		{"fn a() {}", 1},
		{"fn a() {}", 1},
		{"fn b() {}", 2},
		{"fn a() {}", 3},
		{"fn a() {}", 3},
	}
	for i, step := range steps {
		got, err := revs.Revision("lib.rs", []byte(step.content))
		require.NoError(t, err)
		assert.Equal(t, step.want, got, "step %d", i)
	}

	other, err := revs.Revision("main.rs", []byte("fn a() {}"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	revs.Forget("lib.rs")
	got, err := revs.Revision("lib.rs", []byte("fn c() {}"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestRevisions_PersistentStore(t *testing.T) {
	store, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// Revisions already recorded on disk carry over.
	store.Revision("lib.rs", []byte("one"))
	store.Revision("lib.rs", []byte("two"))

	revs := NewRevisions(store, nil)
	got, err := revs.Revision("lib.rs", []byte("three"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestRevisions_NeverGoBackwards(t *testing.T) {
	for name, store := range map[string]RevisionStore{
		"failing":   brokenStore{},
		"backwards": fixedStore{rev: 1},
	} {
		t.Run(name, func(t *testing.T) {
			revs := NewRevisions(store, nil)
			var last int64
			for _, content := range []string{"a", "b", "c"} {
				got, err := revs.Revision("x.go", []byte(content))
				require.NoError(t, err)
				assert.Greater(t, got, last)
				last = got
			}
		})
	}
}
