package cache

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheOpenClose(t *testing.T) {
	tmpDir := t.TempDir()

	cache, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, FileName)
	if cache.Path() != expectedPath {
		t.Errorf("path = %q, want %q", cache.Path(), expectedPath)
	}

	if _, err := cache.Revision("a.rs", []byte("fn a() {}")); err != nil {
		t.Fatalf("revision: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	// Revisions survive a reopen
	cache2, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer cache2.Close()

	rev, err := cache2.Revision("a.rs", []byte("fn a() {}"))
	if err != nil {
		t.Fatalf("revision after reopen: %v", err)
	}
	if rev != 1 {
		t.Errorf("revision after reopen = %d, want 1", rev)
	}
}

func TestRevision(t *testing.T) {
	cache := setupTestCache(t)

	steps := []struct {
		content string
		want    int64
	}{
		{"fn a() {}", 1},
		{"fn a() {}", 1},
		{"fn b() {}", 2},
		{"fn b() {}", 2},
		{"fn a() {}", 3},
	}
	for i, step := range steps {
		got, err := cache.Revision("src/lib.rs", []byte(step.content))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != step.want {
			t.Errorf("step %d: revision = %d, want %d", i, got, step.want)
		}
	}

	entry, err := cache.GetEntry("src/lib.rs")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.ContentHash != HashContent([]byte("fn a() {}")) {
		t.Errorf("hash = %q, want hash of latest content", entry.ContentHash)
	}
	if entry.UpdatedAt.IsZero() {
		t.Error("updated_at not recorded")
	}
}

func TestRevisionIndependentPaths(t *testing.T) {
	cache := setupTestCache(t)

	cache.Revision("a.rs", []byte("one"))
	cache.Revision("a.rs", []byte("two"))
	rev, err := cache.Revision("b.rs", []byte("one"))
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if rev != 1 {
		t.Errorf("b.rs revision = %d, want 1", rev)
	}
}

func TestRevisionConcurrent(t *testing.T) {
	cache := setupTestCache(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Revision("shared.rs", []byte("same")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent revision: %v", err)
	}

	entry, err := cache.GetEntry("shared.rs")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.Revision != 1 {
		t.Errorf("revision = %d, want 1 for unchanged content", entry.Revision)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	cache := setupTestCache(t)

	_, err := cache.GetEntry("missing.rs")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestForget(t *testing.T) {
	cache := setupTestCache(t)

	cache.Revision("a.rs", []byte("one"))
	cache.Revision("a.rs", []byte("two"))
	if err := cache.Forget("a.rs"); err != nil {
		t.Fatalf("forget: %v", err)
	}

	rev, _ := cache.Revision("a.rs", []byte("three"))
	if rev != 1 {
		t.Errorf("revision after forget = %d, want 1", rev)
	}
}

func TestPruneEntries(t *testing.T) {
	cache := setupTestCache(t)

	for _, p := range []string{"keep.rs", "gone.rs", "also_gone.rs"} {
		cache.Revision(p, []byte(p))
	}

	pruned, err := cache.PruneEntries(func(path string) bool { return path == "keep.rs" })
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}

	entries, err := cache.AllEntries()
	if err != nil {
		t.Fatalf("all entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "keep.rs" {
		t.Errorf("entries = %+v, want only keep.rs", entries)
	}
}

func TestStatsAndClear(t *testing.T) {
	cache := setupTestCache(t)

	cache.Revision("a.rs", []byte("1"))
	cache.Revision("a.rs", []byte("2"))
	cache.Revision("b.rs", []byte("1"))

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Documents != 2 || stats.MaxRevision != 2 {
		t.Errorf("stats = %+v, want 2 documents, max revision 2", stats)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, err = cache.GetStats()
	if err != nil {
		t.Fatalf("get stats after clear: %v", err)
	}
	if stats.Documents != 0 || stats.MaxRevision != 0 {
		t.Errorf("stats after clear = %+v, want empty", stats)
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent([]byte("fn a() {}"))
	if a != HashContent([]byte("fn a() {}")) {
		t.Error("hash is not deterministic")
	}
	if a == HashContent([]byte("fn b() {}")) {
		t.Error("different content hashed equal")
	}
}
