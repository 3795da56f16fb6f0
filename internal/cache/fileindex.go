package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DocumentEntry holds the stored state of one file.
type DocumentEntry struct {
	Path        string    `json:"path" yaml:"path"`
	ContentHash string    `json:"content_hash" yaml:"content_hash"`
	Revision    int64     `json:"revision" yaml:"revision"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// HashContent returns the hex xxhash64 of content.
func HashContent(content []byte) string {
	return strconv.FormatUint(xxhash.Sum64(content), 16)
}

// Revision returns the revision of path for the given content. Unchanged
// content keeps the stored revision, changed content bumps it by one, and
// a path seen for the first time starts at 1.
func (c *Cache) Revision(path string, content []byte) (int64, error) {
	hash := HashContent(content)

	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var storedHash string
	var revision int64
	err = tx.QueryRow("SELECT content_hash, revision FROM documents WHERE path = ?", path).
		Scan(&storedHash, &revision)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		revision = 1
	case err != nil:
		return 0, fmt.Errorf("get revision %s: %w", path, err)
	case storedHash == hash:
		return revision, nil
	default:
		revision++
	}

	_, err = tx.Exec(`
		INSERT INTO documents (path, content_hash, revision, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			revision = excluded.revision,
			updated_at = excluded.updated_at`,
		path, hash, revision, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("save revision %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return revision, nil
}

// GetEntry retrieves the stored entry for path.
// Returns sql.ErrNoRows if the path has never been recorded.
func (c *Cache) GetEntry(path string) (*DocumentEntry, error) {
	var entry DocumentEntry
	var updatedAt string
	err := c.db.QueryRow(`
		SELECT path, content_hash, revision, updated_at FROM documents WHERE path = ?`,
		path).Scan(&entry.Path, &entry.ContentHash, &entry.Revision, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get entry %s: %w", path, err)
	}
	entry.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &entry, nil
}

// AllEntries retrieves every entry ordered by path.
func (c *Cache) AllEntries() ([]DocumentEntry, error) {
	rows, err := c.db.Query(`
		SELECT path, content_hash, revision, updated_at FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var entries []DocumentEntry
	for rows.Next() {
		var entry DocumentEntry
		var updatedAt string
		if err := rows.Scan(&entry.Path, &entry.ContentHash, &entry.Revision, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Forget removes path from the store. Its next revision starts over at 1.
func (c *Cache) Forget(path string) error {
	if _, err := c.db.Exec("DELETE FROM documents WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget %s: %w", path, err)
	}
	return nil
}

// PruneEntries removes entries for which keep returns false and reports how
// many were removed. Used to drop files that no longer exist.
func (c *Cache) PruneEntries(keep func(path string) bool) (int, error) {
	entries, err := c.AllEntries()
	if err != nil {
		return 0, err
	}

	var pruned int
	for _, entry := range entries {
		if keep(entry.Path) {
			continue
		}
		if err := c.Forget(entry.Path); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
