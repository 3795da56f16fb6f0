// Package cache provides the SQLite-backed document revision store.
// The store lives in .clipctx/cache.db and gives on-disk files a revision
// number that only increases when their content changes, across process
// runs. Tree caching keys on those revisions.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file inside the config directory.
const FileName = "cache.db"

// Cache manages the .clipctx/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in dir.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	// Revision bumps are read-modify-write; one connection serializes them.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent access from several processes
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes every document entry.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM documents"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats summarizes the store.
type Stats struct {
	Documents   int64  `json:"documents" yaml:"documents"`
	MaxRevision int64  `json:"max_revision" yaml:"max_revision"`
	Path        string `json:"path" yaml:"path"`
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	stats := Stats{Path: c.dbPath}
	err := c.db.QueryRow("SELECT COUNT(*), COALESCE(MAX(revision), 0) FROM documents").
		Scan(&stats.Documents, &stats.MaxRevision)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	return &stats, nil
}
