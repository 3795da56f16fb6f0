// Package treecache keeps one parsed syntax tree per document, keyed by
// document identity and validated by revision.
//
// A stored tree is valid only while its revision equals the document's
// current revision. Concurrent requests for the same key and revision share
// a single parse, and a parse of an older revision never replaces a newer
// stored tree.
package treecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/snipkit/clipctx/internal/parser"
)

// DefaultMaxTrees bounds the number of cached trees when no size is given.
const DefaultMaxTrees = 256

// ErrNoTree is returned when a parse function reports success without a tree.
var ErrNoTree = errors.New("parser returned no tree")

// TextProvider returns the document's current text.
type TextProvider func() ([]byte, error)

// ParseFunc parses source into a tree.
type ParseFunc func(ctx context.Context, source []byte) (*parser.ParseResult, error)

// CachedTree is a parsed tree tagged with the revision it was parsed from.
// Callers must treat Result as read-only.
type CachedTree struct {
	Key      string
	Revision int64
	Result   *parser.ParseResult
}

// Stats reports cache activity since creation.
type Stats struct {
	Entries  int    `json:"entries" yaml:"entries"`
	Hits     uint64 `json:"hits" yaml:"hits"`
	Misses   uint64 `json:"misses" yaml:"misses"`
	Parses   uint64 `json:"parses" yaml:"parses"`
	Failures uint64 `json:"failures" yaml:"failures"`
}

// Cache holds parsed trees. It is safe for concurrent use.
type Cache struct {
	// mu serializes the compare-and-store on entries.
	mu      sync.Mutex
	entries *lru.Cache[string, *CachedTree]
	flights singleflight.Group

	hits     atomic.Uint64
	misses   atomic.Uint64
	parses   atomic.Uint64
	failures atomic.Uint64
}

// New creates a cache holding at most maxTrees trees. Values <= 0 use
// DefaultMaxTrees. Evicted trees are left to the garbage collector since a
// request may still be walking them.
func New(maxTrees int) (*Cache, error) {
	if maxTrees <= 0 {
		maxTrees = DefaultMaxTrees
	}
	entries, err := lru.New[string, *CachedTree](maxTrees)
	if err != nil {
		return nil, fmt.Errorf("create tree cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// GetTree returns the tree for key at revision. A stored tree with the same
// revision is returned without reading the text or parsing. Otherwise the
// current text is parsed and stored, replacing any older entry for key.
// Failures are not cached.
func (c *Cache) GetTree(ctx context.Context, key string, revision int64, text TextProvider, parse ParseFunc) (*CachedTree, error) {
	if entry, ok := c.lookup(key, revision); ok {
		c.hits.Add(1)
		return entry, nil
	}
	c.misses.Add(1)

	flight := key + "@" + strconv.FormatInt(revision, 10)
	v, err, _ := c.flights.Do(flight, func() (any, error) {
		// A flight for this revision may have finished between the lookup
		// above and joining this one.
		if entry, ok := c.lookup(key, revision); ok {
			return entry, nil
		}

		src, err := text()
		if err != nil {
			c.failures.Add(1)
			return nil, fmt.Errorf("read %s: %w", key, err)
		}

		// The parse is shared by every caller joining this flight, so one
		// caller's cancellation must not fail the others.
		c.parses.Add(1)
		result, err := parse(context.WithoutCancel(ctx), src)
		if err == nil && result == nil {
			err = ErrNoTree
		}
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}

		entry := &CachedTree{Key: key, Revision: revision, Result: result}
		c.store(entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CachedTree), nil
}

func (c *Cache) lookup(key string, revision int64) (*CachedTree, bool) {
	entry, ok := c.entries.Get(key)
	if !ok || entry.Revision != revision {
		return nil, false
	}
	return entry, true
}

// store adds entry unless a newer revision is already cached for its key.
func (c *Cache) store(entry *CachedTree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.entries.Peek(entry.Key); ok && current.Revision > entry.Revision {
		return
	}
	c.entries.Add(entry.Key, entry)
}

// Peek returns the stored entry for key without touching recency or stats.
func (c *Cache) Peek(key string) (*CachedTree, bool) {
	return c.entries.Peek(key)
}

// Evict drops the tree for key, if any. Used when a document is closed or
// its file removed.
func (c *Cache) Evict(key string) bool {
	return c.entries.Remove(key)
}

// Purge drops every tree.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached trees.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:  c.entries.Len(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Parses:   c.parses.Load(),
		Failures: c.failures.Load(),
	}
}
