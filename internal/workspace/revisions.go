package workspace

import (
	"log/slog"
	"sync"
)

// Revisions numbers file contents per path in process. A path's revision
// starts at 1 and goes up by at least one each time its content hash
// changes, so revisions stay ordered even without a persistent store.
//
// When a persistent store is given its revisions are used as long as they
// move forward; a store failure or a store number that would go backwards
// falls back to the in-process counter.
type Revisions struct {
	persistent RevisionStore
	logger     *slog.Logger

	mu    sync.Mutex
	paths map[string]revisionState
}

type revisionState struct {
	hash     uint64
	revision int64
}

// NewRevisions returns an in-process revision counter. persistent and
// logger may be nil.
func NewRevisions(persistent RevisionStore, logger *slog.Logger) *Revisions {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Revisions{persistent: persistent, logger: logger, paths: make(map[string]revisionState)}
}

// Revision returns the revision of content at path.
func (r *Revisions) Revision(path string, content []byte) (int64, error) {
	hash := hashContent(content)

	r.mu.Lock()
	defer r.mu.Unlock()

	last, seen := r.paths[path]
	if seen && last.hash == hash {
		return last.revision, nil
	}

	next := last.revision + 1
	if r.persistent != nil {
		rev, err := r.persistent.Revision(path, content)
		switch {
		case err != nil:
			r.logger.Warn("revision store unavailable, counting in process", "path", path, "error", err)
		case rev >= next:
			next = rev
		}
	}
	r.paths[path] = revisionState{hash: hash, revision: next}
	return next, nil
}

// Forget drops the counter for path. The next revision for it starts over.
func (r *Revisions) Forget(path string) {
	r.mu.Lock()
	delete(r.paths, path)
	r.mu.Unlock()
}
