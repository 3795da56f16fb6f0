// Package git provides best-effort repository metadata for snippet headers.
//
// Every accessor returns "" on any failure: not a repository, no commits,
// no remote, detached HEAD. Metadata is optional decoration and must never
// block a copy.
package git

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ShortSHALength is the number of hex digits in a short commit hash.
const ShortSHALength = 7

// DefaultRemote is the remote used for URLs and permalinks.
const DefaultRemote = "origin"

// Metadata is the git portion of a snippet header.
type Metadata struct {
	Branch     string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit     string `json:"commit,omitempty" yaml:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty" yaml:"commit_time,omitempty"`
	RemoteURL  string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	Permalink  string `json:"permalink,omitempty" yaml:"permalink,omitempty"`
	RelPath    string `json:"rel_path,omitempty" yaml:"rel_path,omitempty"`
}

// Repo is an opened repository. A nil *Repo is valid and reports nothing.
type Repo struct {
	root string
	repo *gogit.Repository
}

// Open finds the repository containing path, walking up to the nearest
// .git. It returns nil when path is not inside a repository.
func Open(path string) *Repo {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil
	}
	return &Repo{root: wt.Filesystem.Root(), repo: repo}
}

// Root returns the worktree root.
func (r *Repo) Root() string {
	if r == nil {
		return ""
	}
	return r.root
}

// Branch returns the checked-out branch name.
func (r *Repo) Branch() string {
	head, err := r.head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// ShortSHA returns the abbreviated HEAD commit hash.
func (r *Repo) ShortSHA() string {
	head, err := r.head()
	if err != nil {
		return ""
	}
	sha := head.Hash().String()
	if len(sha) < ShortSHALength {
		return sha
	}
	return sha[:ShortSHALength]
}

// LastCommitTime returns the RFC 3339 time of the last commit that touched
// path, or of HEAD when no commit touches it.
func (r *Repo) LastCommitTime(path string) string {
	head, err := r.head()
	if err != nil {
		return ""
	}

	if rel := r.RelPath(path); rel != "" {
		if c, err := r.lastCommitFor(head.Hash(), rel); err == nil {
			return formatTime(c.Committer.When)
		}
	}

	c, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return ""
	}
	return formatTime(c.Committer.When)
}

func (r *Repo) lastCommitFor(from plumbing.Hash, rel string) (*object.Commit, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{From: from, FileName: &rel})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	c, err := iter.Next()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("no commit touches " + rel)
	}
	return c, nil
}

// RemoteURL returns the origin remote as an https base URL.
func (r *Repo) RemoteURL() string {
	if r == nil {
		return ""
	}
	remote, err := r.repo.Remote(DefaultRemote)
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return NormalizeRemote(urls[0])
}

// RelPath returns path relative to the worktree root with forward slashes,
// or "" when path lies outside it.
func (r *Repo) RelPath(path string) string {
	if r == nil || path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	root := r.root
	// Temp dirs on macOS resolve through /private; compare real paths.
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Permalink returns a link to path at the current commit. The line anchor
// is added only when start and end are both positive.
func (r *Repo) Permalink(path string, start, end int) string {
	return BuildPermalink(r.RemoteURL(), r.ShortSHA(), r.RelPath(path), start, end)
}

// Metadata collects every field for path and the given line range.
func (r *Repo) Metadata(path string, start, end int) Metadata {
	return Metadata{
		Branch:     r.Branch(),
		Commit:     r.ShortSHA(),
		CommitTime: r.LastCommitTime(path),
		RemoteURL:  r.RemoteURL(),
		Permalink:  r.Permalink(path, start, end),
		RelPath:    r.RelPath(path),
	}
}

func (r *Repo) head() (*plumbing.Reference, error) {
	if r == nil {
		return nil, errors.New("not a git repository")
	}
	return r.repo.Head()
}

// BuildPermalink assembles <base>/blob/<sha>/<rel>#L<start>-L<end>. Any
// empty component yields "".
func BuildPermalink(base, sha, rel string, start, end int) string {
	if base == "" || sha == "" || rel == "" {
		return ""
	}
	link := base + "/blob/" + sha + "/" + rel
	if start > 0 && end > 0 {
		link += fmt.Sprintf("#L%d-L%d", start, end)
	}
	return link
}

// NormalizeRemote converts a remote URL to an https base without
// credentials or the .git suffix. scp-style remotes (git@host:owner/repo)
// are supported. Unrecognized input yields "".
func NormalizeRemote(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var host, repoPath string
	if !strings.Contains(raw, "://") {
		// scp-style: [user@]host:path
		colon := strings.Index(raw, ":")
		if colon <= 0 {
			return ""
		}
		host = raw[:colon]
		if at := strings.LastIndex(host, "@"); at >= 0 {
			host = host[at+1:]
		}
		repoPath = raw[colon+1:]
	} else {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return ""
		}
		switch u.Scheme {
		case "https", "http", "ssh", "git", "git+ssh":
		default:
			return ""
		}
		host = u.Hostname()
		if u.Scheme != "ssh" && u.Scheme != "git+ssh" && u.Port() != "" {
			host = u.Host
		}
		repoPath = u.Path
	}

	repoPath = strings.Trim(repoPath, "/")
	repoPath = strings.TrimSuffix(repoPath, ".git")
	if host == "" || repoPath == "" {
		return ""
	}
	return "https://" + host + "/" + repoPath
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
