// Package exclude detects dependency and build directories that the
// workspace watcher should not descend into.
package exclude

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// marker ties a project file to the directory it implies.
type marker struct {
	file string
	dir  string
	// probe must exist inside dir for the match to count; empty means the
	// directory's existence is enough.
	probe  string
	reason string
}

var markers = []marker{
	{file: "Cargo.toml", dir: "target", reason: "Rust build artifacts (Cargo.toml detected)"},
	{file: "package.json", dir: "node_modules", reason: "Node.js dependencies (package.json detected)"},
	{file: "go.mod", dir: "vendor", probe: "modules.txt", reason: "Go vendored dependencies (vendor/modules.txt detected)"},
	{file: "composer.json", dir: "vendor", probe: "autoload.php", reason: "PHP Composer dependencies (vendor/autoload.php detected)"},
}

// alwaysSkip are directory names never worth walking, whether or not a
// marker file claims them.
var alwaysSkip = map[string]bool{
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	".git":         true,
}

// Set is the result of detection: directories relative to the root and
// why each was excluded.
type Set struct {
	Directories []string
	Reasons     map[string]string
}

// Detect walks root and collects excluded directories. Only file-existence
// checks are used, so a directory is excluded only when a marker proves
// what it is. Nested projects are found at any depth.
func Detect(root string) *Set {
	set := &Set{Reasons: make(map[string]string)}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if set.Skip(rel) || alwaysSkip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		dir := filepath.Dir(rel)
		if d.Name() == "pyvenv.cfg" {
			set.add(dir, "Python virtual environment (pyvenv.cfg detected)")
			return nil
		}
		for _, m := range markers {
			if d.Name() != m.file {
				continue
			}
			candidate := filepath.Join(dir, m.dir)
			abs := filepath.Join(root, candidate)
			if m.probe != "" {
				abs = filepath.Join(abs, m.probe)
			}
			if exists(abs, m.probe == "") {
				set.add(candidate, m.reason)
			}
		}
		return nil
	})

	return set
}

// Skip reports whether rel is an excluded directory or lies inside one.
func (s *Set) Skip(rel string) bool {
	if s == nil {
		return false
	}
	rel = filepath.Clean(rel)
	for _, dir := range s.Directories {
		if rel == dir || strings.HasPrefix(rel, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (s *Set) add(dir, reason string) {
	if _, ok := s.Reasons[dir]; ok {
		return
	}
	s.Directories = append(s.Directories, dir)
	s.Reasons[dir] = reason
}

func exists(path string, wantDir bool) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir() == wantDir
}
