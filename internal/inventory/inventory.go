// Package inventory collects the payload files of a dataset directory.
package inventory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// junkPatterns are always skipped: OS and tooling metadata that never
// belongs in a deposit payload.
var junkPatterns = []string{
	"Thumbs.db",
	"desktop.ini",
	"__pycache__",
	"*.pyc",
	"*~",
}

// Walker collects regular files under a dataset root with exclude
// pattern support.
type Walker struct {
	root          string
	excludes      []string
	includeHidden bool
}

// NewWalker creates a walker rooted at the given directory. Exclude
// patterns use doublestar syntax and match against paths relative to
// the root; a pattern ending in "/" excludes a whole directory tree.
func NewWalker(root string, excludes []string, includeHidden bool) (*Walker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	// Validate root exists and is a directory
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	return &Walker{
		root:          absRoot,
		excludes:      excludes,
		includeHidden: includeHidden,
	}, nil
}

// Root returns the absolute dataset root.
func (w *Walker) Root() string {
	return w.root
}

// Walk returns the absolute paths of all regular files under the root,
// sorted lexically. Hidden entries are skipped unless the walker was
// created with includeHidden; non-regular files (symlinks, sockets,
// devices) are always skipped.
func (w *Walker) Walk() ([]string, error) {
	var files []string

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != w.root && (w.hidden(d.Name()) || isJunk(d.Name())) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || w.hidden(d.Name()) || isJunk(d.Name()) {
			return nil
		}

		// Get relative path
		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return fmt.Errorf("get relative path: %w", err)
		}

		// Convert to forward slashes for pattern matching
		if w.isExcluded(filepath.ToSlash(relPath)) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

func (w *Walker) hidden(name string) bool {
	return !w.includeHidden && strings.HasPrefix(name, ".")
}

func isJunk(name string) bool {
	for _, pattern := range junkPatterns {
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// isExcluded checks if a path matches any exclude pattern
func (w *Walker) isExcluded(path string) bool {
	for _, pattern := range w.excludes {
		// Handle directory patterns (ending with /)
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			if matched, _ := doublestar.Match(dirPattern, path); matched {
				return true
			}
			// Also check if any parent directory matches
			parts := strings.Split(path, "/")
			for i := 1; i <= len(parts); i++ {
				subPath := strings.Join(parts[:i], "/")
				if matched, _ := doublestar.Match(dirPattern, subPath); matched {
					return true
				}
			}
		} else {
			// Regular file pattern
			if matched, _ := doublestar.Match(pattern, path); matched {
				return true
			}
		}
	}
	return false
}
