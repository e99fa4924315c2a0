package planner

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/depositpack/depositpack/pkg/profile"
)

// CommonDir returns the deepest directory containing every path. A
// single path yields its parent directory; an empty slice yields "".
func CommonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	common := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !underDir(common, p) {
			parent := filepath.Dir(common)
			if parent == common {
				return common
			}
			common = parent
		}
	}
	return common
}

func underDir(dir, path string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

// levelGroups is the file set split by first-level subdirectory under
// the common ancestor. Files directly under root land in rootFiles.
type levelGroups struct {
	root      string
	rootFiles []profile.FileSize
	subdirs   []string
	bySubdir  map[string][]profile.FileSize
}

func groupByFirstLevel(files []profile.FileSize) levelGroups {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	g := levelGroups{
		root:     CommonDir(paths),
		bySubdir: map[string][]profile.FileSize{},
	}
	for _, f := range files {
		sub := firstLevel(g.root, f.Path)
		if sub == "" {
			g.rootFiles = append(g.rootFiles, f)
			continue
		}
		if _, ok := g.bySubdir[sub]; !ok {
			g.subdirs = append(g.subdirs, sub)
		}
		g.bySubdir[sub] = append(g.bySubdir[sub], f)
	}
	sort.Strings(g.subdirs)
	return g
}

// firstLevel returns the first path component of path relative to
// root, or "" when the file sits directly under root.
func firstLevel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) == 1 {
		return ""
	}
	return parts[0]
}

// rootLabel names the dataset root for report entries, falling back
// when the common ancestor is the filesystem root.
func rootLabel(root string) string {
	base := filepath.Base(root)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "dataset"
	}
	return base
}
