package planner

import (
	"os"

	"github.com/depositpack/depositpack/pkg/profile"
)

type Mode string

const (
	ModeStore   Mode = "store"
	ModeDeflate Mode = "deflate"
)

type ItemKind string

const (
	KindSingle  ItemKind = "single"
	KindArchive ItemKind = "archive"
)

// Item is one planned upload item. Singles carry Path and upload the
// file unmodified; archives carry ArchivePath, Members, and Mode and
// must be built before upload.
type Item struct {
	Kind        ItemKind
	Path        string
	ArchivePath string
	Members     []string
	Mode        Mode
}

// ReportEntry describes one planned archive for the packaging note.
// GroupKey is the first-level subdirectory the archive represents, or
// "" for root-level and cross-directory archives.
type ReportEntry struct {
	Archive        string
	MemberCount    int
	TotalBytes     int64
	ExampleMembers []string
	GroupKey       string
	DatasetRoot    string
}

// Plan is the ordered mapping from source files to upload items,
// produced before any archive is built. Workdir is a scratch directory
// owned by the plan; every archive is created inside it and the caller
// discards it with Cleanup once the artifacts have been moved or
// uploaded.
type Plan struct {
	Items   []Item
	Report  []ReportEntry
	Workdir string

	// DirLabels maps every final artifact path to the first-level
	// directory it came from, or "" for root-level and cross-directory
	// artifacts. Callers use it to place artifacts on the platform.
	DirLabels map[string]string
}

// Cleanup removes the plan's workdir and everything inside it.
func (p *Plan) Cleanup() error {
	return os.RemoveAll(p.Workdir)
}

// DirectoryLabel returns the first-level directory an artifact came
// from, or "" for root-level and cross-directory artifacts.
func (p *Plan) DirectoryLabel(path string) string {
	return p.DirLabels[path]
}

// ArchiveCount returns the number of archive items in the plan.
func (p *Plan) ArchiveCount() int {
	n := 0
	for _, it := range p.Items {
		if it.Kind == KindArchive {
			n++
		}
	}
	return n
}

// SingleCount returns the number of passthrough items in the plan.
func (p *Plan) SingleCount() int {
	return len(p.Items) - p.ArchiveCount()
}

const (
	DefaultMaxItems       = 100
	DefaultChunkSize      = 2000
	DefaultLargeFileBytes = 1_000_000_000
	DefaultStoreChunkCap  = 1000
)

// Config carries the platform limits and packaging knobs. Zero fields
// fall back to the documented defaults; MaxItemBytes zero means the
// platform has no per-item size limit.
type Config struct {
	// MaxItems is the platform's hard cap on items per deposit.
	MaxItems int
	// MaxItemBytes is the platform's hard cap on a single item's size.
	MaxItemBytes int64

	// ChunkSize caps members per deflate archive in the flat strategy
	// so no archive's central directory grows unbounded.
	ChunkSize int
	// LargeFileBytes is the size at or above which an incompressible
	// file is uploaded as-is instead of pooled into archives.
	LargeFileBytes int64
	// StoreChunkCap caps members per store archive created while
	// reducing the item count.
	StoreChunkCap int
	// TargetArchiveBytes enables size-bounded sharding of first-level
	// groups when > 0: estimated archive sizes are kept at or below it.
	TargetArchiveBytes int64

	// Table classifies files by extension; nil means
	// profile.DefaultTable().
	Table profile.Table

	// Workdir is the directory scratch workdirs are created under;
	// empty means the system temp directory.
	Workdir string
}

func (c Config) withDefaults() Config {
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.LargeFileBytes <= 0 {
		c.LargeFileBytes = DefaultLargeFileBytes
	}
	if c.StoreChunkCap <= 0 {
		c.StoreChunkCap = DefaultStoreChunkCap
	}
	if c.Table == nil {
		c.Table = profile.DefaultTable()
	}
	return c
}
