package planner

import (
	"fmt"
	"sort"

	"github.com/depositpack/depositpack/pkg/profile"
)

// planFlat bin-packs files without regard to directory layout. Large
// incompressible files upload as-is, compressible files fill deflate
// chunks, and once the item count exceeds the limit the remaining
// small files are pooled into store archives until it fits.
func (p *Planner) planFlat(workdir string, files []profile.FileSize) (*Plan, error) {
	if len(files) == 0 {
		return p.materialize(workdir, "", nil, nil)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	root := CommonDir(paths)

	var comp, incom, other []profile.FileSize
	for _, f := range files {
		switch p.cfg.Table.Classify(f.Path) {
		case profile.ClassCompressible:
			comp = append(comp, f)
		case profile.ClassIncompressible:
			incom = append(incom, f)
		default:
			other = append(other, f)
		}
	}

	sort.SliceStable(incom, func(i, j int) bool { return incom[i].Bytes > incom[j].Bytes })
	var singles, smallIncom []profile.FileSize
	for _, f := range incom {
		if f.Bytes >= p.cfg.LargeFileBytes {
			singles = append(singles, f)
		} else {
			smallIncom = append(smallIncom, f)
		}
	}

	var drafts []archiveDraft
	for i := 0; i < len(comp); i += p.cfg.ChunkSize {
		end := min(i+p.cfg.ChunkSize, len(comp))
		drafts = append(drafts, archiveDraft{
			stub:    fmt.Sprintf("comp_%03d", 1+i/p.cfg.ChunkSize),
			members: comp[i:end],
			mode:    ModeDeflate,
		})
	}

	pool := append(smallIncom, other...)
	for len(singles)+len(pool)+len(drafts) > p.cfg.MaxItems {
		if len(pool) == 0 {
			return nil, &TooManyItemsError{Items: len(singles) + len(drafts), Limit: p.cfg.MaxItems}
		}
		surplus := len(singles) + len(pool) + len(drafts) - p.cfg.MaxItems
		k := min(surplus+1, p.cfg.StoreChunkCap, len(pool))
		drafts = append(drafts, archiveDraft{
			stub:    fmt.Sprintf("store_%03d", len(drafts)+1),
			members: pool[:k],
			mode:    ModeStore,
		})
		pool = pool[k:]
	}
	singles = append(singles, pool...)

	return p.materialize(workdir, root, drafts, singles)
}
