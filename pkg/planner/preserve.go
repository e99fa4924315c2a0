package planner

import (
	"fmt"

	"github.com/depositpack/depositpack/pkg/profile"
)

// planPreserve archives each first-level subdirectory under the files'
// common ancestor as its own deflate zip, with files directly under
// the root collected into root_files.zip. A file set with no
// subdirectories falls back to the flat strategy. When the planner has
// a target archive size, size-bounded sharding takes over instead.
func (p *Planner) planPreserve(workdir string, files []profile.FileSize) (*Plan, error) {
	if len(files) == 0 {
		return p.materialize(workdir, "", nil, nil)
	}

	g := groupByFirstLevel(files)
	if p.cfg.TargetArchiveBytes > 0 {
		return p.planSizeBounded(workdir, g)
	}
	if len(g.subdirs) == 0 {
		return p.planFlat(workdir, files)
	}

	var drafts []archiveDraft
	for _, sub := range g.subdirs {
		drafts = append(drafts, archiveDraft{
			stub:     sub,
			members:  g.bySubdir[sub],
			mode:     ModeDeflate,
			groupKey: sub,
		})
	}
	if len(g.rootFiles) > 0 {
		drafts = append(drafts, archiveDraft{
			stub:    "root_files",
			members: g.rootFiles,
			mode:    ModeDeflate,
		})
	}

	// Extreme subdirectory counts: the item limit wins over fidelity.
	if len(drafts) > p.cfg.MaxItems {
		drafts = rebatch(drafts, p.cfg.MaxItems)
	}

	return p.materialize(workdir, g.root, drafts, nil)
}

// rebatch concatenates consecutive groups' members into batches large
// enough that the archive count lands at or under maxItems.
func rebatch(drafts []archiveDraft, maxItems int) []archiveDraft {
	groups := make([][]profile.FileSize, len(drafts))
	for i, d := range drafts {
		groups[i] = d.members
	}
	batchSize := len(groups)/maxItems + 1
	var out []archiveDraft
	for i := 0; i < len(groups); i += batchSize {
		end := min(i+batchSize, len(groups))
		var members []profile.FileSize
		for _, grp := range groups[i:end] {
			members = append(members, grp...)
		}
		out = append(out, archiveDraft{
			stub:    fmt.Sprintf("batched_%03d", 1+i/batchSize),
			members: members,
			mode:    ModeDeflate,
		})
	}
	return out
}
