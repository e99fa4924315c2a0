package planner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/depositpack/depositpack/pkg/profile"
)

// Planner lays out upload items for a profiled file set under the
// platform limits carried by its Config.
type Planner struct {
	cfg Config
}

func New(cfg Config) *Planner {
	return &Planner{cfg: cfg.withDefaults()}
}

// Plan creates a scratch workdir and plans the upload items for files.
// preserve keeps first-level directories together in their own
// archives; otherwise files are bin-packed flat. The caller owns the
// returned plan and releases its workdir with Cleanup.
func (p *Planner) Plan(files []profile.FileSize, preserve bool) (*Plan, error) {
	workdir, err := os.MkdirTemp(p.cfg.Workdir, "depositpack-")
	if err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	plan, err := p.PlanIn(workdir, files, preserve)
	if err != nil {
		os.RemoveAll(workdir)
		return nil, err
	}
	return plan, nil
}

// PlanIn is the deterministic core of Plan. It touches no files: given
// the same files, config, and workdir it produces the same plan, down
// to archive names and member order.
func (p *Planner) PlanIn(workdir string, files []profile.FileSize, preserve bool) (*Plan, error) {
	if preserve {
		return p.planPreserve(workdir, files)
	}
	return p.planFlat(workdir, files)
}

// archiveDraft is a planned archive before paths and report entries
// are assigned.
type archiveDraft struct {
	stub     string
	members  []profile.FileSize
	mode     Mode
	groupKey string
}

func draftBytes(d archiveDraft) int64 {
	var n int64
	for _, m := range d.members {
		n += m.Bytes
	}
	return n
}

// materialize turns drafts and singles into the final plan: archives
// first in draft order, then singles. It enforces the per-item size
// limit on singles and records a directory label for every artifact.
func (p *Planner) materialize(workdir, root string, drafts []archiveDraft, singles []profile.FileSize) (*Plan, error) {
	plan := &Plan{
		Workdir:   workdir,
		DirLabels: map[string]string{},
	}
	for _, d := range drafts {
		name := d.stub + ".zip"
		archivePath := filepath.Join(workdir, name)
		members := make([]string, len(d.members))
		examples := []string{}
		for i, m := range d.members {
			members[i] = m.Path
			if i < 5 {
				examples = append(examples, filepath.Base(m.Path))
			}
		}
		plan.Items = append(plan.Items, Item{
			Kind:        KindArchive,
			ArchivePath: archivePath,
			Members:     members,
			Mode:        d.mode,
		})
		plan.Report = append(plan.Report, ReportEntry{
			Archive:        name,
			MemberCount:    len(d.members),
			TotalBytes:     draftBytes(d),
			ExampleMembers: examples,
			GroupKey:       d.groupKey,
			DatasetRoot:    rootLabel(root),
		})
		plan.DirLabels[archivePath] = d.groupKey
	}
	for _, f := range singles {
		if p.cfg.MaxItemBytes > 0 && f.Bytes > p.cfg.MaxItemBytes {
			return nil, &ItemTooLargeError{Path: f.Path, Bytes: f.Bytes, Limit: p.cfg.MaxItemBytes}
		}
		plan.Items = append(plan.Items, Item{Kind: KindSingle, Path: f.Path})
		plan.DirLabels[f.Path] = firstLevel(root, f.Path)
	}
	return plan, nil
}
