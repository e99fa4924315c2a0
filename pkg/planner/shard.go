package planner

import (
	"fmt"
	"sort"

	"github.com/depositpack/depositpack/pkg/profile"
)

// planSizeBounded is the directory-preserving strategy under a target
// archive size: each first-level group is sharded so its estimated
// archive size stays at or below TargetArchiveBytes. A small root set
// stays as singles; when the shard count exceeds the item limit,
// shards are merged first-fit-decreasing at the cost of group
// fidelity.
func (p *Planner) planSizeBounded(workdir string, g levelGroups) (*Plan, error) {
	var drafts []archiveDraft
	var singles []profile.FileSize

	if len(g.rootFiles) > 0 {
		allFit := true
		for _, f := range g.rootFiles {
			if p.cfg.MaxItemBytes > 0 && f.Bytes > p.cfg.MaxItemBytes {
				allFit = false
				break
			}
		}
		if allFit && len(g.rootFiles) <= 3 {
			singles = append(singles, g.rootFiles...)
		} else {
			for i, shard := range p.shardBySize(g.rootFiles) {
				drafts = append(drafts, archiveDraft{
					stub:    fmt.Sprintf("root_files_%02d", i+1),
					members: shard,
					mode:    ModeDeflate,
				})
			}
		}
	}

	for _, sub := range g.subdirs {
		shards := p.shardBySize(g.bySubdir[sub])
		for i, shard := range shards {
			stub := sub
			if len(shards) > 1 {
				stub = fmt.Sprintf("%s_part%02d", sub, i+1)
			}
			drafts = append(drafts, archiveDraft{
				stub:     stub,
				members:  shard,
				mode:     ModeDeflate,
				groupKey: sub,
			})
		}
	}

	if len(singles)+len(drafts) > p.cfg.MaxItems {
		if merged, ok := p.mergeDraftsFirstFit(drafts); ok {
			drafts = merged
		}
		if len(singles)+len(drafts) > p.cfg.MaxItems {
			return nil, &TooManyItemsError{Items: len(singles) + len(drafts), Limit: p.cfg.MaxItems}
		}
	}

	for _, d := range drafts {
		est := profile.EstimateArchiveBytes(d.members, p.cfg.Table)
		if p.cfg.MaxItemBytes > 0 && est > p.cfg.MaxItemBytes {
			return nil, &ItemTooLargeError{Path: d.stub + ".zip", Bytes: est, Limit: p.cfg.MaxItemBytes}
		}
	}

	return p.materialize(workdir, g.root, drafts, singles)
}

// shardBySize splits members greedily, largest first, so that each
// shard's estimated archive size stays at or below the target. A file
// whose lone estimate exceeds the target still gets its own shard; the
// caller's size check rejects it against the hard limit.
func (p *Planner) shardBySize(members []profile.FileSize) [][]profile.FileSize {
	bySize := append([]profile.FileSize(nil), members...)
	sort.SliceStable(bySize, func(i, j int) bool { return bySize[i].Bytes > bySize[j].Bytes })

	var shards [][]profile.FileSize
	var current []profile.FileSize
	for _, f := range bySize {
		trial := append(current, f)
		if profile.EstimateArchiveBytes(trial, p.cfg.Table) <= p.cfg.TargetArchiveBytes || len(current) == 0 {
			current = trial
		} else {
			shards = append(shards, current)
			current = []profile.FileSize{f}
		}
	}
	if len(current) > 0 {
		shards = append(shards, current)
	}
	return shards
}

// mergeDraftsFirstFit bins whole drafts first-fit-decreasing by
// estimated size, keeping each bin at or below the target. It reports
// false when binning cannot reduce the archive count.
func (p *Planner) mergeDraftsFirstFit(drafts []archiveDraft) ([]archiveDraft, bool) {
	type sized struct {
		est   int64
		draft archiveDraft
	}
	ordered := make([]sized, len(drafts))
	for i, d := range drafts {
		ordered[i] = sized{est: profile.EstimateArchiveBytes(d.members, p.cfg.Table), draft: d}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].est > ordered[j].est })

	var bins [][]sized
	var binEsts []int64
	for _, s := range ordered {
		placed := false
		for i := range bins {
			if binEsts[i]+s.est <= p.cfg.TargetArchiveBytes {
				bins[i] = append(bins[i], s)
				binEsts[i] += s.est
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, []sized{s})
			binEsts = append(binEsts, s.est)
		}
	}
	if len(bins) >= len(drafts) {
		return drafts, false
	}

	merged := make([]archiveDraft, 0, len(bins))
	for i, bin := range bins {
		var members []profile.FileSize
		for _, s := range bin {
			members = append(members, s.draft.members...)
		}
		merged = append(merged, archiveDraft{
			stub:    fmt.Sprintf("merged_%03d", i+1),
			members: members,
			mode:    ModeDeflate,
		})
	}
	return merged, true
}
