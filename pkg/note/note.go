// Package note renders the human-readable packaging note appended to
// a deposit description.
package note

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/depositpack/depositpack/pkg/planner"
)

// Render appends a packaging note to a deposit description: payload
// and upload-set totals, per-archive detail lines, and an ASCII tree
// of the first-level layout when the plan preserved directories.
// Final artifact sizes are read best-effort; missing paths count as
// zero. Malformed report entries degrade to omitted lines.
func Render(base string, originalCount int, originalBytes int64, finalPaths []string, report []planner.ReportEntry) string {
	var postTotal int64
	for _, p := range finalPaths {
		if info, err := os.Stat(p); err == nil {
			postTotal += info.Size()
		}
	}

	desc := strings.TrimSpace(base)
	if desc == "" {
		desc = "No description provided."
	}

	summary := []string{
		fmt.Sprintf("Original payload: %d files, ~%s total.", originalCount, gb(originalBytes)),
		fmt.Sprintf("Final upload set: %d item(s), ~%s total.", len(finalPaths), gb(postTotal)),
	}

	var tree []string
	if len(report) > 0 {
		summary = append(summary, fmt.Sprintf("Created %d archive(s) to comply with upload limits.", len(report)))
		for _, r := range report {
			if r.Archive == "" {
				continue
			}
			summary = append(summary, fmt.Sprintf("%s: %d files (~%s)", r.Archive, r.MemberCount, gb(r.TotalBytes)))
			if len(r.ExampleMembers) > 0 {
				summary = append(summary, fmt.Sprintf("   e.g., %s", strings.Join(r.ExampleMembers, ", ")))
			}
		}
		tree = renderTree(report)
	}

	body := summary
	if len(tree) > 0 {
		body = append(body, "", "Dataset structure (zipped at first level):")
		body = append(body, tree...)
	}

	return desc + "<pre>\n\n\n[PACKAGING NOTE]\n\n" + strings.Join(body, "\n") + "\n</pre>"
}

// renderTree draws the first-level layout reconstructed from the
// report's group keys. Plans whose entries carry no group key (flat
// packaging) draw nothing.
func renderTree(report []planner.ReportEntry) []string {
	groups := map[string][]planner.ReportEntry{}
	datasetRoot := ""
	hasNamed := false
	for _, r := range report {
		if r.Archive == "" {
			continue
		}
		groups[r.GroupKey] = append(groups[r.GroupKey], r)
		if r.GroupKey != "" {
			hasNamed = true
		}
		if datasetRoot == "" {
			datasetRoot = r.DatasetRoot
		}
	}
	if !hasNamed {
		return nil
	}

	var keys []string
	for k := range groups {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := groups[""]; ok {
		keys = append(keys, "")
	}

	if datasetRoot == "" {
		datasetRoot = "dataset"
	}
	lines := []string{datasetRoot + "/"}

	for gi, key := range keys {
		branch, childPrefix := "├─ ", "│  "
		if gi == len(keys)-1 {
			branch, childPrefix = "└─ ", "   "
		}
		label := key + "/"
		if key == "" {
			label = "(root files)"
		}

		entries := groups[key]
		if len(entries) == 1 {
			e := entries[0]
			lines = append(lines, fmt.Sprintf("%s%s → %s (%d files, ~%s)", branch, label, e.Archive, e.MemberCount, gb(e.TotalBytes)))
			continue
		}
		lines = append(lines, branch+label)
		for j, e := range entries {
			subBranch := "├─ "
			if j == len(entries)-1 {
				subBranch = "└─ "
			}
			lines = append(lines, fmt.Sprintf("%s%s%s (%d files, ~%s)", childPrefix, subBranch, e.Archive, e.MemberCount, gb(e.TotalBytes)))
		}
	}
	return lines
}

func gb(n int64) string {
	return fmt.Sprintf("%.2f GB", float64(n)/1_000_000_000)
}
