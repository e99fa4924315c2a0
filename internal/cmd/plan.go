package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depositpack/depositpack/internal/logging"
	"github.com/depositpack/depositpack/pkg/planner"
	"github.com/depositpack/depositpack/pkg/profile"
)

// PlanResult represents the planned packaging operations
type PlanResult struct {
	Items   []PlanItem  `json:"items"`
	Summary PlanSummary `json:"summary"`
}

type PlanItem struct {
	Kind    string `json:"kind"` // "archive" or "single"
	Target  string `json:"target"`
	Mode    string `json:"mode,omitempty"`
	Members int    `json:"members,omitempty"`
	Bytes   int64  `json:"bytes"`
	Label   string `json:"label,omitempty"`
}

type PlanSummary struct {
	Files    int   `json:"files"`
	Archives int   `json:"archives"`
	Singles  int   `json:"singles"`
	Bytes    int64 `json:"bytes"`
}

// NewPlanCmd creates the plan subcommand. It profiles a dataset and
// reports the packaging plan without building anything.
func NewPlanCmd() *cobra.Command {
	var (
		opts         packagingOptions
		planJSONFile string
	)

	cmd := &cobra.Command{
		Use:   "plan <dataset-dir>",
		Short: "Profile a dataset and report the packaging plan",
		Long: `Plan profiles the dataset's files, infers the archive layout that fits the
destination profile's limits, and reports it. Nothing is written besides the
optional JSON plan file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return runPlan(s, args[0], planJSONFile)
		},
	}

	addPackagingFlags(cmd, &opts)
	cmd.Flags().StringVar(&planJSONFile, "plan-json-file", "", "Path to output plan as JSON file")

	return cmd
}

func runPlan(s *runSettings, root, planJSONFile string) error {
	files, total, err := s.gather(root)
	if err != nil {
		return err
	}

	pl, err := planner.New(s.plannerCfg).Plan(files, s.preserve)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}
	defer pl.Cleanup()

	result := buildPlanResult(pl, files, total)
	if !s.quiet {
		printPlan(result)
	}

	if planJSONFile != "" {
		if err := writeJSONFile(planJSONFile, result); err != nil {
			return fmt.Errorf("failed to write plan JSON: %w", err)
		}
	}

	s.logger.Info("plan ready",
		"items", len(pl.Items),
		"archives", pl.ArchiveCount(),
		"singles", pl.SingleCount())
	return nil
}

func buildPlanResult(pl *planner.Plan, files []profile.FileSize, total int64) PlanResult {
	sizes := make(map[string]int64, len(files))
	for _, f := range files {
		sizes[f.Path] = f.Bytes
	}
	reported := make(map[string]planner.ReportEntry, len(pl.Report))
	for _, entry := range pl.Report {
		reported[entry.Archive] = entry
	}

	result := PlanResult{
		Items: []PlanItem{},
		Summary: PlanSummary{
			Files:    len(files),
			Archives: pl.ArchiveCount(),
			Singles:  pl.SingleCount(),
			Bytes:    total,
		},
	}

	for _, item := range pl.Items {
		switch item.Kind {
		case planner.KindArchive:
			name := filepath.Base(item.ArchivePath)
			entry := reported[name]
			result.Items = append(result.Items, PlanItem{
				Kind:    "archive",
				Target:  name,
				Mode:    string(item.Mode),
				Members: len(item.Members),
				Bytes:   entry.TotalBytes,
				Label:   pl.DirectoryLabel(item.ArchivePath),
			})
		case planner.KindSingle:
			result.Items = append(result.Items, PlanItem{
				Kind:   "single",
				Target: item.Path,
				Bytes:  sizes[item.Path],
				Label:  pl.DirectoryLabel(item.Path),
			})
		}
	}

	return result
}

func printPlan(result PlanResult) {
	for _, item := range result.Items {
		switch item.Kind {
		case "archive":
			fmt.Printf("archive: %s (%s, %d files, ~%s)\n", item.Target, item.Mode, item.Members, logging.FormatBytes(item.Bytes))
		case "single":
			fmt.Printf("single: %s (%s)\n", item.Target, logging.FormatBytes(item.Bytes))
		}
	}
	fmt.Printf("plan: %d files -> %d item(s), ~%s\n", result.Summary.Files, len(result.Items), logging.FormatBytes(result.Summary.Bytes))
}
