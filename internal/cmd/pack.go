package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/depositpack/depositpack/pkg/executor"
	"github.com/depositpack/depositpack/pkg/note"
	"github.com/depositpack/depositpack/pkg/planner"
)

// PackResult represents the realized upload set
type PackResult struct {
	Artifacts []PackArtifact `json:"artifacts"`
	Summary   PackSummary    `json:"summary"`
}

type PackArtifact struct {
	Path  string `json:"path"`
	Label string `json:"label,omitempty"`
	Bytes int64  `json:"bytes"`
}

type PackSummary struct {
	Files    int   `json:"files"`
	Items    int   `json:"items"`
	Archives int   `json:"archives"`
	Bytes    int64 `json:"bytes"`
}

// NewPackCmd creates the pack subcommand. It plans the dataset and
// builds the archives into an output directory.
func NewPackCmd() *cobra.Command {
	var (
		opts            packagingOptions
		outDir          string
		concurrency     int
		doubleZip       bool
		noteFile        string
		descriptionFile string
		resultJSONFile  string
	)

	cmd := &cobra.Command{
		Use:   "pack <dataset-dir>",
		Short: "Plan a dataset and build its archives",
		Long: `Pack profiles the dataset, plans the archive layout against the destination
profile's limits, and builds the archives into the output directory. Files
planned as direct uploads are left in place and listed in the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if concurrency > 0 {
				s.concurrency = concurrency
			}
			return runPack(cmd, s, args[0], packOutputs{
				outDir:          outDir,
				doubleZip:       doubleZip,
				noteFile:        noteFile,
				descriptionFile: descriptionFile,
				resultJSONFile:  resultJSONFile,
			})
		},
	}

	addPackagingFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory for built archives (required)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of concurrent archive builds")
	cmd.Flags().BoolVar(&doubleZip, "double-zip", false, "Wrap each archive in an outer zip to survive platform-side unpacking")
	cmd.Flags().StringVar(&noteFile, "note-file", "", "Path to write the packaging note")
	cmd.Flags().StringVar(&descriptionFile, "description-file", "", "Path to a dataset description included in the note")
	cmd.Flags().StringVar(&resultJSONFile, "result-json-file", "", "Path to output result as JSON file")
	cmd.MarkFlagRequired("out")

	return cmd
}

type packOutputs struct {
	outDir          string
	doubleZip       bool
	noteFile        string
	descriptionFile string
	resultJSONFile  string
}

func runPack(cmd *cobra.Command, s *runSettings, root string, out packOutputs) error {
	start := time.Now()

	files, total, err := s.gather(root)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pl, err := planner.New(s.plannerCfg).PlanIn(out.outDir, files, s.preserve)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	exec := executor.New(executor.Config{
		Concurrency: s.concurrency,
		DoubleZip:   out.doubleZip,
	})
	paths, err := exec.Execute(cmd.Context(), pl)
	if err != nil {
		return fmt.Errorf("failed to build archives: %w", err)
	}
	for _, p := range paths {
		s.logger.Debug("realized", "item", p)
	}

	result := buildPackResult(pl, paths, len(files))

	if out.resultJSONFile != "" {
		if err := writeJSONFile(out.resultJSONFile, result); err != nil {
			return fmt.Errorf("failed to write result JSON: %w", err)
		}
	}

	if out.noteFile != "" {
		description, err := readDescription(out.descriptionFile)
		if err != nil {
			return err
		}
		text := note.Render(description, len(files), total, paths, pl.Report)
		if err := os.WriteFile(out.noteFile, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write packaging note: %w", err)
		}
	}

	s.logger.PrintSummary(len(files), total, len(paths), pl.ArchiveCount(), result.Summary.Bytes, time.Since(start))
	return nil
}

func buildPackResult(pl *planner.Plan, paths []string, fileCount int) PackResult {
	result := PackResult{
		Artifacts: []PackArtifact{},
		Summary: PackSummary{
			Files:    fileCount,
			Items:    len(paths),
			Archives: pl.ArchiveCount(),
		},
	}

	for _, p := range paths {
		var bytes int64
		if info, err := os.Stat(p); err == nil {
			bytes = info.Size()
		}
		result.Artifacts = append(result.Artifacts, PackArtifact{
			Path:  p,
			Label: pl.DirectoryLabel(p),
			Bytes: bytes,
		})
		result.Summary.Bytes += bytes
	}

	return result
}
