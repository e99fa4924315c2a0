package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depositpack/depositpack/internal/config"
	"github.com/depositpack/depositpack/internal/inventory"
	"github.com/depositpack/depositpack/internal/logging"
	"github.com/depositpack/depositpack/pkg/planner"
	"github.com/depositpack/depositpack/pkg/profile"
)

// packagingOptions holds the flags shared by plan, pack and push.
type packagingOptions struct {
	configFile    string
	profileName   string
	excludes      []string
	includeHidden bool
	maxItems      int
	maxBytes      int64
	targetBytes   int64
	preserve      bool
	chunkSize     int
	quiet         bool
	verbose       bool
}

func addPackagingFlags(cmd *cobra.Command, opts *packagingOptions) {
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to config file (default: ./depositpack.yaml if present)")
	cmd.Flags().StringVar(&opts.profileName, "profile", "zenodo", "Destination profile to plan against")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "Exclude patterns (multiple allowed)")
	cmd.Flags().BoolVar(&opts.includeHidden, "include-hidden", false, "Include hidden files and directories")
	cmd.Flags().IntVar(&opts.maxItems, "max-items", 0, "Override the profile's item-count limit")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 0, "Override the profile's per-item byte limit")
	cmd.Flags().Int64Var(&opts.targetBytes, "target-bytes", 0, "Override the profile's archive size target")
	cmd.Flags().BoolVar(&opts.preserve, "preserve", true, "Keep first-level directories together in archives")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Override the compressible chunk size")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Suppress non-error output")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug output")
}

// runSettings is the resolved state a packaging run starts from:
// config file merged with flag overrides on the chosen profile.
type runSettings struct {
	logger        *logging.Logger
	profile       config.Profile
	excludes      []string
	includeHidden bool
	concurrency   int
	preserve      bool
	plannerCfg    planner.Config
	quiet         bool
}

// resolve merges the config file, the destination profile and the
// command-line overrides. Flags beat file values; lowering the item
// cap recomputes the archive size target unless one was given.
func (o *packagingOptions) resolve(cmd *cobra.Command) (*runSettings, error) {
	fileCfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	prof, err := fileCfg.Lookup(o.profileName)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if o.maxItems > 0 {
		prof.MaxItems = o.maxItems
	}
	if flags.Changed("max-bytes") {
		prof.MaxItemBytes = o.maxBytes
		if prof.TargetArchiveBytes > 0 && !flags.Changed("target-bytes") {
			prof.TargetArchiveBytes = config.TargetFor(o.maxBytes)
		}
	}
	if flags.Changed("target-bytes") {
		prof.TargetArchiveBytes = o.targetBytes
	}

	preserve := prof.Preserve
	if flags.Changed("preserve") {
		preserve = o.preserve
	}

	chunkSize := fileCfg.ChunkSize
	if o.chunkSize > 0 {
		chunkSize = o.chunkSize
	}

	return &runSettings{
		logger:        logging.New(o.quiet, o.verbose),
		profile:       prof,
		excludes:      append(fileCfg.Excludes, o.excludes...),
		includeHidden: o.includeHidden,
		concurrency:   fileCfg.Concurrency,
		preserve:      preserve,
		plannerCfg: planner.Config{
			MaxItems:           prof.MaxItems,
			MaxItemBytes:       prof.MaxItemBytes,
			TargetArchiveBytes: prof.TargetArchiveBytes,
			ChunkSize:          chunkSize,
		},
		quiet: o.quiet,
	}, nil
}

// gather walks the dataset root and profiles its payload files.
func (s *runSettings) gather(root string) ([]profile.FileSize, int64, error) {
	w, err := inventory.NewWalker(root, s.excludes, s.includeHidden)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open dataset: %w", err)
	}

	paths, err := w.Walk()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan dataset: %w", err)
	}

	files, total := profile.Profile(paths)
	s.logger.Info("profiled dataset",
		"files", len(files),
		"size", logging.FormatBytes(total))
	return files, total, nil
}

// artifactBytes sums the on-disk sizes of the final upload set.
// Missing entries count as zero.
func artifactBytes(paths []string) int64 {
	var total int64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// readDescription loads the dataset description used in the packaging
// note. An empty path yields an empty description.
func readDescription(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read description: %w", err)
	}
	return string(data), nil
}
