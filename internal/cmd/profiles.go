package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depositpack/depositpack/internal/config"
	"github.com/depositpack/depositpack/internal/logging"
)

// NewProfilesCmd creates the profiles subcommand, listing the known
// destination profiles and their limits.
func NewProfilesCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the known destination profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(configFile)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to config file (default: ./depositpack.yaml if present)")

	return cmd
}

func runProfiles(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, name := range cfg.Names() {
		p := cfg.Profiles[name]

		itemCap := "unlimited"
		if p.MaxItemBytes > 0 {
			itemCap = logging.FormatBytes(p.MaxItemBytes)
		}
		layout := "flat"
		if p.Preserve {
			layout = "preserve-dirs"
		}
		sharding := ""
		if p.TargetArchiveBytes > 0 {
			sharding = fmt.Sprintf(", shard target %s", logging.FormatBytes(p.TargetArchiveBytes))
		}

		fmt.Printf("%-12s max %d items, %s per item, %s%s\n", name, p.MaxItems, itemCap, layout, sharding)
	}

	return nil
}
