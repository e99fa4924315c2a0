// Package cmd wires the depositpack CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/depositpack/depositpack/internal/version"
)

// NewRootCmd creates and returns the root cobra command for the
// depositpack CLI. It sets up all subcommands and command groups.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "depositpack",
		Short: "depositpack - package datasets to fit repository upload limits",
		Long: `depositpack profiles a dataset, plans a set of zip archives that fits a
deposit destination's item-count and item-size limits, builds the archives
in parallel, and renders a packaging note describing the final layout.

Use subcommands to run the packaging stages:
  - plan: profile a dataset and report the packaging plan
  - pack: plan and build the archives into an output directory
  - push: pack and upload the artifacts to an S3 staging bucket
  - profiles: list the known destination profiles`,
		Version: version.GetFullVersion(),
	}

	groupPackaging := "packaging"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupPackaging,
		Title: "Packaging Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	planCmd := NewPlanCmd()
	packCmd := NewPackCmd()
	pushCmd := NewPushCmd()
	profilesCmd := NewProfilesCmd()

	planCmd.GroupID = groupPackaging
	packCmd.GroupID = groupPackaging
	pushCmd.GroupID = groupPackaging
	profilesCmd.GroupID = groupUtilities

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(profilesCmd)

	return rootCmd
}
