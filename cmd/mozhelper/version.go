package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holon-run/mozhelper/pkg/helper"
)

// These variables are set via ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for mozhelper.

This shows the version number, the highest protocol version the helper
answers CHECK for, the git commit SHA, and build date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mozhelper version %s\n", Version)
		fmt.Fprintf(out, "protocol: %d\n", helper.ProtocolVersion)
		if Commit != "" && Commit != "unknown" {
			fmt.Fprintf(out, "commit: %s\n", Commit)
		}
		if BuildDate != "" && BuildDate != "unknown" {
			fmt.Fprintf(out, "built at: %s\n", BuildDate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
