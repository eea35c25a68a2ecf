package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holon-run/mozhelper/pkg/config"
	"github.com/holon-run/mozhelper/pkg/desktop"
	"github.com/holon-run/mozhelper/pkg/preflight"
)

var doctorNoBus bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the desktop services mozhelper depends on",
	Long: `Check that the session bus, xdg-desktop-portal, the notification
daemon and the xdg-utils tools are available, and that the configuration
directory is writable.

Errors mean most commands will fail; warnings mean some will.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configPath == "" {
			configPath = config.DefaultPath()
		}

		pcfg := preflight.Config{
			Tools:         []string{"xdg-open", "xdg-mime"},
			OptionalTools: []string{"gtk-launch"},
			ConfigDir:     filepath.Dir(configPath),
			Proxy:         true,
		}
		if !doctorNoBus {
			bus := desktop.NewBus()
			defer bus.Close()
			pcfg.Bus = bus
		}

		results := preflight.NewChecker(pcfg).Results(cmd.Context())
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		failed := 0
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Level, r.Name, r.Message)
			if r.Level == preflight.LevelError {
				failed++
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorNoBus, "no-bus", false, "Skip the session bus checks")
	rootCmd.AddCommand(doctorCmd)
}
