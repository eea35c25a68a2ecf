package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holon-run/mozhelper/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the mozhelper configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configPath == "" {
			configPath = config.DefaultPath()
		}
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration file content as YAML, followed by the
application preferences that result from merging it with the defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configPath == "" {
			configPath = config.DefaultPath()
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n%s", configPath, data)

		opts := cfg.Options()
		fmt.Fprintln(out, "# effective preferences")
		fmt.Fprintf(out, "feed_reader: %s\n", opts.FeedReader)
		fmt.Fprintf(out, "news_client: %s\n", opts.NewsClient)
		fmt.Fprintf(out, "mail_client: %s\n", opts.MailClient)
		fmt.Fprintf(out, "mail_in_terminal: %t\n", opts.MailInTerminal)
		fmt.Fprintf(out, "terminal: %s\n", opts.Terminal)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
