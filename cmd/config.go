package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/report"
	"github.com/oakwood-commons/gridkit/pkg/logger"
)

// newConfigCmd groups configuration subcommands. configFile and noColor are
// the root's persistent flag values.
func newConfigCmd(configFile *string, noColor *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gridkit configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var defaults bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Default()
			if !defaults {
				cfg, err = config.Load(resolveConfigPath(*configFile))
			}
			if err != nil {
				return err
			}
			cfg, warnings := cfg.Normalize()
			logger.Warn(*logger.FromContext(cmd.Context()), "config", warnings)
			out, err := cfg.Marshal()
			if err != nil {
				return err
			}
			if !*noColor && stdoutIsTerminal() {
				if out, err = report.Highlight(out, "yaml", "monokai"); err != nil {
					return err
				}
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	show.Flags().BoolVar(&defaults, "defaults", false, "ignore the config file and print the built-in defaults")

	themes := &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(resolveConfigPath(*configFile))
			if err != nil {
				return err
			}
			for _, name := range themeNames(cfg) {
				marker := " "
				if strings.EqualFold(name, cfg.UI.Theme) {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}

	cmd.AddCommand(show, themes)
	return cmd
}
