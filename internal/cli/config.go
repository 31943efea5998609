package cli

import (
	"fmt"
	"os"

	"github.com/pdxmph/tasks/internal/config"
	"github.com/pdxmph/tasks/internal/format"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(a.configPath)
			if path == "" {
				var err error
				if path, err = config.Path(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			} else if err != nil && !isNotExist(err) {
				return fmt.Errorf("checking config file: %w", err)
			}

			if err := config.Default().SaveTo(path); err != nil {
				return err
			}

			f := format.New(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), f.Success("Wrote config to "+path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
