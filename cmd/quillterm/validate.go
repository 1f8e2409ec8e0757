package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillterm/quillterm/config"
)

// newValidateConfigCmd loads and validates a configuration file without
// starting an interactive session, printing every aggregated violation
// (config.ConfigError collects them all rather than stopping at the first).
func newValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config [path]",
		Short: "Validate a quillterm configuration file without starting a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.Load(path)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return err
			}
			if _, _, err := cfg.KeybindResolver(); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
			return nil
		},
	}
}
