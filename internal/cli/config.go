package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/darkit/refurbish/internal/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage refurbcheck configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if used := a.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", used)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
			}
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created default configuration: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "where to write the file (default: $HOME/.refurbcheck/config.yaml)")

	cmd.AddCommand(show, initCmd)
	return cmd
}
