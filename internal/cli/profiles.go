package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/darkit/refurbish"
)

func (a *app) newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List or show vendor profiles",
		Long: `Vendor profiles hold the vendor-specific tables the rules read:
refurbished serial prefixes, firmware markers, first-party storage models and
display vendors, and battery rule thresholds. Custom profiles can be added in
the config file under "profiles".`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered profiles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			platformDefault := a.platform.Profile()
			for _, name := range refurbish.ProfileNames() {
				marker := " "
				if name == platformDefault {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
		},
	}

	show := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show a profile as YAML, with battery overrides from the config applied",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if len(args) == 1 {
				cfg.Profile = args[0]
			}
			p, err := cfg.ResolveProfile(a.platform.Profile())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("encode profile: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
