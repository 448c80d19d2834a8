package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javanhut/gitlet/internal/repository"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set repository configuration",
	Long: `Get and set the options stored in .gitlet/config.toml.

core.storage and core.compression are chosen by init and cannot be changed.

Examples:
  gitlet config color.ui true
  gitlet config core.default_branch
  gitlet config --list`,
	RunE: runConfig,
}

var configList bool

var configKeys = []string{"core.default_branch", "core.storage", "core.compression", "color.ui"}

func init() {
	configCmd.Flags().BoolVar(&configList, "list", false, "List all configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	switch {
	case configList && len(args) == 0:
	case !configList && (len(args) == 1 || len(args) == 2):
	default:
		return errIncorrectOperands
	}

	return withRepo(cmd, func(r *repository.Repository) error {
		out := cmd.OutOrStdout()
		p := palette(cmd, r)

		if configList {
			for _, key := range configKeys {
				value, err := r.ConfigValue(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s = %s\n", p.SectionHeader(key), value)
			}
			return nil
		}

		if len(args) == 1 {
			value, err := r.ConfigValue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		}

		return r.SetConfigValue(args[0], args[1])
	})
}
