package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return WrapExitError(ExitConfig, "invalid configuration", err)
			}

			out, err := cfg.Marshal()
			if err != nil {
				return WrapExitError(ExitFailure, "failed to render configuration", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
