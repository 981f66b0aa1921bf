package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/rtpipe/internal/infrastructure/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Dev        bool
}

// NewRootCommand creates the root command. Without a subcommand it runs the
// pipeline.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rtpipe",
		Short: "Supervised single-slot producer/consumer pipeline",
		Long: `rtpipe runs a producer, a consumer and a supervisor over a one-slot
channel, reporting every handoff, drop, timeout and health window as a
categorized log line. Settings come from environment variables, optionally
seeded from a YAML or TOML file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigFile == "" {
				return nil
			}
			if err := os.Setenv(config.FileEnv, opts.ConfigFile); err != nil {
				return WrapExitError(ExitConfig, "failed to set config file", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "",
		fmt.Sprintf("overlay file (.yaml, .yml or .toml), same as %s", config.FileEnv))
	cmd.PersistentFlags().BoolVar(&opts.Dev, "dev", false, "development logging (console, debug level)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// loadConfig loads the effective configuration, applying command-line
// overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitConfig, "failed to load configuration", err)
	}
	if opts.Dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
