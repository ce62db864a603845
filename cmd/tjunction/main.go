// Command tjunction replays junction scenarios and renders the rule table.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anggasct/tjunction/pkg/config"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "tjunction",
		Short:         "Right-of-way arbitration for a three-way T junction",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a junction config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "override log format (text, json)")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newRulesCmd(),
		newDotCmd(),
	)
	return rootCmd
}

// load resolves the configuration and logger for a command
func (o *globalOptions) load(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, cfg.Log.NewLogger(cmd.ErrOrStderr()), nil
}
