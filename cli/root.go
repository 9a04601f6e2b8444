// Package cli wires the cobra command tree for pai-note-exporter.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Wicz-Cloud/pai-note-exporter/config"
	"github.com/Wicz-Cloud/pai-note-exporter/logging"
)

// version is stamped at build time.
var version = "0.2.0"

// rootState carries flag values and the resolved config into
// subcommands.
type rootState struct {
	configPath string
	logLevel   string
	logFile    string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	state := &rootState{}

	rootCmd := &cobra.Command{
		Use:           "pai-note-exporter",
		Short:         "Export recordings, transcripts and summaries from Plaud.ai",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.configPath)
			if err != nil {
				return err
			}
			if state.logLevel != "" {
				cfg.LogLevel = state.logLevel
			}
			if state.logFile != "" {
				cfg.LogFile = state.logFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logging.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
				return err
			}
			state.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&state.configPath, "config", "", "path to config file")
	flags.StringVar(&state.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&state.logFile, "log-file", "", "also write logs to this file")

	rootCmd.AddCommand(newLoginCmd(state))
	rootCmd.AddCommand(newExportCmd(state))
	rootCmd.AddCommand(newGenerateCmd(state))
	rootCmd.AddCommand(newPendingCmd(state))

	return rootCmd
}
