package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/weave/internal/config"
	"github.com/aretw0/weave/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Weave is a headless workflow editor",
	Long: `Weave edits trigger, condition and action workflows over HTTP or MCP,
keeps a registry of typed variables, and checks workflow documents from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
			if err := loaded.Validate(); err != nil {
				return err
			}
		}
		level, _ := logging.ParseLevel(loaded.Log.Level)
		cfg = loaded
		logger = logging.NewWithFormat(os.Stderr, level, logging.Format(loaded.Log.Format))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}
