// Package cli provides the command-line interface for umlfca.
package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/raphaelgruber/umlfca/internal/config"
	"github.com/raphaelgruber/umlfca/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configFile string

	// Loaded once per invocation in PersistentPreRunE.
	cfg config.Config
)

// newRootCmd builds the command tree. A fresh tree resets every flag to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "umlfca",
		Short: "Enhance PlantUML class diagrams with FCA-derived abstractions",
		Long: `umlfca reads a PlantUML class diagram, builds a formal context of classes
and their features, extracts formal concepts and turns groups of classes that
share features into named abstract parent classes.

The enhanced diagram, the knowledge graph, the concept list, evaluation CSVs
and a Markdown report are written to the output and reports directories.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}

			cfg = config.Load()
			if configFile != "" {
				if err := config.LoadFile(configFile, &cfg); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file overlaying environment settings")

	rootCmd.AddCommand(newEnhanceCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command. Failures are printed to stderr before being
// returned so main only has to set the exit code.
func Execute() error {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		newPrinter(rootCmd.ErrOrStderr()).printError(err, verbose)
		return err
	}
	return nil
}

// setupLogging opens logs/pipeline_<timestamp>.log for this run. The console
// shows warnings only unless --verbose is set.
func setupLogging(c config.Config, now time.Time) (*slog.Logger, func() error) {
	consoleLevel := slog.LevelWarn
	if verbose {
		consoleLevel = slog.LevelDebug
	}
	logFile := filepath.Join(c.LogsDir, fmt.Sprintf("pipeline_%s.log", now.Format(service.TimestampLayout)))
	return config.SetupLogger(logFile, c.LogLevel, consoleLevel)
}
