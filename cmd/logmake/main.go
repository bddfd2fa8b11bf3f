// Package main provides the entry point for the logmake CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/logmake/cmd/logmake/commands"
	"github.com/Sumatoshi-tech/logmake/pkg/version"
)

var verbose bool

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "logmake",
		Short: "Logmake - translate captured build logs into incremental Makefiles",
		Long: `Logmake captures the output of a monolithic build tool and translates it
into a Makefile, so that source-only edits rebuild through make instead of
the full orchestrator.

Commands:
  capture    Run the build tool and record its output log
  translate  Translate a captured log into a Makefile
  build      Bring the Makefile up to date and run it`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add commands.
	rootCmd.AddCommand(commands.NewCaptureCommand())
	rootCmd.AddCommand(commands.NewTranslateCommand())
	rootCmd.AddCommand(commands.NewBuildCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configureLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "logmake %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
