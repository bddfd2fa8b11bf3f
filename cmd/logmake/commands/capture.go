package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/logmake/internal/capture"
	"github.com/Sumatoshi-tech/logmake/internal/config"
)

// CaptureCommand holds configuration for the capture command.
type CaptureCommand struct {
	configPath string
	logPath    string
	invocation string
	noClean    bool
}

// NewCaptureCommand creates the capture command.
func NewCaptureCommand() *cobra.Command {
	cc := &CaptureCommand{}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Run the build tool and record its combined output",
		Long: `Run the configured build tool (clean, then build) and record its combined
stdout/stderr to the log file, mirrored to the terminal. A manifest with
the exact invocation is written next to the log for later translation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cc.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&cc.configPath, "config", "c", "", "path to .logmake.yaml")
	cmd.Flags().StringVar(&cc.logPath, "log", "", "log file path")
	cmd.Flags().StringVar(&cc.invocation, "invocation", "", "build tool invocation")
	cmd.Flags().BoolVar(&cc.noClean, "no-clean", false, "skip the clean step before building")

	return cmd
}

func (cc *CaptureCommand) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cc.configPath)
	if err != nil {
		return err
	}

	runner := &capture.Runner{
		Invocation: cfg.Capture.Invocation,
		CleanArg:   cfg.Capture.CleanArg,
		LogPath:    cfg.Capture.LogPath,
		Stdout:     stdout,
	}

	if cc.invocation != "" {
		runner.Invocation = cc.invocation
	}

	if cc.logPath != "" {
		runner.LogPath = cc.logPath
	}

	if cc.noClean {
		runner.CleanArg = ""
	}

	manifest, err := runner.Capture(ctx)
	if errors.Is(err, capture.ErrBuildFailed) {
		color.New(color.FgRed).Fprintf(stderr, "build failed (exit %d), log kept at %s\n",
			manifest.ExitCode, manifest.LogPath)

		return err
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "captured %s\n", manifest.LogPath)

	return nil
}
