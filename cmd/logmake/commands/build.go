package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/logmake/internal/capture"
	"github.com/Sumatoshi-tech/logmake/internal/config"
	"github.com/Sumatoshi-tech/logmake/internal/driver"
	"github.com/Sumatoshi-tech/logmake/pkg/version"
)

// BuildCommand holds configuration for the build command.
type BuildCommand struct {
	configPath  string
	refreshOnly bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	bc := &BuildCommand{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bring the generated Makefile up to date and run it",
		Long: `Bring the generated Makefile up to date and run it.

The log is recaptured when missing, and the Makefile is regenerated when it
is missing, older than the log, or stamped with a different invocation.
When make fails against a pre-existing Makefile, one full
capture-translate-make cascade is attempted before giving up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bc.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&bc.configPath, "config", "c", "", "path to .logmake.yaml")
	cmd.Flags().BoolVar(&bc.refreshOnly, "refresh-only", false, "regenerate the Makefile without running make")

	return cmd
}

func (bc *BuildCommand) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := config.Load(bc.configPath)
	if err != nil {
		return err
	}

	d := &driver.Driver{
		Config: cfg,
		Capturer: &capture.Runner{
			Invocation: cfg.Capture.Invocation,
			CleanArg:   cfg.Capture.CleanArg,
			LogPath:    cfg.Capture.LogPath,
			Stdout:     stdout,
		},
		Version: version.Version,
		Stdout:  stdout,
		Stderr:  stderr,
	}

	if bc.refreshOnly {
		_, err := d.Refresh(ctx)

		return err
	}

	return d.Run(ctx)
}
