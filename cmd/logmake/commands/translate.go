// Package commands implements CLI command handlers for logmake.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/logmake/internal/capture"
	"github.com/Sumatoshi-tech/logmake/internal/config"
	"github.com/Sumatoshi-tech/logmake/internal/driver"
	"github.com/Sumatoshi-tech/logmake/internal/translator"
	"github.com/Sumatoshi-tech/logmake/pkg/version"
)

// TranslateCommand holds configuration for the translate command.
type TranslateCommand struct {
	configPath string
	logPath    string
	outputPath string
	invocation string
	showDiff   bool
	noColor    bool
	quiet      bool
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	tc := &TranslateCommand{}

	cmd := &cobra.Command{
		Use:   "translate [log]",
		Short: "Translate a captured build log into a Makefile",
		Long: `Translate a captured build log into a Makefile.

The log is consumed in one pass; compile, link, and code-signing records
become dependency rules, everything else is echoed as comments. Skipped
steps are reported on stderr and never abort the translation.

Examples:
  logmake translate
  logmake translate build.log -o Makefile.generated
  logmake translate --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				tc.logPath = args[0]
			}

			return tc.run(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&tc.configPath, "config", "c", "", "path to .logmake.yaml")
	cmd.Flags().StringVarP(&tc.outputPath, "output", "o", "", "output Makefile path")
	cmd.Flags().StringVar(&tc.invocation, "invocation", "", "invocation string to stamp into the header")
	cmd.Flags().BoolVar(&tc.showDiff, "diff", false, "show a diff against the existing output file")
	cmd.Flags().BoolVar(&tc.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVarP(&tc.quiet, "quiet", "q", false, "suppress the summary table")

	return cmd
}

func (tc *TranslateCommand) run(stdout, stderr io.Writer) error {
	if tc.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := config.Load(tc.configPath)
	if err != nil {
		return err
	}

	logPath := cfg.Capture.LogPath
	if tc.logPath != "" {
		logPath = tc.logPath
	}

	outputPath := cfg.Translate.Output
	if tc.outputPath != "" {
		outputPath = tc.outputPath
	}

	opts := translator.Options{
		Invocation: cfg.Capture.Invocation,
		Version:    version.Version,
	}

	// The capture manifest, when present, knows the invocation that
	// actually produced this log.
	if manifest, readErr := capture.ReadManifest(logPath); readErr == nil {
		opts.Invocation = manifest.Invocation
		opts.CapturedAt = manifest.FinishedAt.UTC().Format("2006-01-02T15:04:05Z")
	}

	if tc.invocation != "" {
		opts.Invocation = tc.invocation
	}

	result, err := translator.Translate(logPath, opts)
	if err != nil {
		return err
	}

	for _, diag := range result.Diags {
		color.New(color.FgYellow).Fprintf(stderr, "skipped step: %s\n", diag)
	}

	if tc.showDiff {
		tc.printDiff(stdout, outputPath, result.Text)
	}

	if err := os.WriteFile(outputPath, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("%w: %w", driver.ErrOutputUnwritable, err)
	}

	if !tc.quiet {
		tc.printSummary(stdout, outputPath, result)
	}

	return nil
}

// printDiff shows what will change in an existing output file. A missing
// file means everything is new; no diff is printed then.
func (tc *TranslateCommand) printDiff(w io.Writer, outputPath, newText string) {
	previous, err := os.ReadFile(outputPath)
	if err != nil {
		return
	}

	if string(previous) == newText {
		fmt.Fprintln(w, "rule set unchanged")

		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(previous), newText, false)
	fmt.Fprintln(w, dmp.DiffPrettyText(diffs))
}

// printSummary renders the per-kind step counts and totals.
func (tc *TranslateCommand) printSummary(w io.Writer, outputPath string, result *translator.Result) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"step kind", "seen"})

	for _, kind := range translator.StepKinds {
		tbl.AppendRow(table.Row{string(kind), result.StepCounts[kind]})
	}

	tbl.AppendFooter(table.Row{"rules", result.Rules})
	tbl.Render()

	fmt.Fprintf(w, "translated %s of log into %s (%d rules, %d skipped steps)\n",
		humanize.IBytes(uint64(result.LogBytes)), outputPath, result.Rules, len(result.Diags))
}
