// Package driver decides when to recapture the build log, when to
// retranslate it, and runs the generated rule set through make. The
// retry-on-failure cascade lives here, never inside the translator.
package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/Sumatoshi-tech/logmake/internal/capture"
	"github.com/Sumatoshi-tech/logmake/internal/config"
	"github.com/Sumatoshi-tech/logmake/internal/translator"
)

// fingerprintPrefix is the header line the translator stamps and the driver
// compares against its configured invocation.
const fingerprintPrefix = "# invocation: "

// ErrOutputUnwritable reports that the rule set cannot be written where the
// configuration points.
var ErrOutputUnwritable = errors.New("cannot write rule set")

// Driver ties capture, translation, and execution together for one
// configured project.
type Driver struct {
	Config   *config.Config
	Capturer capture.Capturer
	Version  string
	Stdout   io.Writer
	Stderr   io.Writer
}

// Run brings the rule set up to date and executes it. When make fails with
// a fresh rule set, the driver falls back to one full
// capture-translate-make cascade before giving up.
func (d *Driver) Run(ctx context.Context) error {
	regenerated, err := d.Refresh(ctx)
	if err != nil {
		return err
	}

	makeErr := d.runMake(ctx)
	if makeErr == nil || regenerated {
		return makeErr
	}

	// A stale rule set is the usual culprit: recapture and retry once.
	slog.Info("make failed with an existing rule set, recapturing", "error", makeErr)

	if _, err := d.capture(ctx); err != nil {
		return err
	}

	if err := d.translate(); err != nil {
		return err
	}

	return d.runMake(ctx)
}

// Refresh recaptures and retranslates as needed. It reports whether the
// rule set was regenerated.
func (d *Driver) Refresh(ctx context.Context) (bool, error) {
	if d.needsCapture() {
		if _, err := d.capture(ctx); err != nil {
			return false, err
		}
	}

	if !d.needsTranslation() {
		return false, nil
	}

	return true, d.translate()
}

// needsCapture reports whether the log is missing or was captured with a
// different invocation than the configuration now names. Without a manifest
// the log's provenance is unknown and it is taken at face value.
func (d *Driver) needsCapture() bool {
	logPath := d.Config.Capture.LogPath

	if _, err := os.Stat(logPath); err != nil {
		slog.Debug("log missing, capturing", "log", logPath)

		return true
	}

	manifest, err := capture.ReadManifest(logPath)
	if err != nil {
		return false
	}

	if manifest.Invocation != d.Config.Capture.Invocation {
		slog.Debug("log captured with a different invocation, recapturing",
			"log", logPath, "was", manifest.Invocation)

		return true
	}

	return false
}

// needsTranslation reports whether the generated rule set is missing,
// older than the log, or fingerprinted with a different invocation.
func (d *Driver) needsTranslation() bool {
	output := d.Config.Translate.Output

	outInfo, err := os.Stat(output)
	if err != nil {
		return true
	}

	logInfo, err := os.Stat(d.Config.Capture.LogPath)
	if err == nil && outInfo.ModTime().Before(logInfo.ModTime()) {
		return true
	}

	return fingerprint(output) != d.Config.Capture.Invocation
}

// capture delegates to the configured Capturer. A failed build is fatal
// for the driver: the log would describe a broken build.
func (d *Driver) capture(ctx context.Context) (*capture.Manifest, error) {
	manifest, err := d.Capturer.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	return manifest, nil
}

// translate runs the translator over the captured log and writes the rule
// set to the configured output path.
func (d *Driver) translate() error {
	opts := translator.Options{
		Invocation: d.Config.Capture.Invocation,
		Version:    d.Version,
	}

	// The stamped invocation must equal the configured one, or the
	// fingerprint comparison in needsTranslation never settles. The
	// manifest contributes only the capture timestamp.
	if manifest, err := capture.ReadManifest(d.Config.Capture.LogPath); err == nil {
		opts.CapturedAt = manifest.FinishedAt.UTC().Format("2006-01-02T15:04:05Z")
	}

	result, err := translator.Translate(d.Config.Capture.LogPath, opts)
	if err != nil {
		return err
	}

	for _, diag := range result.Diags {
		fmt.Fprintf(d.stderr(), "logmake: skipped step: %s\n", diag)
	}

	if err := os.WriteFile(d.Config.Translate.Output, []byte(result.Text), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputUnwritable, err)
	}

	slog.Debug("rule set written",
		"output", d.Config.Translate.Output, "rules", result.Rules, "skipped", len(result.Diags))

	return nil
}

// runMake executes the generated rule set.
func (d *Driver) runMake(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.Config.Build.MakeProgram,
		"-f", d.Config.Translate.Output, d.Config.Build.Target)
	cmd.Stdout = d.stdout()
	cmd.Stderr = d.stderr()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", d.Config.Build.MakeProgram, err)
	}

	return nil
}

func (d *Driver) stdout() io.Writer {
	if d.Stdout != nil {
		return d.Stdout
	}

	return os.Stdout
}

func (d *Driver) stderr() io.Writer {
	if d.Stderr != nil {
		return d.Stderr
	}

	return os.Stderr
}

// fingerprint extracts the invocation line from an existing rule set, or
// returns "" when the file has none.
func fingerprint(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()

		if value, found := strings.CutPrefix(line, fingerprintPrefix); found {
			return value
		}

		// The header block ends at the first rule; stop scanning there.
		if !strings.HasPrefix(line, "#") && strings.Contains(line, ":") {
			break
		}
	}

	return ""
}
