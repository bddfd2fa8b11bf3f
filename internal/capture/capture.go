// Package capture runs the external build tool and records its combined
// output as the log the translator consumes. Capture and translation are
// strictly sequenced: the log file is flushed and closed, and the manifest
// written, before Capture returns.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Sentinel errors for capture outcomes.
var (
	ErrEmptyInvocation = errors.New("empty capture invocation")
	ErrCleanFailed     = errors.New("clean step failed")
	ErrBuildFailed     = errors.New("build step failed")
)

// Capturer produces a complete, line-terminated log file on disk and the
// manifest describing how it was produced.
type Capturer interface {
	Capture(ctx context.Context) (*Manifest, error)
}

// Runner is the exec-based Capturer. It runs the configured build tool
// twice, clean then build, streaming combined stdout/stderr both to the
// terminal and to the log file.
type Runner struct {
	Invocation string
	CleanArg   string
	LogPath    string
	Stdout     io.Writer
}

// Capture implements Capturer. A failing build still leaves the log and
// manifest on disk; the returned error wraps ErrBuildFailed.
func (r *Runner) Capture(ctx context.Context) (*Manifest, error) {
	argv := strings.Fields(r.Invocation)
	if len(argv) == 0 {
		return nil, ErrEmptyInvocation
	}

	terminal := r.Stdout
	if terminal == nil {
		terminal = os.Stdout
	}

	logFile, err := os.Create(r.LogPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	tee := io.MultiWriter(terminal, logFile)
	started := time.Now()

	if r.CleanArg != "" {
		if err := runTool(ctx, cleanArgv(argv, r.CleanArg), tee); err != nil {
			logFile.Close()

			return nil, fmt.Errorf("%w: %w", ErrCleanFailed, err)
		}
	}

	buildErr := runTool(ctx, argv, tee)

	// The log must be complete on disk before anything downstream reads it.
	if closeErr := logFile.Close(); closeErr != nil {
		return nil, fmt.Errorf("flush log file: %w", closeErr)
	}

	manifest := &Manifest{
		Invocation: r.Invocation,
		LogPath:    r.LogPath,
		StartedAt:  started,
		FinishedAt: time.Now(),
		ExitCode:   exitCode(buildErr),
	}

	if err := WriteManifest(manifest); err != nil {
		return nil, err
	}

	if buildErr != nil {
		return manifest, fmt.Errorf("%w: %w", ErrBuildFailed, buildErr)
	}

	return manifest, nil
}

// cleanArgv derives the clean invocation from the build invocation: the
// final word is the build action and gets replaced by the clean action.
func cleanArgv(argv []string, cleanArg string) []string {
	base := argv
	if len(argv) > 1 {
		base = argv[:len(argv)-1]
	}

	return append(append([]string{}, base...), cleanArg)
}

// runTool executes one invocation with combined output going to w.
func runTool(ctx context.Context, argv []string, w io.Writer) error {
	slog.Debug("running build tool", "argv", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}

	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
