package capture

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// manifestSuffix is appended to the log path to name the sidecar manifest.
const manifestSuffix = ".manifest.yaml"

// Manifest is the sidecar document written next to a captured log. It
// records the exact invocation that produced the log; the translator stamps
// that string into the generated Makefile header, where it serves as the
// freshness fingerprint for later runs.
type Manifest struct {
	Invocation string    `yaml:"invocation"`
	LogPath    string    `yaml:"log_path"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	ExitCode   int       `yaml:"exit_code"`
}

// ManifestPath returns the manifest path for a log path.
func ManifestPath(logPath string) string {
	return logPath + manifestSuffix
}

// WriteManifest writes the manifest next to its log file.
func WriteManifest(m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal capture manifest: %w", err)
	}

	if err := os.WriteFile(ManifestPath(m.LogPath), data, 0o644); err != nil {
		return fmt.Errorf("write capture manifest: %w", err)
	}

	return nil
}

// ReadManifest reads the manifest for a log path, if one exists.
func ReadManifest(logPath string) (*Manifest, error) {
	data, err := os.ReadFile(ManifestPath(logPath))
	if err != nil {
		return nil, fmt.Errorf("read capture manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse capture manifest: %w", err)
	}

	return &m, nil
}
