// Package version exposes the build metadata stamped into the logmake
// binary. The translator writes Version into every generated Makefile
// header.
package version

import "runtime/debug"

// Set via -ldflags at release time; InitBinaryVersion fills in what it can
// for plain `go install` builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion backfills Version from the module build info when no
// release version was linked in.
func InitBinaryVersion() {
	if Version != "dev" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			Commit = setting.Value
		}
	}
}
