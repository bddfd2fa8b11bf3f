package translator

import (
	"github.com/Sumatoshi-tech/logmake/pkg/escape"
)

// Step markers the classifiers dispatch on. These are the record prefixes
// the build tool prints at the start of each step. The trailing space on
// markerSwiftCompile keeps it from matching the CompileSwiftSources record;
// markerSwiftDriver names the full compilation record so that status lines
// like SwiftDriverJobDiscovery stay unclassified.
const (
	markerCompileC     = "CompileC "
	markerSwiftDriver  = `SwiftDriver\ Compilation `
	markerSwiftCompile = "CompileSwift "
	markerLink         = "Ld "
	markerCodesign     = "/usr/bin/codesign "
	markerTouch        = "/usr/bin/touch "
)

// canonical converts a raw (possibly backslash-quoted) log path into the
// make-target-escaped form used as rule identity.
func canonical(raw string) string {
	return escape.MakeTarget(escape.UnescapeShell(raw))
}

// compileC handles `CompileC <object> <source> …`: one rule per step, with
// the captured compiler command as recipe followed by a touch of the object
// so make sees a fresh timestamp even when the compiler skips the write.
func (tr *translation) compileC(line string) {
	fields := splitFields(line)
	if len(fields) < 3 {
		tr.diag(line, "malformed CompileC record")

		return
	}

	rawObject, rawSource := fields[1], fields[2]

	cdPrefix, ok := tr.cur.NextDirectoryChange()
	if !ok {
		tr.diag(line, "missing directory-change line")

		return
	}

	command, ok := tr.cur.NextNonBlank()
	if !ok {
		tr.diag(line, "missing compiler command line")

		return
	}

	object := escape.UnescapeShell(rawObject)

	tr.register(&Rule{
		Target:  canonical(rawObject),
		Prereqs: []string{canonical(rawSource)},
		Recipe:  []string{cdPrefix + escape.Dollar(command) + " && touch " + escape.Shell(object)},
	})
}

// codesign appends a code-signing or touch invocation to the post-link
// recipe, dollar-escaped so it replays verbatim under make.
func (tr *translation) codesign(line string) {
	tr.postLink = append(tr.postLink, escape.Dollar(line))
}
