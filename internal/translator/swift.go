package translator

import (
	"strings"

	"github.com/Sumatoshi-tech/logmake/pkg/escape"
)

// Frontend option names for the legacy per-file Swift record.
const (
	primaryFileFlag = "-primary-file"
	outputFlag      = "-o"
	frontendMark    = "-frontend"
)

// swiftDriver handles the whole-module Swift compilation record. The
// driver line itself does not name per-file artifacts; those live in the
// JSON output file map it references, so one driver step fans out into one
// rule per mapped source, all sharing the same compiler invocation.
func (tr *translation) swiftDriver(line string) {
	cdPrefix, ok := tr.cur.NextDirectoryChange()
	if !ok {
		tr.diag(line, "missing directory-change line")

		return
	}

	driverLine, ok := tr.cur.NextNonBlank()
	if !ok {
		tr.diag(line, "missing driver invocation line")

		return
	}

	invocation := actualInvocation(driverLine)

	mapPath, err := findOutputFileMap(driverLine, invocation)
	if err != nil {
		tr.diag(line, err.Error())

		return
	}

	entries, err := loadOutputFileMap(escape.UnescapeShell(mapPath))
	if err != nil {
		tr.diag(line, err.Error())

		return
	}

	recipeBase := cdPrefix + escape.Dollar(invocation)

	for _, src := range sortedSources(entries) {
		object := entries[src].Object

		tr.register(&Rule{
			Target:  escape.MakeTarget(object),
			Prereqs: []string{escape.MakeTarget(src)},
			Recipe:  []string{recipeBase + " && touch " + escape.Shell(object)},
		})
	}
}

// swiftCompile handles the legacy per-file Swift record: one
// swift-frontend invocation naming its sources via -primary-file and its
// objects via -o, pairwise in order.
func (tr *translation) swiftCompile(line string) {
	cdPrefix, ok := tr.cur.NextDirectoryChange()
	if !ok {
		tr.diag(line, "missing directory-change line")

		return
	}

	frontend, ok := tr.cur.NextNonBlank()
	if !ok {
		tr.diag(line, "missing swift-frontend command line")

		return
	}

	if !strings.Contains(frontend, frontendMark) {
		tr.diag(line, "not a swift-frontend invocation")

		return
	}

	primaries := optionValues(frontend, primaryFileFlag)
	outputs := optionValues(frontend, outputFlag)

	if len(primaries) == 0 || len(primaries) != len(outputs) {
		tr.diag(line, "mismatched -primary-file/-o counts")

		return
	}

	for i, rawSource := range primaries {
		object := escape.UnescapeShell(outputs[i])

		tr.register(&Rule{
			Target:  canonical(outputs[i]),
			Prereqs: []string{canonical(rawSource)},
			Recipe:  []string{cdPrefix + escape.Dollar(frontend) + " && touch " + escape.Shell(object)},
		})
	}
}
