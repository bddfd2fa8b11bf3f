package translator

import (
	"bufio"
	"os"
	"strings"

	"github.com/Sumatoshi-tech/logmake/pkg/escape"
)

// Linker option names and the object suffix used for prerequisite
// filtering.
const (
	filelistFlag = "-filelist"
	objectSuffix = ".o"
)

// link handles `Ld <output> …`. Prerequisites come from the linker's
// -filelist: a path is tracked when it is already a known target, or when
// it ends in .o even though nothing in the log builds it (prebuilt objects
// still participate in staleness checks). Outputs that are not plain
// objects become linked products and feed the terminal aggregate rule.
func (tr *translation) link(line string) {
	fields := splitFields(line)
	if len(fields) < 2 {
		tr.diag(line, "malformed Ld record")

		return
	}

	rawOutput := fields[1]

	cdPrefix, ok := tr.cur.NextDirectoryChange()
	if !ok {
		tr.diag(line, "missing directory-change line")

		return
	}

	invocation, ok := tr.cur.NextNonBlank()
	if !ok {
		tr.diag(line, "missing linker invocation line")

		return
	}

	var prereqs []string

	filelist, found := optionValue(invocation, filelistFlag)
	if found {
		prereqs, ok = tr.filelistPrereqs(escape.UnescapeShell(filelist))
		if !ok {
			tr.diag(line, "cannot read link filelist "+filelist)

			return
		}
	} else {
		tr.diag(line, "no -filelist option in linker invocation")
	}

	output := escape.UnescapeShell(rawOutput)
	target := canonical(rawOutput)

	tr.register(&Rule{
		Target:  target,
		Prereqs: prereqs,
		Recipe:  []string{cdPrefix + escape.Dollar(invocation)},
	})

	if !strings.HasSuffix(output, objectSuffix) {
		tr.products.Add(target)
	}
}

// filelistPrereqs reads the linker filelist, one object path per line, and
// keeps the paths that pass the prerequisite filter.
func (tr *translation) filelistPrereqs(path string) ([]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var prereqs []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		entry := strings.TrimSpace(sc.Text())
		if entry == "" {
			continue
		}

		target := escape.MakeTarget(entry)
		if tr.table.Has(target) || strings.HasSuffix(entry, objectSuffix) {
			prereqs = append(prereqs, target)
		}
	}

	return prereqs, true
}
