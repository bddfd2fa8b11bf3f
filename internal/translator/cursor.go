package translator

import (
	"bufio"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/logmake/pkg/escape"
)

// timePrefix is stripped from directory-change records when the capture ran
// the build tool under /usr/bin/time.
const timePrefix = "/usr/bin/time "

// cursor is a forward-only reader over the captured log. Lines are consumed
// exactly once and never replayed; classifiers that need lookahead consume
// the lines they look at.
type cursor struct {
	sc   *bufio.Scanner
	line int
}

func newCursor(r io.Reader) *cursor {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &cursor{sc: sc}
}

// Next returns the next record with surrounding whitespace trimmed, or
// ok=false at end of input.
func (c *cursor) Next() (string, bool) {
	if !c.sc.Scan() {
		return "", false
	}

	c.line++

	return strings.TrimSpace(c.sc.Text()), true
}

// NextNonBlank returns the next record that is neither blank nor a
// response-file reference, or ok=false at end of input.
func (c *cursor) NextNonBlank() (string, bool) {
	for {
		line, ok := c.Next()
		if !ok {
			return "", false
		}

		if line == "" || isResponseFile(line) {
			continue
		}

		return line, true
	}
}

// NextDirectoryChange consumes one record and, when it is a `cd <path>`
// record (optionally prefixed by /usr/bin/time), returns a recipe prefix of
// the form "cd <path> && " with the path re-escaped for the shell. The
// consumed record is not pushed back on failure.
func (c *cursor) NextDirectoryChange() (string, bool) {
	line, ok := c.Next()
	if !ok {
		return "", false
	}

	line = strings.TrimPrefix(line, timePrefix)

	path, found := strings.CutPrefix(line, "cd ")
	if !found || path == "" {
		return "", false
	}

	path = escape.Shell(escape.UnescapeShell(path))

	return "cd " + path + " && ", true
}

// isResponseFile reports whether the record is a response-file reference
// rather than an actual command line.
func isResponseFile(line string) bool {
	if strings.HasPrefix(line, "@") {
		return true
	}

	return strings.HasPrefix(line, "Using response file")
}
