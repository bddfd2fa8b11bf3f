package translator

import (
	"strings"
)

// terminalTarget is the aggregate rule every generated Makefile ends with.
const terminalTarget = "main"

// Header carries the provenance stamped into the generated Makefile. The
// Invocation line doubles as the freshness fingerprint an external driver
// compares against its configured invocation to decide whether the rule set
// must be regenerated.
type Header struct {
	Version    string
	LogPath    string
	CapturedAt string
	Invocation string
}

// emitter assembles the rule-set text in log order. It never re-reads what
// it has written; dedup decisions are the rule table's.
type emitter struct {
	b strings.Builder
}

func (e *emitter) Head(h Header) {
	e.b.WriteString("# Makefile generated by logmake " + h.Version + " -- do not edit.\n")
	e.b.WriteString("# log: " + h.LogPath + "\n")

	if h.CapturedAt != "" {
		e.b.WriteString("# captured: " + h.CapturedAt + "\n")
	}

	if h.Invocation != "" {
		e.b.WriteString("# invocation: " + h.Invocation + "\n")
	}

	e.b.WriteString("\n")
}

// Comment echoes an unclassified log record into the output.
func (e *emitter) Comment(line string) {
	if line == "" {
		e.b.WriteString("#\n")

		return
	}

	e.b.WriteString("# " + line + "\n")
}

// RuleBlock writes one `target: prereqs` block with a tab-indented recipe.
func (e *emitter) RuleBlock(r *Rule) {
	e.b.WriteString("\n" + r.Target + ":")

	if len(r.Prereqs) > 0 {
		e.b.WriteString(" " + strings.Join(r.Prereqs, " "))
	}

	e.b.WriteString("\n")

	for _, cmd := range r.Recipe {
		e.b.WriteString("\t" + cmd + "\n")
	}

	e.b.WriteString("\n")
}

// Terminal writes the aggregate `main` rule depending on every linked
// product, with the post-link commands as its recipe in original order.
func (e *emitter) Terminal(products []string, postLink []string) {
	e.RuleBlock(&Rule{
		Target:  terminalTarget,
		Prereqs: products,
		Recipe:  postLink,
	})
}

func (e *emitter) Text() string {
	return e.b.String()
}
