// Package translator turns a captured build-tool log into an incremental
// Makefile. It makes one forward pass over the log, classifying step
// records, resolving side-channel files (the Swift output file map, the
// linker filelist), and emitting one deduplicated rule block per step plus
// a terminal aggregate rule.
package translator

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrLogUnreadable is the only hard failure: the log file itself cannot be
// opened. Every per-step problem degrades to a skipped step instead.
var ErrLogUnreadable = errors.New("cannot open build log")

// StepKind tags one classified unit of the log.
type StepKind string

// Step kinds, in dispatch order.
const (
	StepCompileC     StepKind = "CompileC"
	StepSwiftDriver  StepKind = "SwiftDriver"
	StepSwiftCompile StepKind = "CompileSwift"
	StepLink         StepKind = "Ld"
	StepCodesign     StepKind = "CodeSign"
)

// StepKinds lists every kind in dispatch order, for stable reporting.
var StepKinds = []StepKind{StepCompileC, StepSwiftDriver, StepSwiftCompile, StepLink, StepCodesign}

// Diagnostic describes one skipped step. Skips never abort translation.
type Diagnostic struct {
	Line    int
	Record  string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Message, d.Record)
}

// Options carries the provenance stamped into the generated Makefile
// header. Invocation is the exact command that produced the log; an
// external driver compares it against its configuration to decide whether
// the rule set is stale.
type Options struct {
	Invocation string
	CapturedAt string
	Version    string
}

// Result is the outcome of one translation.
type Result struct {
	Text       string
	LogBytes   int64
	Rules      int
	StepCounts map[StepKind]int
	Diags      []Diagnostic
}

// translation is the per-call state. It is owned by exactly one Translate
// invocation and never shared.
type translation struct {
	cur      *cursor
	table    *ruleTable
	emit     *emitter
	products *productList
	postLink []string
	diags    []Diagnostic
	counts   map[StepKind]int
	rules    int
}

// Translate reads the log at logPath and returns the generated rule-set
// text. It returns an error only when the log cannot be opened; any number
// of skipped steps still yields a usable result.
func Translate(logPath string, opts Options) (*Result, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogUnreadable, err)
	}
	defer f.Close()

	var logBytes int64
	if info, statErr := f.Stat(); statErr == nil {
		logBytes = info.Size()
	}

	tr := &translation{
		cur:      newCursor(f),
		table:    newRuleTable(),
		emit:     &emitter{},
		products: newProductList(),
		counts:   make(map[StepKind]int),
	}

	tr.emit.Head(Header{
		Version:    opts.Version,
		LogPath:    logPath,
		CapturedAt: opts.CapturedAt,
		Invocation: opts.Invocation,
	})

	for {
		line, ok := tr.cur.Next()
		if !ok {
			break
		}

		tr.dispatch(line)
	}

	tr.emit.Terminal(tr.products.Targets(), tr.postLink)

	return &Result{
		Text:       tr.emit.Text(),
		LogBytes:   logBytes,
		Rules:      tr.rules,
		StepCounts: tr.counts,
		Diags:      tr.diags,
	}, nil
}

// dispatch classifies one record, first match wins. Unclassified records
// are echoed as comments so the generated file stays reviewable against the
// original log.
func (tr *translation) dispatch(line string) {
	switch {
	case strings.HasPrefix(line, markerCompileC):
		tr.counts[StepCompileC]++
		tr.compileC(line)
	case strings.HasPrefix(line, markerSwiftDriver):
		tr.counts[StepSwiftDriver]++
		tr.swiftDriver(line)
	case strings.HasPrefix(line, markerSwiftCompile):
		tr.counts[StepSwiftCompile]++
		tr.swiftCompile(line)
	case strings.HasPrefix(line, markerLink):
		tr.counts[StepLink]++
		tr.link(line)
	case strings.HasPrefix(line, markerCodesign) || strings.HasPrefix(line, markerTouch):
		tr.counts[StepCodesign]++
		tr.codesign(line)
	default:
		tr.emit.Comment(line)
	}
}

// register inserts the rule and emits its block unless the target is
// already claimed by an earlier rule.
func (tr *translation) register(r *Rule) {
	if !tr.table.Add(r) {
		return
	}

	tr.emit.RuleBlock(r)
	tr.rules++
}

// diag records a diagnostic for a degraded or skipped step. Parsing always
// resumes at the next unconsumed line.
func (tr *translation) diag(record, message string) {
	tr.diags = append(tr.diags, Diagnostic{
		Line:    tr.cur.line,
		Record:  record,
		Message: message,
	})
}
