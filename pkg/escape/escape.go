// Package escape implements the quoting dialects needed when paths from a
// captured build log are re-emitted into a Makefile: make target tokens,
// shell recipe tokens, and verbatim recipe lines that must survive make's
// own variable expansion.
package escape

import "strings"

var (
	makeTargetEscaper = strings.NewReplacer(
		"$", "$$",
		" ", `\ `,
		"&", `\&`)
	shellEscaper = strings.NewReplacer(
		"(", `\(`,
		")", `\)`,
		"#", `\#`,
		"&", `\&`,
		"$", `\$`,
		" ", `\ `)
	shellUnescaper = strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\#`, "#",
		`\&`, "&",
		`\$`, "$",
		`\ `, " ")
	dollarEscaper = strings.NewReplacer(
		"$", "$$")
)

// MakeTarget escapes a path for use as a make target or prerequisite token,
// so that embedded spaces do not split the token and literal dollars are not
// expanded. The result is the canonical form used as a rule identity, so it
// must be applied exactly once.
func MakeTarget(path string) string {
	return makeTargetEscaper.Replace(path)
}

// Shell escapes a path for use as a single word inside a generated shell
// recipe, backslash-quoting the shell metacharacters `( ) # & $` and spaces.
func Shell(path string) string {
	return shellEscaper.Replace(path)
}

// UnescapeShell inverts Shell for paths the build tool already
// backslash-quoted in its log output, so they can be re-escaped for the
// dialect actually required at the use site.
func UnescapeShell(path string) string {
	return shellUnescaper.Replace(path)
}

// Dollar doubles every literal `$` so a command line copied verbatim from
// the log survives make's variable-expansion pass unchanged.
func Dollar(line string) string {
	return dollarEscaper.Replace(line)
}
