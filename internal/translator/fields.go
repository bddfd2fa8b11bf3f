package translator

import "strings"

// splitFields splits a log record into space-separated tokens, honoring
// backslash-escaped spaces inside path tokens. Escape sequences are kept
// verbatim in the returned tokens; callers unescape per dialect.
func splitFields(line string) []string {
	var (
		fields  []string
		current strings.Builder
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)

			escaped = false
		case r == '\\':
			current.WriteRune(r)

			escaped = true
		case r == ' ':
			if current.Len() > 0 {
				fields = append(fields, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		fields = append(fields, current.String())
	}

	return fields
}

// optionValue finds the value of a `-name value` option in a command line,
// skipping occurrences where the option name is itself an argument to the
// linker passthrough flag -Xlinker. Returns ok=false when the option is
// absent or has no value token.
func optionValue(line, name string) (string, bool) {
	fields := splitFields(line)
	for i, tok := range fields {
		if tok != name {
			continue
		}

		if i > 0 && fields[i-1] == "-Xlinker" {
			continue
		}

		if i+1 >= len(fields) {
			return "", false
		}

		return fields[i+1], true
	}

	return "", false
}

// optionValues collects every value of a repeated `-name value` option, in
// order of appearance.
func optionValues(line, name string) []string {
	var values []string

	fields := splitFields(line)
	for i, tok := range fields {
		if tok == name && i+1 < len(fields) {
			values = append(values, fields[i+1])
		}
	}

	return values
}
