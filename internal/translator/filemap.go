package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Option and suffix constants for the Swift driver record format.
const (
	outputFileMapFlag   = "-output-file-map"
	parseableOutputFlag = "-parseable-output"
	driverSeparator     = " -- "
	swiftSuffix         = ".swift"
)

// Sentinel errors for output-file-map resolution.
var (
	ErrNoOutputFileMap = errors.New("no -output-file-map option in driver invocation")
	ErrInvalidFileMap  = errors.New("output file map does not match the expected shape")
	ErrUnreadableMap   = errors.New("cannot read output file map")
	ErrUnparsableMap   = errors.New("cannot parse output file map")
)

// outputFileMapSchema describes the side-channel JSON document the Swift
// driver writes: a mapping from source path to a per-file artifact record
// with an optional object path. The empty source key holds module-level
// artifacts and carries no object.
const outputFileMapSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"properties": {
			"object": {"type": "string"}
		}
	}
}`

// mapEntry is the per-source artifact record of an output file map. Only
// the object path matters to rule generation.
type mapEntry struct {
	Object string `json:"object"`
}

// actualInvocation strips the driver-marker prefix (everything up to the
// `--` separator) and the parseable-output flag from a captured driver
// line, yielding the compiler invocation worth replaying in a recipe.
func actualInvocation(driverLine string) string {
	inv := driverLine
	if idx := strings.Index(inv, driverSeparator); idx >= 0 {
		inv = inv[idx+len(driverSeparator):]
	}

	// Drop the flag only where it stands as its own field; a path token
	// merely containing the text must survive intact.
	fields := splitFields(inv)
	kept := make([]string, 0, len(fields))

	for _, field := range fields {
		if field != parseableOutputFlag {
			kept = append(kept, field)
		}
	}

	return strings.Join(kept, " ")
}

// findOutputFileMap locates the output-file-map path, searching the full
// driver line first and the stripped invocation as a fallback.
func findOutputFileMap(driverLine, invocation string) (string, error) {
	if path, ok := optionValue(driverLine, outputFileMapFlag); ok {
		return path, nil
	}

	if path, ok := optionValue(invocation, outputFileMapFlag); ok {
		return path, nil
	}

	return "", ErrNoOutputFileMap
}

// loadOutputFileMap reads, validates, and decodes the JSON map document.
func loadOutputFileMap(path string) (map[string]mapEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableMap, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(outputFileMapSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableMap, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileMap, result.Errors()[0])
	}

	var entries map[string]mapEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableMap, err)
	}

	return entries, nil
}

// sortedSources returns the map's Swift source paths that carry an object
// artifact, sorted so rule emission is repeatable across runs.
func sortedSources(entries map[string]mapEntry) []string {
	sources := make([]string, 0, len(entries))

	for src, entry := range entries {
		if strings.HasSuffix(src, swiftSuffix) && entry.Object != "" {
			sources = append(sources, src)
		}
	}

	sort.Strings(sources)

	return sources
}
