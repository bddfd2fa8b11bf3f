package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActualInvocation_StripsDriverMarkerAndFlag(t *testing.T) {
	t.Parallel()

	line := "builtin-Swift-Compilation -- /usr/bin/swiftc -parseable-output -output-file-map /tmp/map.json a.swift"

	assert.Equal(t,
		"/usr/bin/swiftc -output-file-map /tmp/map.json a.swift",
		actualInvocation(line))
}

func TestActualInvocation_NoSeparator(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/usr/bin/swiftc a.swift", actualInvocation("/usr/bin/swiftc a.swift"))
}

func TestActualInvocation_KeepsPathContainingFlagText(t *testing.T) {
	t.Parallel()

	// A path token with an escaped space around the flag text is not the
	// flag itself and must come through untouched.
	line := `/usr/bin/swiftc -parseable-output -module-name App /src/a\ -parseable-output.swift`

	assert.Equal(t,
		`/usr/bin/swiftc -module-name App /src/a\ -parseable-output.swift`,
		actualInvocation(line))
}

func TestFindOutputFileMap_Absent(t *testing.T) {
	t.Parallel()

	_, err := findOutputFileMap("swiftc a.swift", "swiftc a.swift")
	assert.ErrorIs(t, err, ErrNoOutputFileMap)
}
