package translator_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/logmake/internal/translator"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func translate(t *testing.T, log string) *translator.Result {
	t.Helper()

	logPath := writeFile(t, t.TempDir(), "build.log", log)

	res, err := translator.Translate(logPath, translator.Options{
		Invocation: "xcodebuild -scheme App build",
		Version:    "test",
	})
	require.NoError(t, err)

	return res
}

func TestTranslate_LogUnreadable(t *testing.T) {
	t.Parallel()

	_, err := translator.Translate(filepath.Join(t.TempDir(), "absent.log"), translator.Options{})
	require.ErrorIs(t, err, translator.ErrLogUnreadable)
}

func TestTranslate_CompileCRule(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileC /tmp/build/a.o /src/a.c normal arm64 c com.apple.compilers.llvm.clang.1_0.compiler",
		"    cd /src/proj",
		"    /usr/bin/clang -x c -c /src/a.c -o /tmp/build/a.o",
		"",
	}, "\n"))

	assert.Equal(t, 1, res.Rules)
	assert.Contains(t, res.Text, "\n/tmp/build/a.o: /src/a.c\n")
	assert.Contains(t, res.Text,
		"\tcd /src/proj && /usr/bin/clang -x c -c /src/a.c -o /tmp/build/a.o && touch /tmp/build/a.o\n")
	assert.Empty(t, res.Diags)
}

func TestTranslate_CompileCEscapedPaths(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		`CompileC /tmp/My\ App.o /src/My\ File.c normal arm64 c compiler`,
		"    cd /src/proj",
		"    /usr/bin/clang -c ...",
		"",
	}, "\n"))

	assert.Contains(t, res.Text, `/tmp/My\ App.o: /src/My\ File.c`)
	assert.Contains(t, res.Text, `touch /tmp/My\ App.o`)
}

func TestTranslate_HeaderFingerprint(t *testing.T) {
	t.Parallel()

	res := translate(t, "")

	assert.Contains(t, res.Text, "# invocation: xcodebuild -scheme App build\n")
	assert.NotContains(t, res.Text, "# captured:")
}

func TestTranslate_HeaderOmitsEmptyInvocation(t *testing.T) {
	t.Parallel()

	logPath := writeFile(t, t.TempDir(), "build.log", "")

	res, err := translator.Translate(logPath, translator.Options{Version: "test"})
	require.NoError(t, err)

	assert.NotContains(t, res.Text, "# invocation:")
}

func TestTranslate_UnclassifiedLinesBecomeComments(t *testing.T) {
	t.Parallel()

	res := translate(t, "Build settings from command line:\n\nARCHS = arm64\n")

	assert.Contains(t, res.Text, "# Build settings from command line:\n")
	assert.Contains(t, res.Text, "#\n")
	assert.Contains(t, res.Text, "# ARCHS = arm64\n")
}

func TestTranslate_Determinism(t *testing.T) {
	t.Parallel()

	log := strings.Join([]string{
		"CompileC /tmp/a.o /src/a.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c a.c",
		"noise line",
		"",
	}, "\n")
	logPath := writeFile(t, t.TempDir(), "build.log", log)
	opts := translator.Options{Invocation: "xcodebuild build", Version: "test"}

	first, err := translator.Translate(logPath, opts)
	require.NoError(t, err)

	second, err := translator.Translate(logPath, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
}

func TestTranslate_IdempotentTargetRegistration(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileC /tmp/dup.o /src/first.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c first.c",
		"CompileC /tmp/dup.o /src/second.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c second.c",
		"",
	}, "\n"))

	assert.Equal(t, 1, res.Rules)
	assert.Equal(t, 1, strings.Count(res.Text, "/tmp/dup.o:"))
	assert.Contains(t, res.Text, "/tmp/dup.o: /src/first.c")
	assert.NotContains(t, res.Text, "second.c && touch")
}

func TestTranslate_SkipAndContinue(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileC /tmp/x.o /src/x.c normal arm64 c compiler",
		"    export LANG=C",
		"CompileC /tmp/y.o /src/y.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c y.c",
		"",
	}, "\n"))

	assert.Equal(t, 1, res.Rules)
	assert.NotContains(t, res.Text, "/tmp/x.o:")
	assert.Contains(t, res.Text, "/tmp/y.o: /src/y.c")
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Message, "directory-change")
}

func TestTranslate_SwiftDriverEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := writeFile(t, dir, "map.json", `{
		"": {"swift-dependencies": "/tmp/master.swiftdeps"},
		"/src/b.swift": {"object": "/tmp/b.o"},
		"/src/a.swift": {"object": "/tmp/a.o"}
	}`)

	log := strings.Join([]string{
		`SwiftDriver\ Compilation App normal arm64 com.apple.xcode.tools.swift.compiler`,
		"    cd /src/proj",
		"    builtin-Swift-Compilation -- /usr/bin/swiftc -parseable-output -output-file-map " +
			mapPath + " -module-name App /src/a.swift /src/b.swift",
		"",
	}, "\n")

	res := translate(t, log)

	assert.Equal(t, 2, res.Rules)
	assert.Contains(t, res.Text, "\n/tmp/a.o: /src/a.swift\n")
	assert.Contains(t, res.Text, "\n/tmp/b.o: /src/b.swift\n")

	// Shared invocation, parseable-output stripped, per-rule touch.
	assert.Contains(t, res.Text, "cd /src/proj && /usr/bin/swiftc -output-file-map "+
		mapPath+" -module-name App /src/a.swift /src/b.swift && touch /tmp/a.o")
	assert.Contains(t, res.Text, "&& touch /tmp/b.o")
	assert.NotContains(t, res.Text, "-parseable-output")

	// Sorted by source path: a.o's rule precedes b.o's.
	assert.Less(t, strings.Index(res.Text, "/tmp/a.o:"), strings.Index(res.Text, "/tmp/b.o:"))
}

func TestTranslate_SwiftDriverMissingMapSkipsStep(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		`SwiftDriver\ Compilation App normal arm64 compiler`,
		"    cd /src/proj",
		"    builtin-Swift-Compilation -- /usr/bin/swiftc -output-file-map /nonexistent/map.json a.swift",
		"",
	}, "\n"))

	assert.Zero(t, res.Rules)
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Message, "output file map")
}

func TestTranslate_SwiftDriverInvalidMapSkipsStep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := writeFile(t, dir, "map.json", `["not", "a", "mapping"]`)

	res := translate(t, strings.Join([]string{
		`SwiftDriver\ Compilation App normal arm64 compiler`,
		"    cd /src/proj",
		"    builtin-Swift-Compilation -- /usr/bin/swiftc -output-file-map " + mapPath + " a.swift",
		"",
	}, "\n"))

	assert.Zero(t, res.Rules)
	require.Len(t, res.Diags, 1)
}

func TestTranslate_SwiftDriverStatusLinesStayUnclassified(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"SwiftDriverJobDiscovery normal arm64 Compiling a.swift (in target 'App' from project 'App')",
		"CompileC /tmp/a.o /src/a.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c a.c",
		"",
	}, "\n"))

	// The discovery line is chatter; it must not consume the step that follows.
	assert.Equal(t, 1, res.Rules)
	assert.Contains(t, res.Text, "# SwiftDriverJobDiscovery")
	assert.Contains(t, res.Text, "\n/tmp/a.o: /src/a.c\n")
	assert.Empty(t, res.Diags)
	assert.Zero(t, res.StepCounts[translator.StepSwiftDriver])
}

func TestTranslate_SwiftCompilePerFilePairs(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileSwift normal arm64 /src/a.swift",
		"    cd /src/proj",
		"    /usr/bin/swift-frontend -frontend -c -primary-file /src/a.swift -primary-file /src/b.swift -o /tmp/a.o -o /tmp/b.o -module-name App",
		"",
	}, "\n"))

	assert.Equal(t, 2, res.Rules)
	assert.Contains(t, res.Text, "\n/tmp/a.o: /src/a.swift\n")
	assert.Contains(t, res.Text, "\n/tmp/b.o: /src/b.swift\n")
}

func TestTranslate_SwiftCompileMismatchedPairsSkipsStep(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileSwift normal arm64 /src/a.swift",
		"    cd /src/proj",
		"    /usr/bin/swift-frontend -frontend -c -primary-file /src/a.swift -primary-file /src/b.swift -o /tmp/a.o",
		"",
	}, "\n"))

	assert.Zero(t, res.Rules)
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Message, "mismatched")
}

func TestTranslate_LinkPrerequisiteFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filelist := writeFile(t, dir, "App.LinkFileList",
		"/tmp/known.o\n/ext/unknown.o\n/note/readme.txt\n")

	res := translate(t, strings.Join([]string{
		"CompileC /tmp/known.o /src/known.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c known.c",
		"Ld /tmp/App normal",
		"    cd /src",
		"    /usr/bin/clang -o /tmp/App -filelist " + filelist,
		"",
	}, "\n"))

	assert.Contains(t, res.Text, "\n/tmp/App: /tmp/known.o /ext/unknown.o\n")
	assert.NotContains(t, res.Text, "readme.txt")
	assert.Contains(t, res.Text, "\tcd /src && /usr/bin/clang -o /tmp/App -filelist "+filelist+"\n")
}

func TestTranslate_LinkWithoutFilelist(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"Ld /tmp/App normal",
		"    cd /src",
		"    /usr/bin/clang -o /tmp/App crt.o",
		"",
	}, "\n"))

	assert.Equal(t, 1, res.Rules)
	assert.Contains(t, res.Text, "\n/tmp/App:\n")
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Message, "-filelist")
}

func TestTranslate_TerminalAggregate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	appList := writeFile(t, dir, "App.LinkFileList", "/tmp/a.o\n")
	objList := writeFile(t, dir, "Combined.LinkFileList", "/tmp/a.o\n")

	res := translate(t, strings.Join([]string{
		"Ld /tmp/App normal",
		"    cd /src",
		"    /usr/bin/clang -o /tmp/App -filelist " + appList,
		"Ld /tmp/libX.o normal",
		"    cd /src",
		"    /usr/bin/ld -r -o /tmp/libX.o -filelist " + objList,
		"/usr/bin/codesign --force --sign - /tmp/App",
		"/usr/bin/touch -c /tmp/App",
		"",
	}, "\n"))

	// Only the executable is a linked product; the .o output is filtered.
	assert.Contains(t, res.Text, "\nmain: /tmp/App\n")
	assert.NotContains(t, res.Text, "main: /tmp/App /tmp/libX.o")

	assert.Contains(t, res.Text, "\t/usr/bin/codesign --force --sign - /tmp/App\n")
	assert.Contains(t, res.Text, "\t/usr/bin/touch -c /tmp/App\n")
}

func TestTranslate_TerminalRuleAlwaysPresent(t *testing.T) {
	t.Parallel()

	res := translate(t, "nothing to see here\n")

	assert.Contains(t, res.Text, "\nmain:\n")
}

func TestTranslate_StepCounts(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileC /tmp/a.o /src/a.c normal arm64 c compiler",
		"    cd /src",
		"    clang -c a.c",
		"/usr/bin/codesign --sign - /tmp/App",
		"",
	}, "\n"))

	assert.Equal(t, 1, res.StepCounts[translator.StepCompileC])
	assert.Equal(t, 1, res.StepCounts[translator.StepCodesign])
	assert.Zero(t, res.StepCounts[translator.StepLink])
}

func TestTranslate_DollarEscapingInRecipes(t *testing.T) {
	t.Parallel()

	res := translate(t, strings.Join([]string{
		"CompileC /tmp/a.o /src/a.c normal arm64 c compiler",
		"    cd /src",
		"    clang -DVALUE=$HOME -c a.c",
		"/usr/bin/codesign --entitlements $TMP/e.plist /tmp/App",
		"",
	}, "\n"))

	assert.Contains(t, res.Text, "clang -DVALUE=$$HOME -c a.c")
	assert.Contains(t, res.Text, "--entitlements $$TMP/e.plist")
}
