package escape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/logmake/pkg/escape"
)

func TestMakeTarget_Space(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `/tmp/My\ App.o`, escape.MakeTarget("/tmp/My App.o"))
}

func TestMakeTarget_DollarAndAmpersand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a$$b\&c`, escape.MakeTarget("a$b&c"))
}

func TestMakeTarget_PlainPathUnchanged(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/usr/lib/libfoo.o", escape.MakeTarget("/usr/lib/libfoo.o"))
}

func TestShell_Metacharacters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `\(a\)\ \#\&\$`, escape.Shell("(a) #&$"))
}

func TestShell_RoundTrip(t *testing.T) {
	t.Parallel()

	paths := []string{
		"/tmp/My App/file.o",
		"/tmp/(parens)/x",
		"money$bag",
		"/plain/path.o",
	}
	for _, p := range paths {
		assert.Equal(t, p, escape.UnescapeShell(escape.Shell(p)), p)
	}
}

func TestUnescapeShell_CompilerQuotedSpace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/tmp/My App.o", escape.UnescapeShell(`/tmp/My\ App.o`))
}

func TestDollar_DoublesEveryDollar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "echo $$PATH $$x", escape.Dollar("echo $PATH $x"))
}

func TestDollar_OnlyDollars(t *testing.T) {
	t.Parallel()

	line := `cc -o out\ put.o in.c # comment & (group)`
	assert.Equal(t, line, escape.Dollar(line))
}
