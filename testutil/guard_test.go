package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		in                 string
		internal, commands bool
	}{
		{"hospitalcore/internal/core", true, false},
		{"example.com/mod/internal/x", true, false},
		{"hospitalcore/internalx", false, false},
		{"hospitalcore/cmd/hospitalctl", false, true},
		{"hospitalcore/pkg/domain", false, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.internal, InternalImportForbidden(c.in), c.in)
		assert.Equal(t, c.commands, CommandImportForbidden(c.in), c.in)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	src := "package tmp\n\nimport (\n\t\"fmt\"\n\t\"hospitalcore/internal/core\"\n)\n\nvar _ = fmt.Sprint\nvar _ core.Service\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.go"), []byte(src), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package tmp\n\nimport _ \"hospitalcore/cmd/hospitalctl\"\n"), 0o600))

	viols, err := directImportViolations(dir, InternalImportForbidden)
	require.NoError(t, err)
	assert.Equal(t, []string{"hospitalcore/internal/core (in x.go)"}, viols)

	viols, err = directImportViolations(dir, CommandImportForbidden)
	require.NoError(t, err)
	assert.Empty(t, viols)
}

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestFailIfViolations(t *testing.T) {
	rec := &recordingFatal{}
	failIfViolations(rec, "forbidden imports detected", "layering", nil)
	assert.Empty(t, rec.msg)

	failIfViolations(rec, "forbidden imports detected", "layering", []string{"a -> b", "c -> d"})
	assert.Equal(t, "forbidden imports detected (layering):\na -> b\nc -> d", rec.msg)
}

func TestAssertNoImportsOnThisPackage(t *testing.T) {
	AssertNoImports(t, ModulePath+"/testutil", nil, InternalImportForbidden, "testutil stays standalone")
}
