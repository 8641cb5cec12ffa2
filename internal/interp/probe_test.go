package interp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/cache"
)

// fakePython writes a shell script that answers the probe like an
// interpreter installed at prefix would, logging each run to calls.
func fakePython(t *testing.T, prefix, version string) (exe, calls string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreters are shell scripts")
	}
	exe = filepath.Join(prefix, "bin", "python3")
	calls = filepath.Join(t.TempDir(), "calls")
	script := fmt.Sprintf(`#!/bin/sh
echo run >> %q
echo "site customization noise"
echo %s
echo '{"version": "%s", "sys_prefix": "%s", "executable": "%s", "is64_bit": true}'
`, calls, ProbeMarker, version, prefix, exe)
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0o755))
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))
	return exe, calls
}

func countRuns(t *testing.T, calls string) int {
	data, err := os.ReadFile(calls)
	if err != nil {
		return 0
	}
	return strings.Count(string(data), "run")
}

func TestParseProbeOutput(t *testing.T) {
	out := "hello\n" + ProbeMarker + "\n" +
		`{"version": "3.12.1.final.0", "sys_prefix": "/opt/py", "executable": "/opt/py/bin/python3.12", "is64_bit": false}` + "\n"

	resolved, err := ParseProbeOutput("/usr/local/bin/python3", out)
	require.NoError(t, err)
	assert.Equal(t, "/opt/py/bin/python3.12", resolved.Executable)
	assert.Equal(t, "/opt/py", resolved.Prefix)
	assert.Equal(t, "3.12.1.final.0", resolved.Version)
	assert.False(t, resolved.Is64Bit)
	assert.Equal(t, []string{"/usr/local/bin/python3"}, resolved.Symlinks)

	same, err := ParseProbeOutput("/opt/py/bin/python3.12", out)
	require.NoError(t, err)
	assert.Empty(t, same.Symlinks)
}

func TestParseProbeOutputFailsClosed(t *testing.T) {
	_, err := ParseProbeOutput("/x/python", "no marker here")
	assert.ErrorIs(t, err, ErrNoMarker)

	_, err = ParseProbeOutput("/x/python", ProbeMarker+"\nnot json")
	var spawnErr *SpawnError
	assert.True(t, errors.As(err, &spawnErr))

	_, err = ParseProbeOutput("/x/python", ProbeMarker+"\n{}")
	assert.Error(t, err)
}

func TestProbeUsesCache(t *testing.T) {
	prefix := t.TempDir()
	exe, calls := fakePython(t, prefix, "3.12.1.final.0")
	c := cache.New(t.TempDir())

	first, err := ProbeWith(c, exe)
	require.NoError(t, err)
	assert.Equal(t, prefix, first.Prefix)
	assert.True(t, first.Is64Bit)

	second, err := ProbeWith(c, exe)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, countRuns(t, calls))
}

func TestProbeReportsPythonException(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreters are shell scripts")
	}
	exe := filepath.Join(t.TempDir(), "python")
	script := `#!/bin/sh
echo 'Traceback (most recent call last):' >&2
echo '  File "<string>", line 1, in <module>' >&2
echo "ModuleNotFoundError: No module named 'json'" >&2
exit 1
`
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))

	_, err := ProbeWith(cache.New(""), exe)
	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Equal(t, "ModuleNotFoundError", spawnErr.Exception)
	assert.Equal(t, "No module named 'json'", spawnErr.Message)
	assert.Contains(t, spawnErr.Traceback, "line 1")
}
