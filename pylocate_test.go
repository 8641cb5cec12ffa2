package pylocate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
)

// sandbox is a fake machine rooted in a temp dir.
type sandbox struct {
	root string
	home string
	env  *core.StaticEnvironment
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreters are shell scripts")
	}
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	home := filepath.Join(root, "home")
	require.NoError(t, os.MkdirAll(home, 0o755))
	return &sandbox{
		root: root,
		home: home,
		env:  &core.StaticEnvironment{Home: home, RootDir: root, Vars: map[string]string{}},
	}
}

// fakeInterpreter writes bin/python under prefix as a script answering the
// probe with version, plus a bin/python3 symlink to it.
func fakeInterpreter(t *testing.T, prefix, version string) string {
	t.Helper()
	exe := filepath.Join(prefix, "bin", "python")
	script := fmt.Sprintf(`#!/bin/sh
echo %s
echo '{"version": "%s", "sys_prefix": "%s", "executable": "%s", "is64_bit": true}'
`, interp.ProbeMarker, version, prefix, exe)
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0o755))
	require.NoError(t, os.WriteFile(exe, []byte(script), 0o755))
	require.NoError(t, os.Symlink("python", filepath.Join(prefix, "bin", "python3")))
	return exe
}

// makeVenv creates a venv at prefix whose pyvenv.cfg claims cfgVersion and
// whose interpreter answers with version.
func makeVenv(t *testing.T, prefix, cfgVersion, version string) string {
	t.Helper()
	exe := fakeInterpreter(t, prefix, version)
	cfg := fmt.Sprintf("home = /usr/bin\ninclude-system-site-packages = false\nversion = %s\n", cfgVersion)
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "pyvenv.cfg"), []byte(cfg), 0o644))
	return exe
}
