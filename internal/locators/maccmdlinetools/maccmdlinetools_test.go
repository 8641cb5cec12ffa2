package maccmdlinetools

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/reporter"
)

func setupTools(t *testing.T) (root, exe, real string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	prefix := filepath.Join(root, "Library", "Developer", "CommandLineTools", "Library", "Frameworks",
		"Python3.framework", "Versions", "3.9")
	real = filepath.Join(prefix, "bin", "python3.9")
	require.NoError(t, os.MkdirAll(filepath.Dir(real), 0o755))
	require.NoError(t, os.WriteFile(real, nil, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "include", "python3.9"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "include", "python3.9", "patchlevel.h"),
		[]byte("#define PY_VERSION \"3.9.6\"\n"), 0o644))

	bin := filepath.Join(root, "Library", "Developer", "CommandLineTools", "usr", "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	exe = filepath.Join(bin, "python3")
	require.NoError(t, os.Symlink(real, exe))
	return root, exe, real
}

func TestFind(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks")
	}
	root, exe, real := setupTools(t)
	locator := New(&core.StaticEnvironment{RootDir: root})
	locator.goos = "darwin"

	collect := reporter.NewCollect()
	locator.Find(collect)
	envs := collect.Result().Environments
	require.Len(t, envs, 1)
	env := envs[0]
	assert.Equal(t, core.KindMacCommandLineTools, env.Kind)
	assert.Equal(t, exe, env.Executable)
	assert.Equal(t, "3.9.6", env.Version)
	assert.Equal(t, filepath.Dir(filepath.Dir(real)), env.Prefix)
	assert.ElementsMatch(t, []string{exe, real}, env.Symlinks)
}

func TestIdentifyOutsideTools(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks")
	}
	root, exe, _ := setupTools(t)
	locator := New(&core.StaticEnvironment{RootDir: root})
	locator.goos = "darwin"
	assert.Nil(t, locator.Identify(core.NewPythonEnv(filepath.Join(root, "usr", "bin", "python3"), "", "")))

	locator.goos = "linux"
	assert.Nil(t, locator.Identify(core.NewPythonEnv(exe, "", "")))
}
