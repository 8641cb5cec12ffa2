package linuxglobal

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

func writeExe(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o755))
}

func setupRoot(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("linux layout")
	}
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	usrBin := filepath.Join(root, "usr", "bin")
	writeExe(t, filepath.Join(usrBin, "python3.12"))
	require.NoError(t, os.Symlink("python3.12", filepath.Join(usrBin, "python3")))
	include := filepath.Join(root, "usr", "include", "python3.12")
	require.NoError(t, os.MkdirAll(include, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(include, "patchlevel.h"),
		[]byte("#define PY_VERSION \"3.12.3\"\n"), 0o644))

	writeExe(t, filepath.Join(root, "usr", "local", "bin", "python3.11"))

	// A user install linked into /usr/local/bin is not a global interpreter.
	writeExe(t, filepath.Join(root, "opt", "custom", "bin", "python3.10"))
	require.NoError(t, os.Symlink(filepath.Join(root, "opt", "custom", "bin", "python3.10"),
		filepath.Join(root, "usr", "local", "bin", "python3.10")))
	return root
}

func TestFind(t *testing.T) {
	root := setupRoot(t)
	locator := New(&core.StaticEnvironment{RootDir: root})
	locator.goos = "linux"

	collect := reporter.NewCollect()
	locator.Find(collect)
	envs := collect.Result().Environments
	require.Len(t, envs, 2)

	byExe := map[string]*core.PythonEnvironment{}
	for _, env := range envs {
		assert.Equal(t, core.KindLinuxGlobal, env.Kind)
		byExe[env.Executable] = env
	}
	system := byExe[filepath.Join(root, "usr", "bin", "python3")]
	require.NotNil(t, system)
	assert.Equal(t, "3.12.3", system.Version)
	assert.Equal(t, filepath.Join(root, "usr"), system.Prefix)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "usr", "bin", "python3"),
		filepath.Join(root, "usr", "bin", "python3.12"),
	}, system.Symlinks)

	local := byExe[filepath.Join(root, "usr", "local", "bin", "python3.11")]
	require.NotNil(t, local)
	assert.Empty(t, local.Version)
	assert.Equal(t, filepath.Join(root, "usr", "local"), local.Prefix)
}

func TestIdentify(t *testing.T) {
	root := setupRoot(t)
	locator := New(&core.StaticEnvironment{RootDir: root})
	locator.goos = "linux"

	env := locator.Identify(core.NewPythonEnv(filepath.Join(root, "usr", "bin", "python3.12"), "", ""))
	require.NotNil(t, env)
	assert.Equal(t, filepath.Join(root, "usr", "bin", "python3"), env.Executable)
	assert.Equal(t, "3.12.3", env.Version)

	assert.Nil(t, locator.Identify(core.NewPythonEnv(filepath.Join(root, "usr", "local", "bin", "python3.10"), "", "")))
	assert.Nil(t, locator.Identify(core.NewPythonEnv(filepath.Join(root, "opt", "custom", "bin", "python3.10"), "", "")))

	locator.goos = "darwin"
	assert.Nil(t, locator.Identify(core.NewPythonEnv(filepath.Join(root, "usr", "bin", "python3"), "", "")))
}
