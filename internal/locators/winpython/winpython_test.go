package winpython

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
	"github.com/richinsley/pylocate/internal/reporter"
)

func install(t *testing.T, dir, folder string) string {
	t.Helper()
	exe := filepath.Join(dir, folder, "python.exe")
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0o755))
	require.NoError(t, os.WriteFile(exe, nil, 0o755))
	return exe
}

func TestFind(t *testing.T) {
	home := t.TempDir()
	named := install(t, filepath.Join(home, "Downloads", "WPy64-31300"), "python-3.13.0.amd64")
	marked := install(t, filepath.Join(home, "WinPython", "portable"), "python-3.10.5")
	require.NoError(t, os.WriteFile(filepath.Join(home, "WinPython", "portable", "winpython.ini"), nil, 0o644))
	install(t, filepath.Join(home, "Documents", "project"), "python-3.11.0")

	locator := New(&core.StaticEnvironment{Home: home, RootDir: t.TempDir()})
	locator.goos = "windows"
	collect := reporter.NewCollect()
	locator.Find(collect)

	envs := collect.Result().Environments
	require.Len(t, envs, 2)
	byVersion := map[string]*core.PythonEnvironment{}
	for _, e := range envs {
		assert.Equal(t, core.KindWinPython, e.Kind)
		byVersion[e.Version] = e
	}
	require.Contains(t, byVersion, "3.13.0")
	assert.Equal(t, "WinPython 3.13.0", byVersion["3.13.0"].DisplayName)
	assert.Equal(t, core.ArchX64, byVersion["3.13.0"].Arch)
	assert.Equal(t, filepath.Dir(named), byVersion["3.13.0"].Prefix)
	assert.Contains(t, byVersion["3.13.0"].Symlinks, pathutil.NormCase(named))

	require.Contains(t, byVersion, "3.10.5")
	assert.Equal(t, filepath.Dir(marked), byVersion["3.10.5"].Prefix)
	assert.Empty(t, byVersion["3.10.5"].Arch)
}

func TestIdentifyFromScripts(t *testing.T) {
	root := filepath.Join(t.TempDir(), "WPy32-3900")
	install(t, root, "python-3.9.0.win32")
	scripts := filepath.Join(root, "python-3.9.0.win32", "Scripts", "python.exe")
	require.NoError(t, os.MkdirAll(filepath.Dir(scripts), 0o755))
	require.NoError(t, os.WriteFile(scripts, nil, 0o755))

	locator := New(&core.StaticEnvironment{})
	locator.goos = "windows"
	found := locator.Identify(&core.PythonEnv{Executable: scripts})
	require.NotNil(t, found)
	assert.Equal(t, "3.9.0", found.Version)
	assert.Equal(t, core.ArchX86, found.Arch)
}

func TestIdentifyElsewhere(t *testing.T) {
	exe := install(t, t.TempDir(), "python-3.12.1")
	locator := New(&core.StaticEnvironment{})
	locator.goos = "windows"
	assert.Nil(t, locator.Identify(&core.PythonEnv{Executable: exe}))

	locator.goos = "linux"
	assert.Nil(t, locator.Identify(&core.PythonEnv{Executable: exe}))
}

func TestNames(t *testing.T) {
	for _, name := range []string{"WPy64-31300", "WPy32-3900", "WPy-31100", "WPy64-31300Qt5", "wpy64-31300"} {
		assert.True(t, distDir.MatchString(name), name)
	}
	for _, name := range []string{"Python", "python-3.13.0", "random-folder"} {
		assert.False(t, distDir.MatchString(name), name)
	}
	for _, name := range []string{"python-3.13.0.amd64", "python-3.9.0", "Python-3.8.0.win32"} {
		assert.True(t, pythonDir.MatchString(name), name)
	}
	for _, name := range []string{"python", "python3", "WPy64-31300"} {
		assert.False(t, pythonDir.MatchString(name), name)
	}
}
