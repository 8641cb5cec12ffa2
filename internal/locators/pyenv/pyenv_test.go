package pyenv

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

type fakeConda struct {
	dirs []string
}

func (f *fakeConda) FindIn(dir string) *core.LocatorResult {
	f.dirs = append(f.dirs, dir)
	return &core.LocatorResult{
		Managers:     []core.EnvManager{{Tool: core.ToolConda, Executable: filepath.Join(dir, "bin", "conda")}},
		Environments: []*core.PythonEnvironment{core.NewBuilder(core.KindConda).Prefix(dir).Build()},
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o755))
}

func setupPyenv(t *testing.T) (home, versions string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses the posix pyenv layout")
	}
	home = t.TempDir()
	root := filepath.Join(home, ".pyenv")
	versions = filepath.Join(root, "versions")

	cellar := filepath.Join(home, "Cellar", "pyenv", "2.4.0", "libexec", "pyenv")
	touch(t, cellar)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.Symlink(cellar, filepath.Join(root, "bin", "pyenv")))

	touch(t, filepath.Join(versions, "3.12.1", "bin", "python"))
	touch(t, filepath.Join(versions, "3.12.1", "bin", "python3.12"))
	touch(t, filepath.Join(versions, "3.13-dev", "bin", "python"))

	touch(t, filepath.Join(versions, "myenv", "bin", "python"))
	require.NoError(t, os.WriteFile(filepath.Join(versions, "myenv", "pyvenv.cfg"), []byte("version = 3.12.1\n"), 0o644))

	touch(t, filepath.Join(versions, "miniforge3", "bin", "python"))
	require.NoError(t, os.MkdirAll(filepath.Join(versions, "miniforge3", "conda-meta"), 0o755))
	return home, versions
}

func TestFind(t *testing.T) {
	home, versions := setupPyenv(t)
	finder := &fakeConda{}
	locator := New(&core.StaticEnvironment{Home: home, Vars: map[string]string{}}, finder)

	collect := reporter.NewCollect()
	locator.Find(collect)
	result := collect.Result()

	byPrefix := map[string]*core.PythonEnvironment{}
	for _, e := range result.Environments {
		byPrefix[e.Prefix] = e
	}
	require.Len(t, byPrefix, 4)

	pure := byPrefix[filepath.Join(versions, "3.12.1")]
	require.NotNil(t, pure)
	assert.Equal(t, core.KindPyenv, pure.Kind)
	assert.Equal(t, "3.12.1", pure.Version)
	assert.Contains(t, pure.Symlinks, filepath.Join(versions, "3.12.1", "bin", "python3.12"))
	require.NotNil(t, pure.Manager)
	assert.Equal(t, "2.4.0", pure.Manager.Version)

	assert.Equal(t, "3.13-dev", byPrefix[filepath.Join(versions, "3.13-dev")].Version)

	venv := byPrefix[filepath.Join(versions, "myenv")]
	require.NotNil(t, venv)
	assert.Equal(t, core.KindPyenvVirtualEnv, venv.Kind)
	assert.Equal(t, "myenv", venv.Name)

	assert.Equal(t, []string{filepath.Join(versions, "miniforge3")}, finder.dirs)
	assert.Equal(t, core.KindConda, byPrefix[filepath.Join(versions, "miniforge3")].Kind)

	tools := map[core.ManagerTool]int{}
	for _, m := range result.Managers {
		tools[m.Tool]++
	}
	assert.Equal(t, map[core.ManagerTool]int{core.ToolPyenv: 1, core.ToolConda: 1}, tools)
}

func TestIdentify(t *testing.T) {
	home, versions := setupPyenv(t)
	locator := New(&core.StaticEnvironment{Home: home, Vars: map[string]string{}}, nil)

	env := locator.Identify(&core.PythonEnv{Executable: filepath.Join(versions, "3.12.1", "bin", "python3.12")})
	require.NotNil(t, env)
	assert.Equal(t, core.KindPyenv, env.Kind)
	assert.Equal(t, filepath.Join(versions, "3.12.1"), env.Prefix)
	assert.Equal(t, filepath.Join(versions, "3.12.1", "bin", "python"), env.Executable)

	assert.Nil(t, locator.Identify(&core.PythonEnv{Executable: filepath.Join(versions, "miniforge3", "bin", "python")}),
		"conda installs are left to the conda locator")
	assert.Nil(t, locator.Identify(&core.PythonEnv{Executable: "/usr/bin/python3"}))
}

func TestPyenvRootOverride(t *testing.T) {
	_, versions := setupPyenv(t)
	env := &core.StaticEnvironment{Home: t.TempDir(), Vars: map[string]string{"PYENV_ROOT": filepath.Dir(versions)}}

	info := New(env, nil).Info()
	assert.Equal(t, versions, info.Versions)
	assert.Equal(t, "2.4.0", info.Version)
}

func TestVersionFromFolder(t *testing.T) {
	assert.Equal(t, "3.10.10", versionFromFolder("3.10.10"))
	assert.Equal(t, "3.10-dev", versionFromFolder("3.10-dev"))
	assert.Equal(t, "3.10.0a3", versionFromFolder("3.10.0a3"))
	assert.Equal(t, "3.11.0a1", versionFromFolder("3.11.0a1-win32"))
	assert.Empty(t, versionFromFolder("pypy3.10-7.3.15"))
}
