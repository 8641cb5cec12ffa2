package pipenv

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

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses the posix layout")
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

func makeVenv(t *testing.T, prefix string) string {
	t.Helper()
	exe := filepath.Join(prefix, "bin", "python")
	write(t, exe, "")
	write(t, filepath.Join(prefix, "pyvenv.cfg"), "version = 3.12.0\n")
	return exe
}

func TestProjectForVenvInProject(t *testing.T) {
	skipOnWindows(t)
	project := t.TempDir()
	write(t, filepath.Join(project, "Pipfile"), "[[source]]\n")
	exe := makeVenv(t, filepath.Join(project, ".venv"))

	locator := New(&core.StaticEnvironment{})
	env := locator.Identify(&core.PythonEnv{Executable: exe, Prefix: filepath.Join(project, ".venv")})
	require.NotNil(t, env)
	assert.Equal(t, core.KindPipenv, env.Kind)
	assert.Equal(t, project, env.Project)
	assert.Equal(t, filepath.Join(project, ".venv"), env.Prefix)
}

func TestCentralizedEnvironment(t *testing.T) {
	skipOnWindows(t)
	home := t.TempDir()
	project := filepath.Join(home, "projects", "myproject")
	write(t, filepath.Join(project, "Pipfile"), "[[source]]\n")

	prefix := filepath.Join(home, ".local", "share", "virtualenvs", "myproject-Abc123XyZ")
	exe := makeVenv(t, prefix)
	write(t, filepath.Join(prefix, ".project"), project)

	locator := New(&core.StaticEnvironment{Home: home})
	env := locator.Identify(&core.PythonEnv{Executable: exe, Prefix: prefix})
	require.NotNil(t, env)
	assert.Equal(t, project, env.Project)
}

func TestCentralizedEnvironmentWithDeletedProject(t *testing.T) {
	skipOnWindows(t)
	home := t.TempDir()
	prefix := filepath.Join(home, ".local", "share", "virtualenvs", "deleted-project-Xyz789")
	exe := makeVenv(t, prefix)
	write(t, filepath.Join(prefix, ".project"), "/path/to/deleted/project")

	locator := New(&core.StaticEnvironment{Home: home})
	env := locator.Identify(&core.PythonEnv{Executable: exe})
	require.NotNil(t, env, "centralized folder plus .project is enough")
	assert.Equal(t, prefix, env.Prefix)
	assert.Equal(t, "/path/to/deleted/project", env.Project)
}

func TestPlainVenvIsNotPipenv(t *testing.T) {
	skipOnWindows(t)
	exe := makeVenv(t, filepath.Join(t.TempDir(), ".venv"))
	assert.Nil(t, New(&core.StaticEnvironment{Home: t.TempDir()}).Identify(&core.PythonEnv{Executable: exe}))
}

func TestFind(t *testing.T) {
	skipOnWindows(t)
	home := t.TempDir()
	project := filepath.Join(home, "work", "app")
	write(t, filepath.Join(project, "Pipfile"), "")
	virtualenvs := filepath.Join(home, ".local", "share", "virtualenvs")

	good := filepath.Join(virtualenvs, "app-Q1w2E3r4")
	makeVenv(t, good)
	write(t, filepath.Join(good, ".project"), project)

	orphan := filepath.Join(virtualenvs, "gone-Z9x8C7v6")
	makeVenv(t, orphan)
	write(t, filepath.Join(orphan, ".project"), filepath.Join(home, "work", "gone"))

	bin := filepath.Join(home, "tools")
	write(t, filepath.Join(bin, "pipenv"), "#!/bin/sh\n")

	locator := New(&core.StaticEnvironment{Home: home, Vars: map[string]string{"PATH": bin}})
	collect := reporter.NewCollect()
	locator.Find(collect)
	result := collect.Result()

	require.Len(t, result.Environments, 1)
	assert.Equal(t, good, result.Environments[0].Prefix)
	assert.Equal(t, project, result.Environments[0].Project)
	require.Len(t, result.Managers, 1)
	assert.Equal(t, core.ToolPipenv, result.Managers[0].Tool)
	assert.Equal(t, filepath.Join(bin, "pipenv"), result.Managers[0].Executable)
}

func TestConfiguredManagerWins(t *testing.T) {
	skipOnWindows(t)
	exe := filepath.Join(t.TempDir(), "pipenv")
	write(t, exe, "")
	locator := New(&core.StaticEnvironment{})
	locator.Configure(&core.Configuration{PipenvExecutable: exe})

	collect := reporter.NewCollect()
	locator.Find(collect)
	require.Len(t, collect.Result().Managers, 1)
	assert.Equal(t, exe, collect.Result().Managers[0].Executable)
}
