package virtualenvwrapper

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

func makeWrapperEnv(t *testing.T, workon, name, project string) string {
	t.Helper()
	prefix := filepath.Join(workon, name)
	bin := filepath.Join(prefix, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python"), nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "activate"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "pyvenv.cfg"), []byte("version = 3.11.4\n"), 0o644))
	if project != "" {
		require.NoError(t, os.WriteFile(filepath.Join(prefix, ".project"), []byte(project+"\n"), 0o644))
	}
	return prefix
}

func TestFindUnderWorkOnHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses the posix layout")
	}
	workon, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	project := t.TempDir()
	prefix := makeWrapperEnv(t, workon, "proj", project)
	makeWrapperEnv(t, workon, "stale", "/project/that/was/removed")
	require.NoError(t, os.MkdirAll(filepath.Join(workon, "not-an-env"), 0o755))

	locator := New(&core.StaticEnvironment{Vars: map[string]string{"WORKON_HOME": workon}})
	collect := reporter.NewCollect()
	locator.Find(collect)

	envs := collect.Result().Environments
	require.Len(t, envs, 2)
	byName := map[string]*core.PythonEnvironment{}
	for _, e := range envs {
		byName[e.Name] = e
	}
	proj := byName["proj"]
	require.NotNil(t, proj)
	assert.Equal(t, core.KindVirtualEnvWrapper, proj.Kind)
	assert.Equal(t, prefix, proj.Prefix)
	assert.Equal(t, "3.11.4", proj.Version)
	assert.Equal(t, project, proj.Project)
	assert.Empty(t, byName["stale"].Project)
}

func TestIdentifyRequiresWorkOnHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses the posix layout")
	}
	elsewhere := t.TempDir()
	prefix := makeWrapperEnv(t, elsewhere, "venv", "")
	locator := New(&core.StaticEnvironment{Home: t.TempDir()})

	env := core.NewPythonEnv(filepath.Join(prefix, "bin", "python"), prefix, "")
	assert.Nil(t, locator.Identify(env))
}

func TestDefaultWorkOnHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("default differs on windows")
	}
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".virtualenvs"), 0o755))
	assert.Equal(t, filepath.Join(home, ".virtualenvs"), WorkOnHome(&core.StaticEnvironment{Home: home}))
}
