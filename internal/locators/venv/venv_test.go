package venv

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
)

func makeVenv(t *testing.T, cfg string) (prefix, exe string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses the posix layout")
	}
	prefix = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "bin"), 0o755))
	exe = filepath.Join(prefix, "bin", "python")
	require.NoError(t, os.WriteFile(exe, nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "bin", "python3"), nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "pyvenv.cfg"), []byte(cfg), 0o644))
	return prefix, exe
}

func TestIdentifyVenv(t *testing.T) {
	prefix, exe := makeVenv(t, "home = /usr/bin\nversion = 3.12.1\nprompt = 'demo'\n")

	env := New().Identify(core.NewPythonEnv(exe, "", ""))
	require.NotNil(t, env)
	assert.Equal(t, core.KindVenv, env.Kind)
	assert.Equal(t, "demo", env.Name)
	assert.Equal(t, "3.12.1", env.Version)
	assert.Equal(t, prefix, env.Prefix)
	assert.Equal(t, exe, env.Executable)
	assert.Contains(t, env.Symlinks, filepath.Join(prefix, "bin", "python3"))
}

func TestIdentifyWithoutCfg(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "bin", "python")
	assert.Nil(t, New().Identify(&core.PythonEnv{Executable: exe}))
	assert.False(t, IsVenvDir(dir))
}

func TestCallerVersionWins(t *testing.T) {
	_, exe := makeVenv(t, "version = 3.12.1\n")
	env := New().Identify(&core.PythonEnv{Executable: exe, Version: "3.12.2"})
	require.NotNil(t, env)
	assert.Equal(t, "3.12.2", env.Version)
}
