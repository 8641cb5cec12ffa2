package homebrew

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

func fakeBrew(t *testing.T) (root, real string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("homebrew does not exist on windows")
	}
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	real = filepath.Join(root, "opt", "homebrew", "Cellar", "python@3.12", "3.12.3",
		"Frameworks", "Python.framework", "Versions", "3.12", "bin", "python3.12")
	require.NoError(t, os.MkdirAll(filepath.Dir(real), 0o755))
	require.NoError(t, os.WriteFile(real, nil, 0o755))

	bin := filepath.Join(root, "opt", "homebrew", "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.Symlink(real, filepath.Join(bin, "python3.12")))
	require.NoError(t, os.Symlink(real, filepath.Join(bin, "python3")))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python3.11"), nil, 0o755))
	return root, real
}

func TestFind(t *testing.T) {
	root, real := fakeBrew(t)
	bin := filepath.Join(root, "opt", "homebrew", "bin")

	collect := reporter.NewCollect()
	New(&core.StaticEnvironment{RootDir: root}).Find(collect)

	envs := collect.Result().Environments
	require.Len(t, envs, 1)
	env := envs[0]
	assert.Equal(t, core.KindHomebrew, env.Kind)
	assert.Equal(t, "3.12.3", env.Version)
	assert.Equal(t, filepath.Join(bin, "python3"), env.Executable)
	assert.Empty(t, env.Prefix)
	assert.Subset(t, env.Symlinks, []string{real, filepath.Join(bin, "python3.12"), filepath.Join(bin, "python3")})
}

func TestIdentifySkipsVirtualEnvironments(t *testing.T) {
	root, real := fakeBrew(t)
	prefix := filepath.Join(t.TempDir(), ".venv")
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "pyvenv.cfg"), []byte("version = 3.12.3\n"), 0o644))
	exe := filepath.Join(prefix, "bin", "python")
	require.NoError(t, os.Symlink(real, exe))

	locator := New(&core.StaticEnvironment{RootDir: root})
	assert.Nil(t, locator.Identify(core.NewPythonEnv(exe, "", "")))
	assert.NotNil(t, locator.Identify(core.NewPythonEnv(filepath.Join(root, "opt", "homebrew", "bin", "python3.12"), "", "")))
}
