package macxcode

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

func TestIdentify(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks")
	}
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	developer := filepath.Join(root, "Applications", "Xcode-beta.app", "Contents", "Developer")
	prefix := filepath.Join(developer, "Library", "Frameworks", "Python3.framework", "Versions", "3.9")
	real := filepath.Join(prefix, "bin", "python3.9")
	require.NoError(t, os.MkdirAll(filepath.Dir(real), 0o755))
	require.NoError(t, os.WriteFile(real, nil, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "include", "python3.9"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "include", "python3.9", "patchlevel.h"),
		[]byte("#define PY_VERSION \"3.9.6\"\n"), 0o644))
	bin := filepath.Join(developer, "usr", "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	exe := filepath.Join(bin, "python3")
	require.NoError(t, os.Symlink(real, exe))

	locator := New(&core.StaticEnvironment{RootDir: root})
	locator.goos = "darwin"
	env := locator.Identify(core.NewPythonEnv(exe, "", ""))
	require.NotNil(t, env)
	assert.Equal(t, core.KindMacXCode, env.Kind)
	assert.Equal(t, exe, env.Executable)
	assert.Equal(t, prefix, env.Prefix)
	assert.Equal(t, "3.9.6", env.Version)
	assert.ElementsMatch(t, []string{exe, real}, env.Symlinks)

	assert.Nil(t, locator.Identify(core.NewPythonEnv(filepath.Join(root, "usr", "bin", "python3"), "", "")))
}

func TestFindReportsNothing(t *testing.T) {
	locator := New(&core.StaticEnvironment{})
	locator.goos = "darwin"
	collect := reporter.NewCollect()
	locator.Find(collect)
	assert.Empty(t, collect.Result().Environments)
}
