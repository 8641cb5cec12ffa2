package interp

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeader(t *testing.T, dir, version string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "#define PY_MAJOR_VERSION 3\n#define PY_VERSION \"" + version + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "patchlevel.h"), []byte(content), 0o644))
}

func TestVersionFromHeaders(t *testing.T) {
	prefix := t.TempDir()
	assert.Empty(t, VersionFromHeaders(prefix))

	writeHeader(t, filepath.Join(prefix, "include", "python3.11"), "3.11.9")
	assert.Equal(t, "3.11.9", VersionFromHeaders(prefix))
	assert.Equal(t, "3.11.9", VersionFromHeaders(filepath.Join(prefix, BinDir())))

	framework := t.TempDir()
	writeHeader(t, filepath.Join(framework, "Headers"), "3.12.0rc1")
	assert.Equal(t, "3.12.0rc1", VersionFromHeaders(framework))
}

func TestVersionFromPrefix(t *testing.T) {
	prefix := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(prefix, "pyvenv.cfg"), []byte("version = 3.10.4\n"), 0o644))
	writeHeader(t, filepath.Join(prefix, "include"), "3.9.1")

	assert.Equal(t, "3.10.4", VersionFromPrefix(prefix), "pyvenv.cfg wins")
	assert.Equal(t, "3.9.1", VersionFromHeaders(prefix))
}

func TestVersionFromCreatorForVirtualEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated rights on windows")
	}
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	base := filepath.Join(root, "base")
	creator := touch(t, filepath.Join(base, "bin", "python3.11"))
	writeHeader(t, filepath.Join(base, "include", "python3.11"), "3.11.4")

	venv := filepath.Join(root, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venv, "bin"), 0o755))
	require.NoError(t, os.Symlink(creator, filepath.Join(venv, "bin", "python")))
	require.NoError(t, os.WriteFile(filepath.Join(venv, "pyvenv.cfg"), []byte("version = 3.11.4\n"), 0o644))

	assert.Equal(t, "3.11.4", VersionFromCreatorForVirtualEnv(venv))
	assert.Empty(t, VersionFromCreatorForVirtualEnv(t.TempDir()))
}
