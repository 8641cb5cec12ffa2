package windowsstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/reporter"
)

const family = "PythonSoftwareFoundation.Python.3.12_qbz5n2kfra8p0"

func setupApps(t *testing.T) (home, apps string) {
	t.Helper()
	home = t.TempDir()
	apps = filepath.Join(home, "AppData", "Local", "Microsoft", "WindowsApps")
	require.NoError(t, os.MkdirAll(filepath.Join(apps, family), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(apps, "python3.12.exe"), nil, 0o755))
	// An alias without a package folder, which also leaves python.exe unattributed.
	require.NoError(t, os.WriteFile(filepath.Join(apps, "python3.11.exe"), nil, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(apps, "python.exe"), nil, 0o755))
	return home, apps
}

func fakeLookup(root string) PackageLookup {
	return func(name string) (*PackageInfo, bool) {
		if name != family {
			return nil, false
		}
		return &PackageInfo{DisplayName: "Python 3.12", RootFolder: root, Is64Bit: true}, true
	}
}

func TestFind(t *testing.T) {
	home, apps := setupApps(t)
	root := filepath.Join(home, "Program Files", "WindowsApps", "PythonSoftwareFoundation.Python.3.12_3.12.1264.0_x64__qbz5n2kfra8p0")

	locator := New(&core.StaticEnvironment{Home: home})
	locator.goos = "windows"
	locator.lookup = fakeLookup(root)

	collect := reporter.NewCollect()
	locator.Find(collect)
	envs := collect.Result().Environments
	require.Len(t, envs, 1)
	env := envs[0]
	assert.Equal(t, core.KindWindowsStore, env.Kind)
	assert.Equal(t, "Python 3.12", env.DisplayName)
	assert.Equal(t, core.ArchX64, env.Arch)
	assert.Empty(t, env.Version)
	assert.Contains(t, env.Symlinks, filepath.Join(apps, "python3.12.exe"))
	assert.Contains(t, env.Symlinks, filepath.Join(apps, family, "python3.exe"))

	found := locator.Identify(core.NewPythonEnv(filepath.Join(apps, family, "python.exe"), "", ""))
	require.NotNil(t, found)
	assert.Equal(t, env.Prefix, found.Prefix)

	assert.Nil(t, locator.Identify(core.NewPythonEnv(filepath.Join(apps, "python.exe"), "", "")))
}

func TestUnregisteredPackageSkipped(t *testing.T) {
	home, _ := setupApps(t)
	locator := New(&core.StaticEnvironment{Home: home})
	locator.goos = "windows"
	locator.lookup = func(string) (*PackageInfo, bool) { return nil, false }

	collect := reporter.NewCollect()
	locator.Find(collect)
	assert.Empty(t, collect.Result().Environments)
}

func TestIsProgramFilesApp(t *testing.T) {
	assert.True(t, IsProgramFilesApp(`C:\Program Files\WindowsApps\PythonSoftwareFoundation.Python.3.12`))
	assert.False(t, IsProgramFilesApp(`C:\Program Files\Python312`))
	assert.False(t, IsProgramFilesApp(""))
}
