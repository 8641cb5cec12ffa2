// Package windowsstore locates interpreters installed from the Microsoft
// Store. Their app execution aliases live in
// %LOCALAPPDATA%\Microsoft\WindowsApps and the package metadata lives in the
// current user's registry hive.
package windowsstore

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	packageFolder = regexp.MustCompile(`^PythonSoftwareFoundation\.Python\.(\d+\.\d+)_.*`)
	aliasName     = regexp.MustCompile(`^python(\d+\.\d+)\.exe$`)
)

// PackageInfo is what the registry records about an installed package.
type PackageInfo struct {
	DisplayName string
	RootFolder  string
	Is64Bit     bool
}

// PackageLookup resolves a package family folder name to its metadata.
type PackageLookup func(name string) (*PackageInfo, bool)

// Locator finds Store interpreters and caches them until the next Find.
type Locator struct {
	env    core.Environment
	goos   string
	lookup PackageLookup

	mu   sync.Mutex
	envs []*core.PythonEnvironment
	done bool
}

// New returns a Microsoft Store locator reading LOCALAPPDATA from env.
func New(env core.Environment) *Locator {
	return &Locator{env: env, goos: runtime.GOOS, lookup: registryLookup}
}

// Name returns core.LocatorWindowsStore.
func (*Locator) Name() core.LocatorName { return core.LocatorWindowsStore }

// SupportedKinds reports KindWindowsStore.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindWindowsStore} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// AppsDir is the folder holding the Store's app execution aliases.
func AppsDir(env core.Environment) string {
	home := env.UserHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "AppData", "Local", "Microsoft", "WindowsApps")
}

// IsProgramFilesApp reports whether path is inside the machine-wide
// C:\Program Files\WindowsApps package store.
func IsProgramFilesApp(path string) bool {
	lower := strings.ToLower(path)
	if len(lower) < 2 {
		return false
	}
	return strings.HasPrefix(lower[1:], `:\program files\windowsapps`)
}

func (l *Locator) cached() []*core.PythonEnvironment {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.envs = listStorePythons(AppsDir(l.env), l.lookup)
		l.done = true
	}
	return l.envs
}

func (l *Locator) reset() {
	l.mu.Lock()
	l.envs, l.done = nil, false
	l.mu.Unlock()
}

// Identify matches executables against the cached Store installs, including
// their WindowsApps aliases.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "windows" || virtualenv.IsVirtualEnv(env) {
		return nil
	}
	candidates := append([]string{env.Executable}, env.Symlinks...)
	for _, found := range l.cached() {
		if slices.ContainsFunc(candidates, func(exe string) bool { return slices.Contains(found.Symlinks, exe) }) {
			// Callers may know aliases such as WindowsApps\python.exe that the
			// scan cannot attribute on its own.
			return core.BuilderFrom(found).Symlinks(env.Symlinks...).Build()
		}
	}
	return nil
}

// Find drops the cache and reports every Store install. It does nothing off
// Windows.
func (l *Locator) Find(reporter core.Reporter) {
	if l.goos != "windows" {
		return
	}
	l.reset()
	for _, env := range l.cached() {
		reporter.ReportEnvironment(env.Clone())
	}
}

type candidate struct {
	version  string
	folder   string
	exe      string
	symlinks []string
}

// listStorePythons pairs each PythonSoftwareFoundation.Python.X.Y_* package
// folder with its pythonX.Y.exe alias. Unpaired entries are dropped.
func listStorePythons(apps string, lookup PackageLookup) []*core.PythonEnvironment {
	if apps == "" {
		return nil
	}
	entries, err := os.ReadDir(apps)
	if err != nil {
		return nil
	}
	byVersion := map[string]*candidate{}
	var order []string
	get := func(version string) *candidate {
		c, ok := byVersion[version]
		if !ok {
			c = &candidate{version: version}
			byVersion[version] = c
			order = append(order, version)
		}
		return c
	}
	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(apps, name)
		if m := packageFolder.FindStringSubmatch(name); m != nil {
			c := get(m[1])
			c.folder = path
			if c.symlinks == nil {
				c.symlinks = folderSymlinks(path, m[1])
			}
			continue
		}
		// python.exe and python3.exe cannot be attributed to one version
		// without spawning them.
		if m := aliasName.FindStringSubmatch(strings.ToLower(name)); m != nil {
			get(m[1]).exe = path
		}
	}

	var envs []*core.PythonEnvironment
	for _, version := range order {
		c := byVersion[version]
		if c.exe == "" || c.folder == "" {
			slog.Warn("incomplete windows store python", "version", version, "folder", c.folder, "exe", c.exe)
			continue
		}
		info, ok := lookup(filepath.Base(c.folder))
		if !ok {
			slog.Warn("windows store package not registered", "folder", c.folder)
			continue
		}
		envs = append(envs, c.environment(apps, info))
	}
	return envs
}

func (c *candidate) environment(apps string, info *PackageInfo) *core.PythonEnvironment {
	root := pathutil.NormCase(info.RootFolder)
	versioned := "python" + c.version + ".exe"
	b := core.NewBuilder(core.KindWindowsStore).
		DisplayName(info.DisplayName).
		Executable(c.exe).
		Prefix(root).
		// Only the minor version is known here; leave Version unset.
		Symlinks(
			filepath.Join(apps, versioned),
			filepath.Join(c.folder, "python.exe"),
			filepath.Join(c.folder, "python3.exe"),
			filepath.Join(c.folder, versioned),
			filepath.Join(root, "python.exe"),
			filepath.Join(root, versioned),
		).
		Symlinks(c.symlinks...)
	if info.Is64Bit {
		b.Arch(core.ArchX64)
	}
	return b.Build()
}

// folderSymlinks finds the aliases in the WindowsApps folder above a package
// folder. python.exe and python3.exe are only attributed when exactly one
// versioned python3.X.exe exists.
func folderSymlinks(folder, version string) []string {
	apps := filepath.Dir(folder)
	var links []string
	if exe := filepath.Join(apps, "python"+version+".exe"); pathutil.Exists(exe) {
		links = append(links, exe)
	}
	var exes []string
	versioned := 0
	for _, exe := range interp.FindExecutables(apps) {
		if strings.HasPrefix(strings.ToLower(filepath.Base(exe)), "python3.") {
			versioned++
		}
		exes = append(exes, exe)
	}
	if versioned == 1 {
		links = append(links, exes...)
	}
	return links
}
