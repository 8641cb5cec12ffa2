// Package winpython recognizes WinPython, the portable Windows distribution
// unpacked into folders such as WPy64-31300\python-3.13.0.amd64.
package winpython

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	distDir     = regexp.MustCompile(`(?i)^WPy(64|32)?-?\d+`)
	pythonDir   = regexp.MustCompile(`(?i)^python-(\d+\.\d+\.\d+)(\.(amd64|win32))?$`)
	markerFiles = []string{".winpython", "winpython.ini"}
)

// maxDepth bounds the walk from an executable up to the distribution root.
const maxDepth = 5

// Locator identifies WinPython distributions.
type Locator struct {
	env  core.Environment
	goos string
}

// New returns a WinPython locator.
func New(env core.Environment) *Locator {
	return &Locator{env: env, goos: runtime.GOOS}
}

// Name returns core.LocatorWinPython.
func (*Locator) Name() core.LocatorName { return core.LocatorWinPython }

// SupportedKinds reports KindWinPython.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindWinPython} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

func (l *Locator) exeName() string {
	if l.goos == "windows" {
		return "python.exe"
	}
	return "python"
}

func isRoot(dir string) bool {
	if distDir.MatchString(filepath.Base(dir)) {
		return true
	}
	for _, m := range markerFiles {
		if pathutil.Exists(filepath.Join(dir, m)) {
			return true
		}
	}
	return false
}

// pythonFolder returns the python-X.Y.Z folder of a distribution root that
// holds an interpreter.
func (l *Locator) pythonFolder(root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !pathutil.IsDirEntry(root, e) || !pythonDir.MatchString(e.Name()) {
			continue
		}
		folder := filepath.Join(root, e.Name())
		if pathutil.IsFile(filepath.Join(folder, l.exeName())) {
			return folder
		}
	}
	return ""
}

// distribution walks up from exe looking for the WinPython root.
func (l *Locator) distribution(exe string) (root, folder string) {
	dir := filepath.Dir(exe)
	for range maxDepth {
		if isRoot(dir) {
			if folder := l.pythonFolder(dir); folder != "" {
				return dir, folder
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

// Identify accepts interpreters in a python-X.Y.Z folder of a WinPython root
// and takes the version from the folder name.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "windows" || virtualenv.IsVirtualEnv(env) {
		return nil
	}
	root, folder := l.distribution(env.Executable)
	if root == "" {
		return nil
	}
	slog.Debug("found WinPython", "root", root, "folder", folder)

	version := env.Version
	var arch core.Architecture
	if m := pythonDir.FindStringSubmatch(filepath.Base(folder)); m != nil {
		version = m[1]
		switch strings.ToLower(m[3]) {
		case "amd64":
			arch = core.ArchX64
		case "win32":
			arch = core.ArchX86
		}
	}
	display := fmt.Sprintf("WinPython (%s)", filepath.Base(root))
	if version != "" {
		display = "WinPython " + version
	}

	links := []string{env.Executable}
	links = append(links, interp.FindExecutables(folder)...)
	for _, exe := range interp.FindExecutables(filepath.Join(folder, "Scripts")) {
		name := strings.ToLower(filepath.Base(exe))
		if strings.HasPrefix(name, "python") && !strings.Contains(name, "pip") {
			links = append(links, exe)
		}
	}
	for i, link := range links {
		links[i] = pathutil.NormCase(link)
	}
	slices.Sort(links)

	return core.NewBuilder(core.KindWinPython).
		DisplayName(display).
		Executable(env.Executable).
		Version(version).
		Prefix(folder).
		Arch(arch).
		Symlinks(slices.Compact(links)...).
		Build()
}

// searchPaths are the folders WinPython is usually unpacked into.
func (l *Locator) searchPaths() []string {
	var paths []string
	if home := l.env.UserHome(); home != "" {
		paths = append(paths,
			home,
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Documents"),
			filepath.Join(home, "WinPython"),
		)
	}
	for _, drive := range []string{`C:\`, `D:\`, `E:\`} {
		drive = pathutil.Rebase(l.env.Root(), drive)
		paths = append(paths, drive, filepath.Join(drive, "WinPython"), filepath.Join(drive, "Python"))
	}
	for _, key := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
		if dir := l.env.Getenv(key); dir != "" {
			paths = append(paths, dir)
		}
	}
	return paths
}

// Find reports the distributions unpacked in the usual download and program
// folders. It does nothing off Windows.
func (l *Locator) Find(reporter core.Reporter) {
	if l.goos != "windows" {
		return
	}
	seen := map[string]bool{}
	for _, dir := range l.searchPaths() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			root := filepath.Join(dir, e.Name())
			if !pathutil.IsDirEntry(dir, e) || !isRoot(root) {
				continue
			}
			folder := l.pythonFolder(root)
			if folder == "" || seen[folder] {
				continue
			}
			seen[folder] = true
			exe := filepath.Join(folder, l.exeName())
			if found := l.Identify(core.NewPythonEnv(exe, folder, "")); found != nil {
				reporter.ReportEnvironment(found)
			}
		}
	}
}
