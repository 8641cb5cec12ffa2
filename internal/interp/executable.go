// Package interp knows how Python interpreters are laid out on disk and how
// to ask one about itself.
package interp

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	windowsExe = regexp.MustCompile(`^python(\d+\.?)*\.exe$`)
	unixExe    = regexp.MustCompile(`^python(\d+\.?)*$`)
)

// ExecutableStatus is the outcome of FindExecutableOrBroken.
type ExecutableStatus int

const (
	ExecutableNotFound ExecutableStatus = iota
	ExecutableFound
	ExecutableBroken
)

// BinDir is the name of the directory holding an environment's scripts.
func BinDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// PythonExeName returns the platform spelling of the default interpreter name.
func PythonExeName() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python"
}

func executableCandidates(envPath string) []string {
	if runtime.GOOS == "windows" {
		return []string{
			filepath.Join(envPath, "Scripts", "python.exe"),
			filepath.Join(envPath, "Scripts", "python3.exe"),
			filepath.Join(envPath, "bin", "python.exe"),
			filepath.Join(envPath, "bin", "python3.exe"),
			filepath.Join(envPath, "python.exe"),
			filepath.Join(envPath, "python3.exe"),
		}
	}
	return []string{
		filepath.Join(envPath, "bin", "python"),
		filepath.Join(envPath, "bin", "python3"),
		filepath.Join(envPath, "python"),
		filepath.Join(envPath, "python3"),
	}
}

// FindExecutable returns the default interpreter of the environment rooted
// at envPath, or "" when there is none.
func FindExecutable(envPath string) string {
	for _, c := range executableCandidates(envPath) {
		if pathutil.IsFile(c) {
			return c
		}
	}
	return ""
}

// FindExecutableOrBroken is FindExecutable that also reports a candidate
// which is a dangling symlink, e.g. a venv whose base interpreter was
// uninstalled.
func FindExecutableOrBroken(envPath string) (string, ExecutableStatus) {
	candidates := executableCandidates(envPath)
	for _, c := range candidates {
		if pathutil.IsFile(c) {
			return c, ExecutableFound
		}
	}
	for _, c := range candidates {
		if pathutil.IsBrokenSymlink(c) {
			return c, ExecutableBroken
		}
	}
	return "", ExecutableNotFound
}

// FindExecutables lists every python-named executable of an environment or
// bin directory, sorted.
func FindExecutables(envPath string) []string {
	if isPyenvShimsDir(envPath) {
		return nil
	}
	if runtime.GOOS == "windows" && pathutil.Exists(filepath.Join(envPath, "Scripts")) {
		envPath = filepath.Join(envPath, "Scripts")
	}
	if pathutil.Exists(filepath.Join(envPath, "bin")) {
		envPath = filepath.Join(envPath, "bin")
	}

	python, python3 := "python", "python3"
	if runtime.GOOS == "windows" {
		python, python3 = "python.exe", "python3.exe"
	}
	if !pathutil.Exists(filepath.Join(envPath, python)) &&
		!pathutil.Exists(filepath.Join(envPath, python3)) &&
		!pathutil.EndsWith(envPath, "bin") {
		return nil
	}

	entries, err := os.ReadDir(envPath)
	if err != nil {
		return nil
	}
	var exes []string
	for _, entry := range entries {
		file := filepath.Join(envPath, entry.Name())
		if IsPythonExecutableName(file) && pathutil.IsFile(file) {
			exes = append(exes, file)
		}
	}
	slices.Sort(exes)
	return exes
}

// IsPythonExecutableName reports whether the file name looks like an
// interpreter: python, python3, python3.12 (python.exe etc. on Windows).
// pythonw and python3-config do not qualify.
func IsPythonExecutableName(exe string) bool {
	name := strings.ToLower(filepath.Base(exe))
	if runtime.GOOS == "windows" {
		return windowsExe.MatchString(name)
	}
	return unixExe.MatchString(name)
}

func isPyenvShimsDir(path string) bool {
	if filepath.Base(path) != "shims" {
		return false
	}
	return strings.Contains(strings.ToLower(filepath.Base(filepath.Dir(path))), "pyenv")
}

var ignoredFolders = map[string]bool{
	"node_modules":       true,
	".cargo":             true,
	".devcontainer":      true,
	".github":            true,
	".git":               true,
	".tox":               true,
	".nox":               true,
	".hypothesis":        true,
	".ipynb_checkpoints": true,
	".eggs":              true,
	".coverage":          true,
	".cache":             true,
	".pyre":              true,
	".ptype":             true,
	".pytest_cache":      true,
	".vscode":            true,
	"__pycache__":        true,
	"__pypackages__":     true,
	".mypy_cache":        true,
	"cython_debug":       true,
	"env.bak":            true,
	"venv.bak":           true,
	"Scripts":            true,
	"bin":                true,
}

// ShouldSearchForEnvironmentsInPath reports whether a workspace subfolder is
// worth scanning for environments.
func ShouldSearchForEnvironmentsInPath(path string) bool {
	return !ignoredFolders[filepath.Base(path)]
}
