package poetry

import (
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// /opt/homebrew/Cellar/poetry/1.8.3_2/bin/poetry
var homebrewPoetryVersion = regexp.MustCompile(`/Cellar/poetry/(\d+\.\d+\.\d+)`)

// FindManager returns the poetry binary: the configured one, then the
// installer, pipx and POETRY_HOME locations, then PATH.
func FindManager(env core.Environment, configured string) *core.EnvManager {
	if configured != "" && pathutil.IsFile(configured) {
		return newManager(configured)
	}
	home := env.UserHome()
	if home == "" {
		return nil
	}
	candidates := []string{
		filepath.Join(home, ".poetry", "bin", "poetry"),
		filepath.Join(home, ".local", "pipx", "venvs", "poetry", "bin", "poetry"),
	}
	if poetryHome := env.Getenv("POETRY_HOME"); poetryHome != "" {
		poetryHome = pathutil.ExpandPath(poetryHome, home, nil)
		if runtime.GOOS == "windows" {
			candidates = append(candidates,
				filepath.Join(poetryHome, "bin", "poetry.exe"),
				filepath.Join(poetryHome, "venv", "bin", "poetry.exe"))
		}
		candidates = append(candidates,
			filepath.Join(poetryHome, "bin", "poetry"),
			filepath.Join(poetryHome, "venv", "bin", "poetry"))
	}
	switch runtime.GOOS {
	case "windows":
		if appData := env.Getenv("APPDATA"); appData != "" {
			candidates = append(candidates,
				filepath.Join(appData, "pypoetry", "venv", "Scripts", "poetry.exe"),
				filepath.Join(appData, "Roaming", "Python", "Scripts", "poetry.exe"),
				filepath.Join(appData, "pypoetry", "venv", "Scripts", "poetry"),
				filepath.Join(appData, "Python", "scripts", "poetry.exe"),
				filepath.Join(appData, "Python", "scripts", "poetry"))
		}
		candidates = append(candidates, filepath.Join(home, ".local", "bin", "poetry"))
	case "darwin":
		candidates = append(candidates,
			filepath.Join(home, "Library", "Application Support", "pypoetry", "venv", "bin", "poetry"),
			filepath.Join(home, ".local", "bin", "poetry"))
	default:
		candidates = append(candidates,
			filepath.Join(home, ".local", "share", "pypoetry", "venv", "bin", "poetry"),
			filepath.Join(home, ".local", "bin", "poetry"))
	}
	for _, c := range candidates {
		if pathutil.IsFile(c) {
			return newManager(c)
		}
	}
	names := []string{"poetry"}
	if runtime.GOOS == "windows" {
		names = append(names, "poetry.exe")
	}
	for _, dir := range filepath.SplitList(env.Getenv("PATH")) {
		for _, name := range names {
			if exe := filepath.Join(dir, name); pathutil.IsFile(exe) {
				return newManager(exe)
			}
		}
	}
	return nil
}

func newManager(exe string) *core.EnvManager {
	return &core.EnvManager{Tool: core.ToolPoetry, Executable: exe, Version: versionFromPath(exe)}
}

// versionFromPath reads the version out of a Homebrew Cellar path, following
// the bin/poetry link when there is one.
func versionFromPath(exe string) string {
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return versionFromCellarPath(filepath.ToSlash(exe))
}

func versionFromCellarPath(path string) string {
	if m := homebrewPoetryVersion.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}
