package pipenv

import (
	"path/filepath"
	"runtime"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// findManager returns the pipenv binary: the configured one, then the pip
// --user and pipx install locations, then PATH.
func findManager(env core.Environment, configured string) *core.EnvManager {
	if configured != "" && pathutil.IsFile(configured) {
		return manager(configured)
	}
	home := env.UserHome()
	if home == "" {
		return nil
	}
	candidates := []string{
		filepath.Join(home, ".local", "bin", "pipenv"),
		filepath.Join(home, ".local", "pipx", "venvs", "pipenv", "bin", "pipenv"),
	}
	if runtime.GOOS == "windows" {
		candidates = append(candidates,
			filepath.Join(home, "AppData", "Roaming", "Python", "Scripts", "pipenv.exe"),
			filepath.Join(home, "AppData", "Local", "Programs", "Python", "Scripts", "pipenv.exe"),
			filepath.Join(home, ".local", "pipx", "venvs", "pipenv", "Scripts", "pipenv.exe"),
		)
	}
	for _, c := range candidates {
		if pathutil.IsFile(c) {
			return manager(c)
		}
	}
	for _, dir := range filepath.SplitList(env.Getenv("PATH")) {
		names := []string{"pipenv"}
		if runtime.GOOS == "windows" {
			names = append(names, "pipenv.exe")
		}
		for _, name := range names {
			if exe := filepath.Join(dir, name); pathutil.IsFile(exe) {
				return manager(exe)
			}
		}
	}
	return nil
}

func manager(exe string) *core.EnvManager {
	return &core.EnvManager{Tool: core.ToolPipenv, Executable: exe}
}
