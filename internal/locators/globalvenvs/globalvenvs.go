// Package globalvenvs lists the folders where virtual environments are
// conventionally kept outside of any project.
package globalvenvs

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/locators/conda"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Dirs returns the existing roots: WORKON_HOME, XDG_DATA_HOME/virtualenvs,
// the uv environment cache and the usual folders under the user's home.
func Dirs(env core.Environment) []string {
	var dirs []string
	home := env.UserHome()
	if cache := uvCacheDir(env, runtime.GOOS); cache != "" {
		if dir := filepath.Join(cache, "environments-v2"); pathutil.IsDir(dir) {
			dirs = append(dirs, dir)
		}
	}
	if workon := env.Getenv("WORKON_HOME"); workon != "" {
		workon = pathutil.NormCase(filepath.Clean(pathutil.ExpandPath(workon, home, env.Getenv)))
		if pathutil.Exists(workon) {
			dirs = append(dirs, workon)
		}
	}
	if xdg := env.Getenv("XDG_DATA_HOME"); xdg != "" {
		if dir := filepath.Join(xdg, "virtualenvs"); pathutil.Exists(dir) {
			dirs = append(dirs, dir)
		}
	}
	if home == "" {
		return dirs
	}
	candidates := []string{
		"envs",
		".direnv",
		".venvs",
		".virtualenvs",
		filepath.Join(".local", "share", "virtualenvs"),
	}
	if runtime.GOOS == "windows" {
		candidates = append(candidates, "Envs")
	}
	for _, c := range candidates {
		if dir := filepath.Join(home, c); pathutil.Exists(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// List returns every child of the global roots that is not a conda
// environment, sorted and deduplicated. Children are candidates only; the
// caller decides whether they hold an interpreter.
func List(env core.Environment) []string {
	var envs []string
	for _, root := range Dirs(env) {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			path := filepath.Join(root, e.Name())
			if !conda.IsCondaEnv(path) {
				envs = append(envs, path)
			}
		}
	}
	return pathutil.Unique(envs)
}

// uvCacheDir returns the first existing uv cache: UV_CACHE_DIR, then
// XDG_CACHE_HOME/uv, then the platform default under home.
func uvCacheDir(env core.Environment, goos string) string {
	home := env.UserHome()
	if dir := env.Getenv("UV_CACHE_DIR"); dir != "" {
		dir = pathutil.NormCase(filepath.Clean(pathutil.ExpandPath(dir, home, env.Getenv)))
		if pathutil.Exists(dir) {
			return dir
		}
	}
	if xdg := env.Getenv("XDG_CACHE_HOME"); xdg != "" {
		if dir := filepath.Join(xdg, "uv"); pathutil.Exists(dir) {
			return dir
		}
	}
	if home == "" {
		return ""
	}
	var dir string
	switch goos {
	case "windows":
		dir = filepath.Join(home, "AppData", "Local", "uv")
	case "darwin":
		dir = filepath.Join(home, "Library", "Caches", "uv")
	default:
		dir = filepath.Join(home, ".cache", "uv")
	}
	if pathutil.Exists(dir) {
		return dir
	}
	return ""
}
