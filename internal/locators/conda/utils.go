package conda

import (
	"path/filepath"

	"github.com/richinsley/pylocate/internal/pathutil"
)

// IsCondaInstall reports whether path is the root of a conda installation.
// A folder with condabin or envs next to conda-meta is an install, unless
// its grandparent is one too: then it is an environment that happens to
// carry such a folder.
func IsCondaInstall(path string) bool {
	if !looksLikeInstall(path) {
		return false
	}
	return !looksLikeInstall(filepath.Dir(filepath.Dir(path)))
}

func looksLikeInstall(path string) bool {
	return (pathutil.Exists(filepath.Join(path, "condabin")) || pathutil.Exists(filepath.Join(path, "envs"))) &&
		pathutil.Exists(filepath.Join(path, "conda-meta"))
}

// IsCondaEnv reports whether path is a conda environment. Install roots are
// environments too (base). Pixi environments share the layout and are
// excluded by their conda-meta/pixi marker.
func IsCondaEnv(path string) bool {
	return pathutil.IsDir(filepath.Join(path, "conda-meta")) &&
		!pathutil.IsFile(filepath.Join(path, "conda-meta", "pixi"))
}
