package conda

import (
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Manager is a conda installation able to create environments.
type Manager struct {
	Executable string
	Version    string
	CondaDir   string
}

// EnvManager converts m to the reported manager type.
func (m *Manager) EnvManager() *core.EnvManager {
	return &core.EnvManager{Tool: core.ToolConda, Executable: m.Executable, Version: m.Version}
}

func condaBinNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"conda.exe", "conda.bat"}
	}
	return []string{"conda"}
}

// condaExecutable returns the conda binary of the install at dir.
func condaExecutable(dir string) string {
	var candidates []string
	if runtime.GOOS == "windows" {
		for _, bin := range []string{"Scripts", "bin"} {
			for _, name := range condaBinNames() {
				candidates = append(candidates, filepath.Join(dir, bin, name))
			}
		}
	} else {
		candidates = []string{filepath.Join(dir, "bin", "conda")}
	}
	for _, c := range candidates {
		if pathutil.Exists(c) {
			return c
		}
	}
	return ""
}

// FindCondaBinary searches PATH for conda.
func FindCondaBinary(vars *EnvVariables) string {
	for _, dir := range filepath.SplitList(vars.Path) {
		for _, name := range condaBinNames() {
			p := filepath.Join(dir, name)
			if pathutil.IsFile(p) || pathutil.IsSymlink(p) {
				return p
			}
		}
	}
	return ""
}

// managerAt builds the manager of the install rooted at dir. Both the conda
// binary and conda's own package record must be present.
func managerAt(dir string) *Manager {
	exe := condaExecutable(dir)
	if exe == "" {
		return nil
	}
	pkg := ReadPackageInfo(dir, PackageConda)
	if pkg == nil {
		return nil
	}
	return &Manager{Executable: exe, Version: pkg.Version, CondaDir: dir}
}

// ManagerForEnvironment finds the install that owns the environment at
// prefix: the grandparent for <install>/envs/<name>, else the install named
// in the creation command of conda-meta/history, else prefix itself.
func ManagerForEnvironment(prefix string) *Manager {
	if !IsCondaEnv(prefix) {
		return nil
	}
	if parent := filepath.Dir(filepath.Dir(prefix)); IsCondaInstall(parent) {
		if m := managerAt(parent); m != nil {
			return m
		}
	}
	if dir := InstallUsedToCreate(prefix); dir != "" {
		return managerAt(dir)
	}
	// Environments under ~/.conda/envs never double as an install.
	if pathutil.EndsWith(filepath.Dir(prefix), ".conda", "envs") {
		slog.Debug("conda environment lives under .conda/envs, not an install", "prefix", prefix)
		return nil
	}
	return managerAt(prefix)
}
