// Package pixi identifies environments managed by pixi. They use the conda
// layout plus a conda-meta/pixi marker file.
package pixi

import (
	"path/filepath"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/conda"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Locator identifies pixi environments. It holds no state.
type Locator struct{}

// New returns a pixi locator.
func New() *Locator {
	return &Locator{}
}

// Name returns core.LocatorPixi.
func (*Locator) Name() core.LocatorName { return core.LocatorPixi }

// SupportedKinds reports KindPixi.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindPixi} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// IsPixiEnv reports whether path is the root of a pixi environment.
func IsPixiEnv(path string) bool {
	return pathutil.IsFile(filepath.Join(path, "conda-meta", "pixi"))
}

func prefixOf(env *core.PythonEnv) string {
	if env.Prefix != "" {
		return env.Prefix
	}
	dir := filepath.Dir(env.Executable)
	if IsPixiEnv(dir) {
		return dir
	}
	if pathutil.EndsWith(dir, "bin") || pathutil.EndsWith(dir, "Scripts") {
		if parent := filepath.Dir(dir); IsPixiEnv(parent) {
			return parent
		}
	}
	return ""
}

// Identify accepts executables whose prefix carries conda-meta/pixi.
func (*Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	prefix := prefixOf(env)
	if prefix == "" || !IsPixiEnv(prefix) {
		return nil
	}
	b := core.NewBuilder(core.KindPixi).
		Executable(env.Executable).
		Name(filepath.Base(prefix)).
		Prefix(prefix).
		Symlinks(interp.FindExecutables(prefix)...)
	if pkg := conda.ReadPackageInfo(prefix, conda.PackagePython); pkg != nil {
		b.Version(pkg.Version).Arch(pkg.Arch)
	}
	return b.Build()
}

// Find does nothing: pixi environments live inside projects and are found by
// the workspace scan.
func (*Locator) Find(core.Reporter) {}
