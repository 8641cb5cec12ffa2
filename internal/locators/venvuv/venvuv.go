// Package venvuv identifies virtual environments created by uv, whose
// pyvenv.cfg carries a `uv = <version>` line.
package venvuv

import (
	"path/filepath"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/venv"
)

// Locator identifies uv-created venvs.
type Locator struct{}

// New returns a uv venv locator.
func New() *Locator {
	return &Locator{}
}

// Name returns core.LocatorVenvUv.
func (*Locator) Name() core.LocatorName { return core.LocatorVenvUv }

// SupportedKinds reports KindVenvUv.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindVenvUv} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// IsVenvUvDir reports whether path is the root of a uv venv.
func IsVenvUvDir(path string) bool {
	cfg := core.FindPyVenvCfg(path)
	return cfg != nil && cfg.IsUV()
}

// Identify accepts executables whose pyvenv.cfg was written by uv.
func (*Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	cfg := venv.FindCfg(env)
	if cfg == nil || !cfg.IsUV() {
		return nil
	}
	prefix := env.Prefix
	if prefix == "" {
		prefix = filepath.Dir(cfg.FilePath)
	}
	version := env.Version
	if version == "" {
		version = interp.VersionFromCreatorForVirtualEnv(prefix)
	}
	if version == "" {
		version = cfg.Version
	}
	return core.NewBuilder(core.KindVenvUv).
		Name(cfg.Prompt).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Symlinks(env.Symlinks...).
		Symlinks(interp.FindExecutables(prefix)...).
		Build()
}

// Find does nothing; uv venvs are reached through workspace scans.
func (*Locator) Find(core.Reporter) {}
