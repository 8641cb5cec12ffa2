// Package venv identifies virtual environments created with `python -m venv`.
// Any interpreter with a pyvenv.cfg beside its bin directory qualifies.
package venv

import (
	"path/filepath"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
)

// Locator identifies venvs. It holds no state.
type Locator struct{}

// New returns a venv locator.
func New() *Locator {
	return &Locator{}
}

// Name returns core.LocatorVenv.
func (*Locator) Name() core.LocatorName { return core.LocatorVenv }

// SupportedKinds reports KindVenv.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindVenv} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// FindCfg returns the pyvenv.cfg governing env, looked up next to the
// executable first and then in the prefix.
func FindCfg(env *core.PythonEnv) *core.PyVenvCfg {
	if cfg := core.FindPyVenvCfg(filepath.Dir(env.Executable)); cfg != nil {
		return cfg
	}
	if env.Prefix != "" {
		return core.FindPyVenvCfg(env.Prefix)
	}
	return nil
}

// IsVenv reports whether env belongs to a venv.
func IsVenv(env *core.PythonEnv) bool {
	return FindCfg(env) != nil
}

// IsVenvDir reports whether path is the root of a venv.
func IsVenvDir(path string) bool {
	return core.FindPyVenvCfg(path) != nil
}

// Identify accepts executables with a pyvenv.cfg and reads the version and
// prompt from it.
func (*Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	cfg := FindCfg(env)
	if cfg == nil {
		return nil
	}
	prefix := env.Prefix
	if prefix == "" {
		prefix = filepath.Dir(cfg.FilePath)
	}
	version := env.Version
	if version == "" {
		version = cfg.Version
	}
	if version == "" {
		version = interp.VersionFromHeaders(prefix)
	}
	return core.NewBuilder(core.KindVenv).
		Name(cfg.Prompt).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Symlinks(env.Symlinks...).
		Symlinks(interp.FindExecutables(prefix)...).
		Build()
}

// Find does nothing: venvs have no global home. They are reached through
// workspace and PATH scans.
func (*Locator) Find(core.Reporter) {}
