// Package virtualenv identifies environments made by the virtualenv tool,
// recognized by activate scripts next to the interpreter.
package virtualenv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Locator identifies virtualenv environments.
type Locator struct{}

// New returns a virtualenv locator.
func New() *Locator {
	return &Locator{}
}

// Name returns core.LocatorVirtualEnv.
func (*Locator) Name() core.LocatorName { return core.LocatorVirtualEnv }

// SupportedKinds reports KindVirtualEnv.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindVirtualEnv} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// IsVirtualEnv reports whether env lives in a bin directory holding an
// activate script.
func IsVirtualEnv(env *core.PythonEnv) bool {
	bin := filepath.Dir(env.Executable)
	if env.Prefix == "" && !pathutil.EndsWith(bin, "bin") && !pathutil.EndsWith(bin, "Scripts") {
		return false
	}
	return HasActivateScript(bin)
}

// IsVirtualEnvDir reports whether path is the root of a virtualenv.
func IsVirtualEnvDir(path string) bool {
	return HasActivateScript(filepath.Join(path, interp.BinDir()))
}

// HasActivateScript reports whether bin holds activate or activate.*.
func HasActivateScript(bin string) bool {
	if pathutil.Exists(filepath.Join(bin, "activate")) || pathutil.Exists(filepath.Join(bin, "activate.bat")) {
		return true
	}
	entries, err := os.ReadDir(bin)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "activate") {
			return true
		}
	}
	return false
}

// Identify accepts executables with an activate script beside them.
func (*Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if !IsVirtualEnv(env) {
		return nil
	}
	prefix := env.Prefix
	if prefix == "" {
		prefix = filepath.Dir(filepath.Dir(env.Executable))
	}
	version := env.Version
	if version == "" {
		version = interp.VersionFromCreatorForVirtualEnv(prefix)
	}
	return core.NewBuilder(core.KindVirtualEnv).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Symlinks(env.Symlinks...).
		Symlinks(interp.FindExecutables(prefix)...).
		Build()
}

// Find does nothing.
func (*Locator) Find(core.Reporter) {}
