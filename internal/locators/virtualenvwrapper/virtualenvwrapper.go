// Package virtualenvwrapper identifies virtualenvs kept under WORKON_HOME by
// virtualenvwrapper.
package virtualenvwrapper

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Locator identifies environments under WORKON_HOME.
type Locator struct {
	env core.Environment
}

// New returns a virtualenvwrapper locator reading WORKON_HOME from env.
func New(env core.Environment) *Locator {
	return &Locator{env: env}
}

// Name returns core.LocatorVirtualEnvWrapper.
func (*Locator) Name() core.LocatorName { return core.LocatorVirtualEnvWrapper }

// SupportedKinds reports KindVirtualEnvWrapper.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindVirtualEnvWrapper} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// WorkOnHome returns the root of all virtualenvwrapper environments:
// WORKON_HOME when it exists, else the platform default.
func WorkOnHome(env core.Environment) string {
	if workon := env.Getenv("WORKON_HOME"); workon != "" {
		if resolved, err := filepath.EvalSymlinks(workon); err == nil && pathutil.Exists(resolved) {
			return pathutil.NormCase(resolved)
		}
	}
	home := env.UserHome()
	if home == "" {
		return ""
	}
	defaults := []string{".virtualenvs"}
	if runtime.GOOS == "windows" {
		defaults = []string{"Envs", ".virtualenvs"}
	}
	for _, d := range defaults {
		if dir := filepath.Join(home, d); pathutil.Exists(dir) {
			return pathutil.NormCase(dir)
		}
	}
	return ""
}

// IsVirtualEnvWrapper reports whether env is a virtualenv living under
// WORKON_HOME. The prefix must be known.
func IsVirtualEnvWrapper(env *core.PythonEnv, host core.Environment) bool {
	if env.Prefix == "" {
		return false
	}
	workon := WorkOnHome(host)
	return workon != "" && pathutil.HasPathPrefix(env.Executable, workon) && virtualenv.IsVirtualEnv(env)
}

// projectOf reads the project folder recorded in prefix/.project by
// `mkvirtualenv -a`. Folders that no longer exist are ignored.
func projectOf(prefix string) string {
	data, err := os.ReadFile(filepath.Join(prefix, ".project"))
	if err != nil {
		return ""
	}
	project := pathutil.NormCase(strings.TrimSpace(string(data)))
	if project == "" || !pathutil.Exists(project) {
		return ""
	}
	return project
}

// Identify accepts virtualenvs directly under WORKON_HOME and reads the
// project from their .project file.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if !IsVirtualEnvWrapper(env, l.env) {
		return nil
	}
	version := env.Version
	if version == "" {
		version = interp.VersionFromHeaders(env.Prefix)
	}
	return core.NewBuilder(core.KindVirtualEnvWrapper).
		Name(filepath.Base(env.Prefix)).
		Executable(env.Executable).
		Version(version).
		Prefix(env.Prefix).
		Project(projectOf(env.Prefix)).
		Symlinks(env.Symlinks...).
		Symlinks(interp.FindExecutables(env.Prefix)...).
		Build()
}

// Find reports every environment directly under WORKON_HOME.
func (l *Locator) Find(reporter core.Reporter) {
	workon := WorkOnHome(l.env)
	if workon == "" {
		return
	}
	entries, err := os.ReadDir(workon)
	if err != nil {
		return
	}
	for _, e := range entries {
		prefix := filepath.Join(workon, e.Name())
		exe := interp.FindExecutable(prefix)
		if exe == "" {
			continue
		}
		env := core.NewPythonEnv(exe, prefix, interp.VersionFromPyVenvCfg(prefix))
		if found := l.Identify(env); found != nil {
			reporter.ReportEnvironment(found)
		}
	}
}
