// Package pipenv identifies environments created by pipenv, either in its
// centralized virtualenvs folder (tied to a project through a .project file)
// or inside a project next to its Pipfile.
package pipenv

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Locator identifies pipenv environments and reports the pipenv manager.
type Locator struct {
	env core.Environment

	mu         sync.RWMutex
	executable string
}

// New returns a pipenv locator reading its folders from env.
func New(env core.Environment) *Locator {
	return &Locator{env: env}
}

// Name returns core.LocatorPipenv.
func (*Locator) Name() core.LocatorName { return core.LocatorPipenv }

// SupportedKinds reports KindPipenv.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindPipenv} }

// Configure records the pipenv executable to report as manager.
func (l *Locator) Configure(cfg *core.Configuration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.executable = cfg.PipenvExecutable
}

// pipfileName honours PIPENV_PIPFILE.
func (l *Locator) pipfileName() string {
	if name := l.env.Getenv("PIPENV_PIPFILE"); name != "" {
		return name
	}
	return "Pipfile"
}

// centralizedDirs are the folders pipenv creates <project>-<hash>
// environments in when not running in project mode.
func (l *Locator) centralizedDirs() []string {
	var dirs []string
	if workon := l.env.Getenv("WORKON_HOME"); workon != "" && pathutil.Exists(workon) {
		dirs = append(dirs, pathutil.NormCase(workon))
	}
	if xdg := l.env.Getenv("XDG_DATA_HOME"); xdg != "" {
		if dir := filepath.Join(xdg, "virtualenvs"); pathutil.Exists(dir) {
			dirs = append(dirs, pathutil.NormCase(dir))
		}
	}
	if home := l.env.UserHome(); home != "" {
		for _, d := range []string{filepath.Join(".local", "share", "virtualenvs"), ".venvs", ".virtualenvs"} {
			if dir := filepath.Join(home, d); pathutil.Exists(dir) {
				dirs = append(dirs, pathutil.NormCase(dir))
			}
		}
	}
	return dirs
}

// virtualenvsDir is where `pipenv install` puts new environments.
func (l *Locator) virtualenvsDir() string {
	if workon := l.env.Getenv("WORKON_HOME"); workon != "" && pathutil.IsDir(workon) {
		return workon
	}
	home := l.env.UserHome()
	if home == "" {
		return ""
	}
	dir := filepath.Join(home, ".local", "share", "virtualenvs")
	if runtime.GOOS == "windows" {
		dir = filepath.Join(home, ".virtualenvs")
	}
	if pathutil.IsDir(dir) {
		return dir
	}
	return ""
}

func inBinDir(exe string) bool {
	bin := filepath.Dir(exe)
	return pathutil.EndsWith(bin, "bin") || pathutil.EndsWith(bin, "Scripts")
}

// prefixOf returns the environment root, derived from a bin/Scripts parent
// when the caller did not know it.
func prefixOf(env *core.PythonEnv) string {
	if env.Prefix != "" {
		return env.Prefix
	}
	if inBinDir(env.Executable) {
		return filepath.Dir(filepath.Dir(env.Executable))
	}
	return ""
}

// venvDirOf is the prefix, or the executable's folder when the layout is
// flat.
func venvDirOf(env *core.PythonEnv) string {
	if prefix := prefixOf(env); prefix != "" {
		return prefix
	}
	return filepath.Dir(env.Executable)
}

// projectFromFile reads prefix/.project. The project is returned even when
// the folder has since been moved or deleted.
func projectFromFile(prefix string) string {
	data, err := os.ReadFile(filepath.Join(prefix, ".project"))
	if err != nil {
		return ""
	}
	project := strings.TrimSpace(string(data))
	if project == "" {
		return ""
	}
	return pathutil.NormCase(project)
}

// projectOf returns the project an environment belongs to: the .project
// file, else the folder containing the venv when it holds a Pipfile.
func projectOf(env *core.PythonEnv) string {
	venv := venvDirOf(env)
	if project := projectFromFile(venv); project != "" {
		return project
	}
	if parent := filepath.Dir(venv); pathutil.Exists(filepath.Join(parent, "Pipfile")) {
		return parent
	}
	return ""
}

func (l *Locator) inCentralizedDir(env *core.PythonEnv) bool {
	prefix := prefixOf(env)
	if prefix == "" {
		return false
	}
	parent := pathutil.NormCase(filepath.Dir(prefix))
	for _, dir := range l.centralizedDirs() {
		if parent != dir {
			continue
		}
		if pathutil.Exists(filepath.Join(prefix, ".project")) {
			return true
		}
		slog.Debug("pipenv folder entry has no .project file", "prefix", prefix)
	}
	return false
}

// IsPipenv reports whether env was created by pipenv.
func (l *Locator) IsPipenv(env *core.PythonEnv) bool {
	if l.inCentralizedDir(env) {
		return true
	}
	if project := projectOf(env); project != "" && pathutil.Exists(filepath.Join(project, l.pipfileName())) {
		return true
	}
	return pathutil.Exists(filepath.Join(filepath.Dir(venvDirOf(env)), "Pipfile"))
}

// Identify accepts an environment tied to a project holding a Pipfile, either
// through its .project file or by sitting inside the project.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if !l.IsPipenv(env) {
		return nil
	}
	prefix := prefixOf(env)
	version := env.Version
	if version == "" && prefix != "" {
		version = interp.VersionFromCreatorForVirtualEnv(prefix)
	}
	return core.NewBuilder(core.KindPipenv).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Project(projectOf(env)).
		Symlinks(env.Symlinks...).
		Symlinks(interp.FindExecutables(filepath.Dir(env.Executable))...).
		Build()
}

// Find reports the pipenv manager, when found, and every environment of the
// centralized virtualenvs folder.
func (l *Locator) Find(reporter core.Reporter) {
	l.mu.RLock()
	configured := l.executable
	l.mu.RUnlock()
	if m := findManager(l.env, configured); m != nil {
		reporter.ReportManager(m)
	}
	for _, env := range l.list() {
		reporter.ReportEnvironment(env)
	}
}

// list enumerates the pipenv virtualenvs folder. An entry counts when its
// .project names a folder holding a Pipfile.
func (l *Locator) list() []*core.PythonEnvironment {
	dir := l.virtualenvsDir()
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var envs []*core.PythonEnvironment
	for _, e := range entries {
		prefix := filepath.Join(dir, e.Name())
		if !pathutil.IsDir(prefix) {
			continue
		}
		project := projectFromFile(prefix)
		if project == "" || !pathutil.Exists(filepath.Join(project, l.pipfileName())) {
			continue
		}
		bin := filepath.Join(prefix, interp.BinDir())
		exe := filepath.Join(bin, interp.PythonExeName())
		if !pathutil.IsFile(exe) {
			continue
		}
		envs = append(envs, core.NewBuilder(core.KindPipenv).
			Executable(exe).
			Version(interp.VersionFromCreatorForVirtualEnv(prefix)).
			Prefix(prefix).
			Project(project).
			Symlinks(interp.FindExecutables(bin)...).
			Build())
	}
	return envs
}
