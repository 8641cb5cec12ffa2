// Package poetry locates environments created by Poetry for the workspace
// projects, in its virtualenvs cache folder or in-project .venv folders.
package poetry

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Locator finds Poetry environments for the configured workspaces. A search
// result is cached until the next Find.
type Locator struct {
	env core.Environment

	mu         sync.Mutex
	workspaces []string
	executable string
	result     *core.LocatorResult
}

// New returns a Poetry locator reading its settings from env.
func New(env core.Environment) *Locator {
	return &Locator{env: env}
}

// Name returns core.LocatorPoetry.
func (*Locator) Name() core.LocatorName { return core.LocatorPoetry }

// SupportedKinds reports KindPoetry.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindPoetry} }

// Configure records the workspace directories and the poetry executable.
func (l *Locator) Configure(cfg *core.Configuration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.workspaces = slices.Clone(cfg.WorkspaceDirectories)
	l.executable = cfg.PoetryExecutable
}

func (l *Locator) settings() (workspaces []string, executable string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.workspaces), l.executable
}

// search returns the manager and environments of the configured workspaces,
// computed at most once until the next Find.
func (l *Locator) search() *core.LocatorResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.result != nil {
		return l.result
	}
	result := &core.LocatorResult{}
	manager := FindManager(l.env, l.executable)
	if manager != nil {
		result.Managers = append(result.Managers, *manager)
	}
	result.Environments = listEnvironments(l.env, l.workspaces, manager)
	l.result = result
	return result
}

// Identify returns the matching environment of the last search, falling
// back to the cache folder naming scheme and in-project .venv folders.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if !virtualenv.IsVirtualEnv(env) {
		return nil
	}
	for _, found := range l.search().Environments {
		if slices.Contains(found.Symlinks, env.Executable) {
			return found.Clone()
		}
	}
	prefix := env.Prefix
	if prefix == "" {
		prefix = filepath.Dir(filepath.Dir(env.Executable))
	}
	if isCacheEnvironment(prefix) {
		// The project is unknown, the prefix stands in for it.
		return newEnvironment(prefix, prefix, nil)
	}
	if isInProjectEnvironment(prefix) {
		return newEnvironment(prefix, filepath.Dir(prefix), nil)
	}
	return nil
}

// Find drops the previous search and reports the manager and environments
// of a fresh one.
func (l *Locator) Find(reporter core.Reporter) {
	l.mu.Lock()
	l.result = nil
	l.mu.Unlock()

	result := l.search()
	for i := range result.Managers {
		reporter.ReportManager(&result.Managers[i])
	}
	for _, env := range result.Environments {
		reporter.ReportEnvironment(env)
	}
}

// isCacheEnvironment matches {name}-{hash}-py{version} folders inside a
// pypoetry virtualenvs cache.
func isCacheEnvironment(prefix string) bool {
	s := filepath.ToSlash(prefix)
	if !strings.Contains(s, "pypoetry") || !strings.Contains(s, "virtualenvs") {
		return false
	}
	return envNamePattern.MatchString(filepath.Base(prefix))
}

// isInProjectEnvironment matches <project>/.venv when the project's
// pyproject.toml is set up for poetry.
func isInProjectEnvironment(prefix string) bool {
	if filepath.Base(prefix) != ".venv" {
		return false
	}
	doc := readPyproject(filepath.Join(filepath.Dir(prefix), "pyproject.toml"))
	return doc != nil && doc.usesPoetry()
}

// newEnvironment builds a Poetry record for prefix, or nil when it holds no
// interpreter.
func newEnvironment(prefix, project string, manager *core.EnvManager) *core.PythonEnvironment {
	if !pathutil.Exists(prefix) {
		return nil
	}
	exes := interp.FindExecutables(prefix)
	if len(exes) == 0 {
		return nil
	}
	return core.NewBuilder(core.KindPoetry).
		Executable(exes[0]).
		Prefix(prefix).
		Version(interp.VersionFromCreatorForVirtualEnv(prefix)).
		Manager(manager).
		Project(project).
		Symlinks(exes...).
		Build()
}

// listEnvironments finds, for every workspace folder with a pyproject.toml,
// the environments poetry would have created for it.
func listEnvironments(env core.Environment, workspaces []string, manager *core.EnvManager) []*core.PythonEnvironment {
	type project struct{ dir, name string }
	var projects []project
	for _, dir := range workspaces {
		if name := ProjectName(dir); name != "" {
			projects = append(projects, project{dir, name})
		}
	}
	if len(projects) == 0 {
		return nil
	}
	global := GlobalConfig(env)
	globalEnvs := global.environmentsIn()

	var envs []*core.PythonEnvironment
	for _, p := range projects {
		prefix := EnvNamePrefix(p.name, p.dir)
		local := LocalConfig(p.dir, env)
		candidates := append(local.environmentsIn(), globalEnvs...)
		for _, c := range candidates {
			if !strings.HasPrefix(filepath.Base(c), prefix) {
				continue
			}
			if e := newEnvironment(c, p.dir, manager); e != nil {
				envs = append(envs, e)
			}
		}
		if useInProjectVenv(global, local, env) {
			if venv := filepath.Join(p.dir, ".venv"); pathutil.IsDir(venv) {
				if e := newEnvironment(venv, p.dir, manager); e != nil {
					envs = append(envs, e)
				}
			}
		}
	}
	return envs
}
