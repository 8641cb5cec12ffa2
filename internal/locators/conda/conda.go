// Package conda locates conda installations and their environments.
//
// Discovery is filesystem only: environments.txt, condarc files, the
// conventional install folders and conda-meta metadata. `conda info` is only
// run to reconcile what the scan may have missed, and that result is
// reported as telemetry.
package conda

import (
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/richinsley/pylocate/internal/cache"
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Locator finds conda installs and the environments they created. Install
// folders and environment prefixes are each parsed at most once per Locator;
// later lookups are served from its caches.
type Locator struct {
	vars *EnvVariables

	// managers is keyed by install folder, environments by prefix.
	managers     *cache.LocatorCache[*Manager]
	environments *cache.LocatorCache[*core.PythonEnvironment]

	// loadManager and loadEnvironment read conda-meta from disk.
	loadManager     func(dir string) *Manager
	loadEnvironment func(prefix string, manager *Manager) *Environment

	mu       sync.RWMutex
	condaExe string
}

// New returns a conda locator reading the conda variables of env.
func New(env core.Environment) *Locator {
	return &Locator{
		vars:            NewEnvVariables(env),
		managers:        cache.NewLocatorCache[*Manager](),
		environments:    cache.NewLocatorCache[*core.PythonEnvironment](),
		loadManager:     managerAt,
		loadEnvironment: EnvironmentInfo,
	}
}

// Name returns core.LocatorConda.
func (*Locator) Name() core.LocatorName { return core.LocatorConda }

// SupportedKinds returns the single kind this locator reports, Conda.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindConda} }

// Configure records the conda executable the caller wants used, if any.
func (l *Locator) Configure(cfg *core.Configuration) {
	l.mu.Lock()
	l.condaExe = cfg.CondaExecutable
	l.mu.Unlock()
}

func (l *Locator) configuredExecutable() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.condaExe
}

// prefixOf returns the environment root for a conda interpreter, which is
// <prefix>/bin/python on Unix and <prefix>\python.exe on Windows.
func prefixOf(exe string) string {
	dir := filepath.Dir(exe)
	if pathutil.EndsWith(dir, "bin") || pathutil.EndsWith(dir, "Scripts") {
		return filepath.Dir(dir)
	}
	return dir
}

// Identify recognizes an interpreter inside a conda environment. The
// environment's manager is the install holding it or, failing that, the
// install recorded in its history as having created it.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	prefix := env.Prefix
	if prefix == "" {
		prefix = prefixOf(env.Executable)
	}
	if prefix == "" || !IsCondaEnv(prefix) {
		return nil
	}
	return l.environment(prefix, nil).Clone()
}

// manager returns the manager of the install at dir, reading it on first
// use only.
func (l *Locator) manager(dir string) *Manager {
	if dir == "" {
		return nil
	}
	m, _ := l.managers.GetOrInsertWith(dir, func() (*Manager, bool) {
		m := l.loadManager(dir)
		return m, m != nil
	})
	return m
}

// environment returns the record for prefix, reading it on first use only.
// When manager is nil the install is derived from the environment itself.
func (l *Locator) environment(prefix string, manager *Manager) *core.PythonEnvironment {
	record, _ := l.environments.GetOrInsertWith(prefix, func() (*core.PythonEnvironment, bool) {
		info := l.loadEnvironment(prefix, manager)
		if info == nil {
			return nil, false
		}
		m := manager
		if m == nil {
			m = l.manager(info.CondaDir)
		}
		if m == nil {
			return info.PythonEnvironment("", nil), true
		}
		return info.PythonEnvironment(m.CondaDir, m.EnvManager()), true
	})
	return record
}

// Find reports every conda environment it can locate and, once each, the
// installs that manage them.
func (l *Locator) Find(reporter core.Reporter) {
	var extra []string
	if exe := l.configuredExecutable(); exe != "" {
		extra = append(extra, installOf(exe))
	}
	if exe := FindCondaBinary(l.vars); exe != "" {
		extra = append(extra, installOf(exe))
	}

	reported := cache.NewLocatorCache[bool]()
	var g errgroup.Group
	for _, prefix := range EnvironmentPaths(l.vars, extra...) {
		g.Go(func() error {
			l.reportEnvironment(prefix, reporter, reported)
			return nil
		})
	}
	_ = g.Wait()
}

// installOf maps <install>/bin/conda, or its condabin sibling, to <install>.
func installOf(exe string) string {
	if target, ok := pathutil.ResolveSymlink(exe); ok {
		exe = target
	}
	return filepath.Dir(filepath.Dir(exe))
}

func (l *Locator) reportEnvironment(prefix string, reporter core.Reporter, reported *cache.LocatorCache[bool]) {
	record := l.environment(prefix, nil)
	if record == nil {
		return
	}
	record = record.Clone()
	if record.Manager != nil && reported.InsertIfAbsent(record.Manager.Executable, true) {
		m := *record.Manager
		reporter.ReportManager(&m)
	}
	reporter.ReportEnvironment(record)
}

// FindIn enumerates the install at dir. Pyenv uses it for the conda
// flavours it installs under its versions folder.
func (l *Locator) FindIn(dir string) *core.LocatorResult {
	if !IsCondaInstall(dir) {
		return nil
	}
	mgr := l.manager(dir)
	if mgr == nil {
		return nil
	}
	result := &core.LocatorResult{Managers: []core.EnvManager{*mgr.EnvManager()}}
	for _, prefix := range environmentsIn(dir, l.vars) {
		if record := l.environment(prefix, mgr); record != nil {
			result.Environments = append(result.Environments, record.Clone())
		}
	}
	return result
}

// ReportMissing asks conda itself for its environments and reports those the
// scan did not find as MissingCondaEnvironments telemetry.
func (l *Locator) ReportMissing(reporter core.Reporter, known []*core.PythonEnvironment) {
	exe := l.configuredExecutable()
	userProvided := exe != ""
	if managers := l.managers.Values(); exe == "" && len(managers) > 0 {
		exe = managers[0].Executable
	}
	info, err := QueryInfo(exe)
	if err != nil {
		slog.Debug("conda info unavailable", "error", err)
		return
	}
	if event, ok := missingEnvironments(l.vars, info, known, userProvided); ok {
		reporter.ReportTelemetry(event)
	}
}

// Clear drops every cached manager and environment.
func (l *Locator) Clear() {
	l.managers.Clear()
	l.environments.Clear()
}
