// Package windowsregistry locates interpreters registered under
// HKLM and HKCU\Software\Python by the python.org and other PEP 514
// compliant installers.
package windowsregistry

import (
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/locators/conda"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/locators/windowsstore"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Installation is one Software\Python\<Company>\<Tag> registry entry.
type Installation struct {
	Hive            string
	Company         string
	Tag             string
	InstallPath     string
	ExecutablePath  string
	Version         string
	SysArchitecture string
	DisplayName     string
}

func (i Installation) key() string {
	return i.Hive + `\Software\Python\` + i.Company + `\` + i.Tag
}

// CondaFinder enumerates a conda install registered by its installer.
type CondaFinder interface {
	FindIn(dir string) *core.LocatorResult
}

// Locator reads PEP 514 registrations once per Find and answers Identify
// from that snapshot.
type Locator struct {
	goos  string
	read  func() []Installation
	conda CondaFinder

	mu     sync.Mutex
	done   bool
	envs   []*core.PythonEnvironment
	condas []*core.LocatorResult
}

// New returns a registry locator. Conda installs found in the registry are
// passed to conda, which may be nil.
func New(conda CondaFinder) *Locator {
	return &Locator{goos: runtime.GOOS, read: readInstallations, conda: conda}
}

// Name returns core.LocatorWindowsRegistry.
func (*Locator) Name() core.LocatorName { return core.LocatorWindowsRegistry }

// SupportedKinds reports KindWindowsRegistry.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindWindowsRegistry} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

func (l *Locator) scan() ([]*core.PythonEnvironment, []*core.LocatorResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return l.envs, l.condas
	}
	l.envs, l.condas = nil, nil
	for _, inst := range l.read() {
		env, condaInstall := l.fromInstallation(inst)
		switch {
		case env != nil:
			l.envs = append(l.envs, env)
		case condaInstall != nil:
			l.condas = append(l.condas, condaInstall)
		}
	}
	l.done = true
	return l.envs, l.condas
}

// fromInstallation turns a registry entry into an environment. Conda
// installers register themselves too; those are enumerated with conda.
func (l *Locator) fromInstallation(inst Installation) (*core.PythonEnvironment, *core.LocatorResult) {
	if inst.InstallPath == "" {
		slog.Warn("install path is empty", "key", inst.key())
		return nil, nil
	}
	prefix := pathutil.NormCase(inst.InstallPath)
	if windowsstore.IsProgramFilesApp(prefix) {
		slog.Debug("skipping windows store python", "key", inst.key(), "prefix", prefix)
		return nil, nil
	}
	if conda.IsCondaEnv(prefix) {
		if l.conda == nil {
			return nil, nil
		}
		return nil, l.conda.FindIn(prefix)
	}
	if inst.ExecutablePath == "" {
		slog.Warn("executable path is empty", "key", inst.key())
		return nil, nil
	}
	exe := pathutil.NormCase(inst.ExecutablePath)
	if !pathutil.IsFile(exe) {
		slog.Warn("registered python not found", "key", inst.key(), "executable", exe)
		return nil, nil
	}
	if !pathutil.Exists(prefix) {
		prefix = ""
	}
	b := core.NewBuilder(core.KindWindowsRegistry).
		DisplayName(inst.DisplayName).
		Executable(exe).
		Version(inst.Version).
		Prefix(prefix)
	switch {
	case strings.Contains(inst.SysArchitecture, "32"):
		b.Arch(core.ArchX86)
	case strings.Contains(inst.SysArchitecture, "64"):
		b.Arch(core.ArchX64)
	}
	return b.Build(), nil
}

// Identify matches executables against the registered installs. The
// registry is read at most once between two Find calls.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "windows" || virtualenv.IsVirtualEnv(env) {
		return nil
	}
	if env.Prefix != "" && conda.IsCondaEnv(env.Prefix) {
		return nil
	}
	envs, _ := l.scan()
	for _, found := range envs {
		if found.Executable == env.Executable {
			return found.Clone()
		}
	}
	return nil
}

// Find rescans the registry and reports conda results followed by the
// registered interpreters. It does nothing off Windows.
func (l *Locator) Find(reporter core.Reporter) {
	if l.goos != "windows" {
		return
	}
	l.mu.Lock()
	l.done = false
	l.mu.Unlock()

	envs, condas := l.scan()
	for _, result := range condas {
		if result == nil {
			continue
		}
		for i := range result.Managers {
			reporter.ReportManager(&result.Managers[i])
		}
		for _, env := range result.Environments {
			reporter.ReportEnvironment(env)
		}
	}
	for _, env := range envs {
		reporter.ReportEnvironment(env.Clone())
	}
}
