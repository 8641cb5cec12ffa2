// Package pyenv locates interpreters installed by pyenv (and pyenv-win),
// including pyenv-virtualenv environments and conda flavours installed
// under its versions folder.
package pyenv

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/richinsley/pylocate/internal/cache"
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/conda"
	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	// 3.10.10
	pureVersion = regexp.MustCompile(`^(\d+\.\d+\.\d+)$`)
	// 3.10-dev
	devVersion = regexp.MustCompile(`^(\d+\.\d+-.*)$`)
	// 3.10.0a3
	betaVersion = regexp.MustCompile(`^(\d+\.\d+.\d+\w\d+)`)
	// 3.11.0a-win32
	win32Version = regexp.MustCompile(`^(\d+\.\d+.\d+\w\d+)-win32`)

	// /opt/homebrew/Cellar/pyenv/2.4.0/libexec/pyenv
	managerVersionFromPath = regexp.MustCompile(`pyenv/((\d+\.?)*)/`)
	managerVersionFromFile = regexp.MustCompile(`(\d+\.\d+\.\d+)`)
)

// CondaFinder enumerates a conda install found under the versions folder.
type CondaFinder interface {
	FindIn(dir string) *core.LocatorResult
}

// Info is where pyenv lives on this machine.
type Info struct {
	Executable string
	Versions   string
	Version    string
}

func (i *Info) manager() *core.EnvManager {
	if i.Executable == "" {
		return nil
	}
	return &core.EnvManager{Tool: core.ToolPyenv, Executable: i.Executable, Version: i.Version}
}

// Locator finds pyenv interpreters. Conda installs under the versions folder
// are handed to the CondaFinder.
type Locator struct {
	env   core.Environment
	conda CondaFinder
	info  cache.CachedValue[*Info]
}

// New returns a pyenv locator. condaFinder may be nil.
func New(env core.Environment, condaFinder CondaFinder) *Locator {
	return &Locator{env: env, conda: condaFinder}
}

// Name returns core.LocatorPyenv.
func (*Locator) Name() core.LocatorName { return core.LocatorPyenv }

// SupportedKinds reports the pyenv kinds.
func (*Locator) SupportedKinds() []core.Kind {
	return []core.Kind{core.KindPyenv, core.KindPyenvVirtualEnv}
}

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// Info returns the pyenv layout, computed once per locator.
func (l *Locator) Info() *Info {
	return l.info.Get(func() *Info { return readInfo(l.env) })
}

func homePyenvDir(env core.Environment) string {
	home := env.UserHome()
	if home == "" {
		return ""
	}
	if runtime.GOOS == "windows" {
		return pathutil.NormCase(filepath.Join(home, ".pyenv", "pyenv-win"))
	}
	return pathutil.NormCase(filepath.Join(home, ".pyenv"))
}

// pyenvDir honours PYENV_ROOT (Unix) and PYENV (pyenv-win).
func pyenvDir(env core.Environment) string {
	if dir := env.Getenv("PYENV_ROOT"); dir != "" {
		return dir
	}
	return env.Getenv("PYENV")
}

func binaryFromKnownPaths(env core.Environment) string {
	name := "pyenv"
	if runtime.GOOS == "windows" {
		name = "pyenv.exe"
	}
	for _, dir := range env.KnownGlobalSearchLocations() {
		if exe := filepath.Join(dir, name); pathutil.IsFile(exe) {
			return pathutil.NormCase(exe)
		}
	}
	return ""
}

func readInfo(env core.Environment) *Info {
	info := &Info{}
	if dir := pyenvDir(env); dir != "" {
		if v := filepath.Join(dir, "versions"); pathutil.Exists(v) {
			info.Versions = v
		}
		if exe := filepath.Join(dir, "bin", "pyenv"); pathutil.Exists(exe) {
			info.Executable = exe
		}
	}
	if exe := binaryFromKnownPaths(env); exe != "" {
		info.Executable = exe
	}
	if info.Executable == "" || info.Versions == "" {
		if dir := homePyenvDir(env); dir != "" {
			if exe := filepath.Join(dir, "bin", "pyenv"); info.Executable == "" && pathutil.Exists(exe) {
				info.Executable = exe
			}
			if v := filepath.Join(dir, "versions"); info.Versions == "" && pathutil.Exists(v) {
				info.Versions = v
			}
		}
	}
	if info.Executable != "" {
		info.Version = managerVersion(env, info.Executable)
	}
	return info
}

// managerVersion reads the pyenv version from the Homebrew cellar path the
// binary links to, or from pyenv-win's .version file.
func managerVersion(env core.Environment, exe string) string {
	if runtime.GOOS == "windows" {
		dir := pyenvDir(env)
		if dir == "" {
			dir = filepath.Dir(homePyenvDir(env))
		}
		file := filepath.Join(dir, ".version")
		if !pathutil.Exists(file) {
			file = filepath.Join(filepath.Dir(dir), ".version")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return ""
		}
		if m := managerVersionFromFile.FindSubmatch(data); m != nil {
			return string(m[1])
		}
		return ""
	}
	target, err := os.Readlink(exe)
	if err != nil {
		return ""
	}
	if m := managerVersionFromPath.FindStringSubmatch(filepath.ToSlash(target)); m != nil {
		return m[1]
	}
	return ""
}

// Identify accepts executables under the pyenv versions folder. Conda
// prefixes there are left to the conda locator.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	info := l.Info()
	if info.Versions == "" || !pathutil.HasPathPrefix(env.Executable, info.Versions) {
		return nil
	}
	prefix := env.Prefix
	if prefix == "" {
		rel, err := filepath.Rel(info.Versions, env.Executable)
		if err != nil {
			return nil
		}
		first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		prefix = filepath.Join(info.Versions, first)
	}
	manager := info.manager()
	if e := pureEnvironment(env.Executable, prefix, manager); e != nil {
		return e
	}
	if e := virtualEnvEnvironment(env.Executable, prefix, manager); e != nil {
		return e
	}
	if conda.IsCondaEnv(prefix) {
		return nil
	}
	return genericEnvironment(env.Executable, prefix, manager)
}

// Find reports the pyenv manager and every install under its versions
// folder.
func (l *Locator) Find(reporter core.Reporter) {
	info := l.Info()
	manager := info.manager()
	if manager != nil {
		reporter.ReportManager(manager)
	}
	if info.Versions == "" {
		return
	}
	result := l.list(info.Versions, manager)
	for _, e := range result.Environments {
		reporter.ReportEnvironment(e)
	}
	for i := range result.Managers {
		reporter.ReportManager(&result.Managers[i])
	}
}

func (l *Locator) list(versions string, manager *core.EnvManager) *core.LocatorResult {
	result := &core.LocatorResult{}
	entries, err := os.ReadDir(versions)
	if err != nil {
		return result
	}
	for _, entry := range entries {
		path := filepath.Join(versions, entry.Name())
		exe := interp.FindExecutable(path)
		if exe == "" {
			continue
		}
		if e := pureEnvironment(exe, path, manager); e != nil {
			result.Environments = append(result.Environments, e)
		} else if e := virtualEnvEnvironment(exe, path, manager); e != nil {
			result.Environments = append(result.Environments, e)
		} else if conda.IsCondaEnv(path) {
			if l.conda == nil {
				continue
			}
			if found := l.conda.FindIn(path); found != nil {
				result.Environments = append(result.Environments, found.Environments...)
				result.Managers = append(result.Managers, found.Managers...)
			}
		} else if e := genericEnvironment(exe, path, manager); e != nil {
			result.Environments = append(result.Environments, e)
		}
	}
	return result
}

// versionFromFolder parses names such as 3.12.1, 3.13-dev, 3.13.0a3 or
// 3.11.0a1-win32.
func versionFromFolder(name string) string {
	for _, re := range []*regexp.Regexp{pureVersion, devVersion, betaVersion, win32Version} {
		if m := re.FindStringSubmatch(name); m != nil {
			return m[1]
		}
	}
	return ""
}

func pureEnvironment(exe, prefix string, manager *core.EnvManager) *core.PythonEnvironment {
	name := filepath.Base(prefix)
	version := versionFromFolder(name)
	if version == "" {
		return nil
	}
	b := core.NewBuilder(core.KindPyenv).
		Executable(exe).
		Version(version).
		Prefix(prefix).
		Manager(manager).
		Symlinks(interp.FindExecutables(prefix)...)
	if strings.HasSuffix(name, "-win32") {
		b.Arch(core.ArchX86)
	}
	return b.Build()
}

func virtualEnvEnvironment(exe, prefix string, manager *core.EnvManager) *core.PythonEnvironment {
	cfg := core.FindPyVenvCfg(filepath.Dir(exe))
	if cfg == nil {
		return nil
	}
	return core.NewBuilder(core.KindPyenvVirtualEnv).
		Name(filepath.Base(prefix)).
		Executable(exe).
		Version(cfg.Version).
		Prefix(prefix).
		Manager(manager).
		Symlinks(interp.FindExecutables(prefix)...).
		Build()
}

// genericEnvironment covers other builds under versions, e.g. pypy3.10-7.3.15,
// whose version comes from their headers.
func genericEnvironment(exe, prefix string, manager *core.EnvManager) *core.PythonEnvironment {
	return core.NewBuilder(core.KindPyenv).
		Name(filepath.Base(prefix)).
		Executable(exe).
		Version(interp.VersionFromHeaders(prefix)).
		Prefix(prefix).
		Manager(manager).
		Symlinks(interp.FindExecutables(prefix)...).
		Build()
}
