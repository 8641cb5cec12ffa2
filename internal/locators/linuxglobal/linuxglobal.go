// Package linuxglobal identifies the distribution interpreters installed in
// /bin, /usr/bin and /usr/local/bin.
package linuxglobal

import (
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strconv"

	"github.com/richinsley/pylocate/internal/cache"
	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/conda"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	globalBins = []string{"/bin", "/usr/bin", "/usr/local/bin"}
	// Interpreters must live in the system tree; a /usr/local/bin link into
	// linuxbrew or a user directory belongs to someone else.
	systemRoots = []string{"/bin", "/usr"}

	minorName = regexp.MustCompile(`^python(\d+)\.(\d+)$`)
)

// Locator identifies distribution interpreters. The results of a scan are
// kept until the next Find.
type Locator struct {
	env  core.Environment
	goos string
	envs *cache.LocatorCache[*core.PythonEnvironment]
}

// New returns a locator for the system bin directories under env's root.
func New(env core.Environment) *Locator {
	return &Locator{
		env:  env,
		goos: runtime.GOOS,
		envs: cache.NewLocatorCache[*core.PythonEnvironment](),
	}
}

// Name returns core.LocatorLinuxGlobal.
func (*Locator) Name() core.LocatorName { return core.LocatorLinuxGlobal }

// SupportedKinds reports KindLinuxGlobal.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindLinuxGlobal} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

func (l *Locator) rebased(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = pathutil.Rebase(l.env.Root(), p)
	}
	return out
}

// Identify matches executables inside the global bin directories, including
// symlinks that resolve into them. It returns nil on non-Linux hosts.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "linux" || env.Executable == "" {
		return nil
	}
	if !slices.Contains(l.rebased(globalBins), filepath.Dir(env.Executable)) {
		return nil
	}
	if virtualenv.IsVirtualEnv(env) || (env.Prefix != "" && conda.IsCondaEnv(env.Prefix)) {
		return nil
	}
	if found, ok := l.envs.Get(env.Executable); ok {
		return found.Clone()
	}
	l.scan()
	if found, ok := l.envs.Get(env.Executable); ok {
		return found.Clone()
	}
	return nil
}

// scan groups every interpreter of the global bin dirs by the binary it
// resolves to and caches one environment per group under each alias.
func (l *Locator) scan() []*core.PythonEnvironment {
	groups := map[string][]string{}
	var order []string
	roots := l.rebased(systemRoots)
	for _, bin := range l.rebased(globalBins) {
		for _, exe := range interp.FindExecutables(bin) {
			target, err := filepath.EvalSymlinks(exe)
			if err != nil {
				continue
			}
			if !slices.ContainsFunc(roots, func(r string) bool { return pathutil.HasPathPrefix(target, r) }) {
				continue
			}
			if _, ok := groups[target]; !ok {
				order = append(order, target)
			}
			groups[target] = append(groups[target], exe)
		}
	}

	var found []*core.PythonEnvironment
	for _, target := range order {
		env := l.build(target, groups[target])
		for _, exe := range env.Symlinks {
			l.envs.Insert(exe, env)
		}
		found = append(found, env)
	}
	return found
}

func (l *Locator) build(target string, aliases []string) *core.PythonEnvironment {
	prefix := filepath.Dir(filepath.Dir(target))
	var version string
	for _, exe := range append([]string{target}, aliases...) {
		m := minorName.FindStringSubmatch(filepath.Base(exe))
		if m == nil {
			continue
		}
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		version = interp.VersionFromHeadersFor(prefix, major, minor)
		break
	}
	return core.NewBuilder(core.KindLinuxGlobal).
		Executable(aliases[0]).
		Version(version).
		Prefix(prefix).
		Symlinks(append(aliases, target)...).
		Build()
}

// Find rescans the bin directories and reports one environment per resolved
// interpreter.
func (l *Locator) Find(reporter core.Reporter) {
	if l.goos != "linux" {
		return
	}
	l.envs.Clear()
	for _, env := range l.scan() {
		reporter.ReportEnvironment(env.Clone())
	}
}
