// Package maccmdlinetools identifies the python3 shipped with Apple's
// Command Line Tools.
package maccmdlinetools

import (
	"path/filepath"
	"runtime"
	"slices"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const (
	toolsBin   = "/Library/Developer/CommandLineTools/usr/bin"
	frameworks = "/Library/Developer/CommandLineTools/Library/Frameworks/Python3.framework/Versions"
)

// Locator identifies /Library/Developer/CommandLineTools interpreters.
type Locator struct {
	env  core.Environment
	goos string
}

// New returns a Command Line Tools locator.
func New(env core.Environment) *Locator {
	return &Locator{env: env, goos: runtime.GOOS}
}

// Name returns core.LocatorMacCommandLineTools.
func (*Locator) Name() core.LocatorName { return core.LocatorMacCommandLineTools }

// SupportedKinds reports KindMacCommandLineTools.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindMacCommandLineTools} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

func (l *Locator) path(p string) string {
	return pathutil.Rebase(l.env.Root(), p)
}

// Identify accepts executables in the CommandLineTools usr/bin or
// Python3.framework folders and gathers the links between them.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "darwin" || virtualenv.IsVirtualEnv(env) {
		return nil
	}
	bin, fw := l.path(toolsBin), l.path(frameworks)
	if !pathutil.HasPathPrefix(env.Executable, bin) && !pathutil.HasPathPrefix(env.Executable, fw) {
		return nil
	}

	links := append([]string{env.Executable}, env.Symlinks...)
	if target, ok := pathutil.ResolveSymlink(env.Executable); ok {
		links = append(links, target)
	}
	// usr/bin/python3 links to the framework interpreter, as may its siblings.
	for _, name := range []string{"python", "python3"} {
		p := filepath.Join(bin, name)
		if slices.Contains(links, p) {
			continue
		}
		if target, ok := pathutil.ResolveSymlink(p); ok && slices.Contains(links, target) {
			links = append(links, p)
		}
	}
	var real string
	for _, p := range links {
		if pathutil.HasPathPrefix(p, fw) {
			real = p
			break
		}
	}
	if real != "" {
		p := filepath.Join(filepath.Dir(real), "python3")
		if target, ok := pathutil.ResolveSymlink(p); ok && slices.Contains(links, target) {
			links = append(links, p)
		}
	}

	prefix := env.Prefix
	if prefix == "" && real != "" {
		prefix = filepath.Dir(filepath.Dir(real))
	}
	version := env.Version
	if version == "" && prefix != "" {
		version = interp.VersionFromHeaders(prefix)
	}
	return core.NewBuilder(core.KindMacCommandLineTools).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Symlinks(links...).
		Build()
}

// Find reports the interpreters of usr/bin, once per resolved target.
func (l *Locator) Find(reporter core.Reporter) {
	if l.goos != "darwin" {
		return
	}
	seen := map[string]bool{}
	exes := interp.FindExecutables(l.path(toolsBin))
	// python3.X before python3 and python.
	slices.SortFunc(exes, func(a, b string) int { return len(b) - len(a) })
	for _, exe := range exes {
		target, err := filepath.EvalSymlinks(exe)
		if err != nil || seen[target] {
			continue
		}
		seen[target] = true
		if env := l.Identify(core.NewPythonEnv(exe, "", "")); env != nil {
			reporter.ReportEnvironment(env)
		}
	}
}
