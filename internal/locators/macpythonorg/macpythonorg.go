// Package macpythonorg locates the framework builds installed by the
// python.org macOS installer.
package macpythonorg

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const versionsDir = "/Library/Frameworks/Python.framework/Versions"

// Locator identifies Python.framework installs.
type Locator struct {
	env  core.Environment
	goos string
}

// New returns a python.org framework locator.
func New(env core.Environment) *Locator {
	return &Locator{env: env, goos: runtime.GOOS}
}

// Name returns core.LocatorMacPythonOrg.
func (*Locator) Name() core.LocatorName { return core.LocatorMacPythonOrg }

// SupportedKinds reports KindMacPythonOrg.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindMacPythonOrg} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

func (l *Locator) path(p string) string {
	return pathutil.Rebase(l.env.Root(), p)
}

// Identify accepts executables under
// /Library/Frameworks/Python.framework/Versions, collecting the
// /usr/local/bin links that point at the same version.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "darwin" {
		return nil
	}
	resolved, err := filepath.EvalSymlinks(env.Executable)
	if err != nil {
		return nil
	}
	versions := l.path(versionsDir)
	if !pathutil.HasPathPrefix(resolved, versions) || resolved == versions {
		return nil
	}
	bin := filepath.Dir(resolved)
	prefix := filepath.Dir(bin)
	version := interp.VersionFromHeaders(prefix)
	if version == "" {
		return nil
	}
	links := []string{resolved, env.Executable}
	// The installer links /usr/local/bin/python3* to the framework.
	links = append(links, linksTo(l.path("/usr/local/bin"), links)...)
	for _, exe := range interp.FindExecutables(bin) {
		if !slices.Contains(links, exe) && resolvesInto(exe, links) {
			links = append(links, exe)
		}
	}
	return core.NewBuilder(core.KindMacPythonOrg).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Symlinks(links...).
		Build()
}

func resolvesInto(path string, set []string) bool {
	target, err := filepath.EvalSymlinks(path)
	return err == nil && target != path && slices.Contains(set, target)
}

// linksTo lists the entries of dir that are symlinks resolving into set.
func linksTo(dir string, set []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var links []string
	for _, e := range entries {
		if p := filepath.Join(dir, e.Name()); resolvesInto(p, set) {
			links = append(links, p)
		}
	}
	return links
}

// Find reports one environment per installed framework version.
func (l *Locator) Find(reporter core.Reporter) {
	if l.goos != "darwin" {
		return
	}
	versions := l.path(versionsDir)
	entries, err := os.ReadDir(versions)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.Name() == "Current" {
			continue
		}
		prefix := filepath.Join(versions, e.Name())
		exe := filepath.Join(prefix, "bin", "python3")
		if !pathutil.IsFile(exe) {
			continue
		}
		if env := l.Identify(core.NewPythonEnv(exe, prefix, interp.VersionFromHeaders(prefix))); env != nil {
			reporter.ReportEnvironment(env)
		}
	}
}
