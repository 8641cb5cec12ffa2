// Package macxcode identifies the python3 bundled inside Xcode.app. Xcode
// can be installed anywhere under /Applications, so the locator never
// searches and only recognizes executables it is handed.
package macxcode

import (
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const (
	developerBin = "/Contents/Developer/usr/bin"
	frameworks   = "/Contents/Developer/Library/Frameworks/Python3.framework/Versions"
)

// Locator identifies Xcode's bundled python3.
type Locator struct {
	env  core.Environment
	goos string
}

// New returns an Xcode locator.
func New(env core.Environment) *Locator {
	return &Locator{env: env, goos: runtime.GOOS}
}

// Name returns core.LocatorMacXCode.
func (*Locator) Name() core.LocatorName { return core.LocatorMacXCode }

// SupportedKinds reports KindMacXCode.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindMacXCode} }

// Configure is a no-op.
func (*Locator) Configure(*core.Configuration) {}

// within reports whether path lives in an app bundle under /Applications and
// contains marker.
func (l *Locator) within(path, marker string) bool {
	apps := pathutil.Rebase(l.env.Root(), "/Applications")
	return pathutil.HasPathPrefix(path, apps) && strings.Contains(filepath.ToSlash(path), marker+"/")
}

// Identify accepts executables inside an Xcode.app developer folder under
// /Applications.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	if l.goos != "darwin" || virtualenv.IsVirtualEnv(env) {
		return nil
	}
	if !l.within(env.Executable, developerBin) && !l.within(env.Executable, frameworks) {
		return nil
	}
	links := append([]string{env.Executable}, env.Symlinks...)
	target, ok := pathutil.ResolveSymlink(env.Executable)
	if ok {
		links = append(links, target)
	}
	// Other interpreters of the same bin dir pointing at the same binary.
	for _, exe := range interp.FindExecutables(filepath.Dir(env.Executable)) {
		if slices.Contains(links, exe) {
			continue
		}
		if t, ok := pathutil.ResolveSymlink(exe); ok && slices.Contains(links, t) {
			links = append(links, exe)
		}
	}

	prefix := env.Prefix
	if prefix == "" {
		for _, p := range links {
			if l.within(p, frameworks) {
				prefix = filepath.Dir(filepath.Dir(p))
				break
			}
		}
	}
	version := env.Version
	if version == "" && prefix != "" {
		version = interp.VersionFromHeaders(prefix)
	}
	return core.NewBuilder(core.KindMacXCode).
		Executable(env.Executable).
		Version(version).
		Prefix(prefix).
		Symlinks(links...).
		Build()
}

// Find does nothing; see the package comment.
func (*Locator) Find(core.Reporter) {}
