// Package homebrew locates Python formulae installed by Homebrew on macOS
// (Apple Silicon and Intel) and Linux.
package homebrew

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/venv"
	"github.com/richinsley/pylocate/internal/locators/virtualenv"
	"github.com/richinsley/pylocate/internal/pathutil"
)

var (
	fullVersion  = regexp.MustCompile(`/(\d+\.\d+\.\d+)/`)
	formulaMinor = regexp.MustCompile(`/python@((\d+\.?)*)/`)
)

// install is one Homebrew prefix. Interpreters resolving under cellar belong
// to it and are reported through bin.
type install struct {
	prefix string
	cellar string
	bin    string
	// links are known alias paths relative to prefix.
	links []string
}

var installs = []install{
	{
		prefix: "/opt/homebrew",
		cellar: "/opt/homebrew/Cellar",
		links: []string{
			"bin/python{minor}",
			"opt/python@{minor}/bin/python{minor}",
			"opt/python@{minor}/bin/python3",
			"Cellar/python@{minor}/{full}/bin/python{minor}",
			"Cellar/python@{minor}/{full}/Frameworks/Python.framework/Versions/{minor}/bin/python{minor}",
			"Cellar/python@{minor}/{full}/Frameworks/Python.framework/Versions/Current/bin/python{minor}",
			"Frameworks/Python.framework/Versions/{minor}/bin/python{minor}",
			"Frameworks/Python.framework/Versions/Current/bin/python{minor}",
			"opt/python/bin/python3",
			"opt/python/bin/python{minor}",
			"opt/python@3/bin/python3",
			"opt/python@3/bin/python{minor}",
			"opt/python3/bin/python{minor}",
			"bin/python3",
			"bin/python",
		},
	},
	{
		prefix: "/home/linuxbrew/.linuxbrew",
		cellar: "/home/linuxbrew/.linuxbrew",
		links: []string{
			"bin/python3",
			"bin/python{minor}",
			"Cellar/python@{minor}/{full}/bin/python{minor}",
			"Cellar/python@{minor}/{full}/bin/python3",
			"opt/python@{minor}/bin/python{minor}",
			"opt/python@{minor}/bin/python3",
			"opt/python3/bin/python{minor}",
			"opt/python3/bin/python3",
			"opt/python@3/bin/python{minor}",
			"opt/python@3/bin/python3",
		},
	},
	{
		// /usr/local/bin/python is never assumed to be Homebrew's; it is
		// only added when it resolves to the same interpreter.
		prefix: "/usr/local",
		cellar: "/usr/local/Cellar",
		links: []string{
			"opt/python@{minor}/bin/python3",
			"opt/python@{minor}/bin/python{minor}",
			"opt/python@3/bin/python3",
			"opt/python@3/bin/python{minor}",
			"Cellar/python@{minor}/{full}/bin/python{minor}",
			"Cellar/python@{minor}/{full}/Frameworks/Python.framework/Versions/{minor}/bin/python{minor}",
			"bin/python{minor}",
			"bin/python3",
			"bin/python",
		},
	},
}

// Locator finds Homebrew interpreters under the prefixes brew uses on this
// platform.
type Locator struct {
	env core.Environment
}

// New returns a Homebrew locator rooted at env.
func New(env core.Environment) *Locator {
	return &Locator{env: env}
}

// Name returns core.LocatorHomebrew.
func (*Locator) Name() core.LocatorName { return core.LocatorHomebrew }

// SupportedKinds reports KindHomebrew.
func (*Locator) SupportedKinds() []core.Kind { return []core.Kind{core.KindHomebrew} }

// Configure is a no-op; Homebrew has no settings.
func (*Locator) Configure(*core.Configuration) {}

// rebased returns the install table moved under the environment's root.
func (l *Locator) rebased() []install {
	root := l.env.Root()
	out := make([]install, len(installs))
	for i, in := range installs {
		out[i] = install{
			prefix: pathutil.Rebase(root, in.prefix),
			cellar: pathutil.Rebase(root, in.cellar),
			bin:    pathutil.Rebase(root, filepath.Join(in.prefix, "bin")),
			links:  in.links,
		}
	}
	return out
}

// prefixBins lists the Homebrew bin folders present, including
// $HOMEBREW_PREFIX/bin. Several can coexist, e.g. under Rosetta.
func (l *Locator) prefixBins() []string {
	var bins []string
	for _, in := range l.rebased() {
		if pathutil.Exists(in.bin) {
			bins = append(bins, in.bin)
		}
	}
	if prefix := l.env.Getenv("HOMEBREW_PREFIX"); prefix != "" {
		bin := filepath.Join(prefix, "bin")
		if pathutil.Exists(bin) && !slices.Contains(bins, bin) {
			bins = append(bins, bin)
		}
	}
	return bins
}

// Identify accepts executables that resolve into a Homebrew Cellar and
// fills the version from the Cellar path.
func (l *Locator) Identify(env *core.PythonEnv) *core.PythonEnvironment {
	// A venv made from a Homebrew python links into the Cellar too.
	if virtualenv.IsVirtualEnv(env) || venv.IsVenv(env) {
		return nil
	}
	resolved, err := filepath.EvalSymlinks(env.Executable)
	if err != nil {
		return nil
	}
	for _, in := range l.rebased() {
		if pathutil.HasPathPrefix(resolved, in.cellar) {
			return pythonInfo(filepath.Join(in.bin, filepath.Base(env.Executable)), resolved, in)
		}
	}
	return nil
}

// pythonInfo builds the record for the interpreter at resolved, reported
// as exe in the Homebrew bin folder. The prefix is left unknown: it depends
// on what else was installed first and cannot be derived without spawning.
func pythonInfo(exe, resolved string, in install) *core.PythonEnvironment {
	var version string
	if m := fullVersion.FindStringSubmatch(filepath.ToSlash(resolved)); m != nil {
		version = m[1]
	}
	links := []string{resolved}
	if pathutil.Exists(exe) {
		links = append(links, exe)
	}
	if version != "" {
		links = append(links, knownSymlinks(resolved, version, in)...)
	}
	for _, name := range []string{"python", "python3"} {
		if sameTarget(filepath.Join(filepath.Dir(exe), name), resolved) {
			links = append(links, filepath.Join(filepath.Dir(exe), name))
		}
	}
	return core.NewBuilder(core.KindHomebrew).
		Executable(exe).
		Version(version).
		Symlinks(links...).
		Build()
}

func sameTarget(path, resolved string) bool {
	target, err := filepath.EvalSymlinks(path)
	return err == nil && target == resolved
}

// knownSymlinks checks the well known aliases of a formula, then every
// python executable in the folders of the aliases found.
func knownSymlinks(resolved, full string, in install) []string {
	m := formulaMinor.FindStringSubmatch(filepath.ToSlash(resolved))
	if m == nil {
		return nil
	}
	expand := strings.NewReplacer("{minor}", m[1], "{full}", full)
	links := []string{resolved}
	for _, tmpl := range in.links {
		candidate := filepath.Join(in.prefix, filepath.FromSlash(expand.Replace(tmpl)))
		if sameTarget(candidate, resolved) {
			links = append(links, candidate)
		}
	}
	var others []string
	for _, link := range links {
		for _, exe := range interp.FindExecutables(filepath.Dir(link)) {
			if sameTarget(exe, resolved) {
				others = append(others, exe)
			}
		}
	}
	return pathutil.Unique(append(links, others...))
}

// Find reports the python3.X executables of each Homebrew bin folder that
// resolve into a Cellar. python and python3 are skipped in favour of the
// versioned names.
func (l *Locator) Find(reporter core.Reporter) {
	var g errgroup.Group
	for _, bin := range l.prefixBins() {
		for _, exe := range interp.FindExecutables(bin) {
			name := strings.ToLower(filepath.Base(exe))
			if name == "python" || name == "python3" {
				continue
			}
			g.Go(func() error {
				if env := l.Identify(core.NewPythonEnv(exe, "", "")); env != nil {
					reporter.ReportEnvironment(env)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}
