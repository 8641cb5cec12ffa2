package core

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/richinsley/pylocate/internal/pathutil"
)

// EnvManager is a tool binary that owns or creates environments.
type EnvManager struct {
	Tool       ManagerTool `json:"tool" msgpack:"tool"`
	Executable string      `json:"executable" msgpack:"executable"`
	Version    string      `json:"version,omitempty" msgpack:"version,omitempty"`
}

// PythonEnvironment is one discovered environment. Every populated field is
// known to be accurate; an empty field is unknown, not absent.
type PythonEnvironment struct {
	// DisplayName is supplied by the tool, e.g. the Windows registry.
	DisplayName string `json:"displayName,omitempty" msgpack:"displayName,omitempty"`
	// Name is mostly set for conda and pyenv-virtualenv environments.
	Name string `json:"name,omitempty" msgpack:"name,omitempty"`
	// Executable may be empty for conda environments without python.
	Executable string       `json:"executable,omitempty" msgpack:"executable,omitempty"`
	Kind       Kind         `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Version    string       `json:"version,omitempty" msgpack:"version,omitempty"`
	Prefix     string       `json:"prefix,omitempty" msgpack:"prefix,omitempty"`
	Manager    *EnvManager  `json:"manager,omitempty" msgpack:"manager,omitempty"`
	Project    string       `json:"project,omitempty" msgpack:"project,omitempty"`
	Arch       Architecture `json:"arch,omitempty" msgpack:"arch,omitempty"`
	Symlinks   []string     `json:"symlinks,omitempty" msgpack:"symlinks,omitempty"`
}

// Clone returns a deep copy of e.
func (e *PythonEnvironment) Clone() *PythonEnvironment {
	if e == nil {
		return nil
	}
	c := *e
	c.Symlinks = slices.Clone(e.Symlinks)
	if e.Manager != nil {
		m := *e.Manager
		c.Manager = &m
	}
	return &c
}

// String renders the environment for the text reporter, listing symlinks
// shortest first.
func (e *PythonEnvironment) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Environment (%s)\n", e.Kind)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "   %-12s: %s\n", label, value)
		}
	}
	line("Display-Name", e.DisplayName)
	line("Name", e.Name)
	line("Executable", e.Executable)
	line("Version", e.Version)
	line("Prefix", e.Prefix)
	line("Project", e.Project)
	line("Architecture", string(e.Arch))
	if e.Manager != nil {
		line("Manager", fmt.Sprintf("%s, %s", e.Manager.Tool, e.Manager.Executable))
	}
	links := slices.Clone(e.Symlinks)
	slices.SortStableFunc(links, func(a, b string) int { return len(a) - len(b) })
	for i, l := range links {
		if i == 0 {
			line("Symlinks", l)
		} else {
			fmt.Fprintf(&b, "   %-12s: %s\n", "", l)
		}
	}
	return b.String()
}

// Builder assembles a PythonEnvironment. Paths are case-normalized, the
// executable is folded into the symlink set and the shortest alias becomes
// the executable.
type Builder struct {
	env PythonEnvironment
}

// NewBuilder starts an environment of the given kind.
func NewBuilder(kind Kind) *Builder {
	return &Builder{env: PythonEnvironment{Kind: kind}}
}

// BuilderFrom starts a builder from an existing environment.
func BuilderFrom(env *PythonEnvironment) *Builder {
	return &Builder{env: *env.Clone()}
}

func (b *Builder) DisplayName(name string) *Builder {
	b.env.DisplayName = name
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.env.Name = name
	return b
}

// Executable sets the interpreter path, case-normalizing its directory.
func (b *Builder) Executable(exe string) *Builder {
	b.env.Executable = normExecutable(exe)
	return b
}

// normExecutable normalizes the directory of exe but keeps the file name as
// given, since the name of an alias is meaningful.
func normExecutable(exe string) string {
	if exe == "" {
		return ""
	}
	return filepath.Join(pathutil.NormCase(filepath.Dir(exe)), filepath.Base(exe))
}

func (b *Builder) Version(version string) *Builder {
	b.env.Version = version
	return b
}

// Prefix sets the case-normalized sys.prefix.
func (b *Builder) Prefix(prefix string) *Builder {
	b.env.Prefix = pathutil.NormCase(prefix)
	return b
}

// Manager records the tool that owns the environment. m is not copied
// until Build.
func (b *Builder) Manager(m *EnvManager) *Builder {
	b.env.Manager = m
	return b
}

// Project sets the case-normalized project folder.
func (b *Builder) Project(project string) *Builder {
	b.env.Project = pathutil.NormCase(project)
	return b
}

func (b *Builder) Arch(arch Architecture) *Builder {
	b.env.Arch = arch
	return b
}

// Symlinks adds to the known alias set, normalized like Executable.
func (b *Builder) Symlinks(links ...string) *Builder {
	for _, link := range links {
		b.env.Symlinks = append(b.env.Symlinks, normExecutable(link))
	}
	return b
}

// Build returns a fresh environment. Symlinks are deduplicated and sorted,
// and Executable becomes the shortest of them.
func (b *Builder) Build() *PythonEnvironment {
	env := b.env.Clone()
	all := slices.Clone(env.Symlinks)
	if env.Executable != "" {
		all = append(all, env.Executable)
	}
	all = pathutil.Unique(all)
	if len(all) == 0 {
		all = nil
	}
	env.Symlinks = all
	if env.Executable != "" {
		if exe := shortestExecutable(env.Kind, all); exe != "" {
			env.Executable = exe
		}
	}
	return env
}

// shortestExecutable picks the alias most likely to be user friendly. Windows
// Store environments prefer the WindowsApps\python3.X.exe alias.
func shortestExecutable(kind Kind, exes []string) string {
	if len(exes) == 0 {
		return ""
	}
	if kind == KindWindowsStore {
		for _, e := range exes {
			if isWindowsAppsAlias(e) {
				return e
			}
		}
	}
	sorted := slices.Clone(exes)
	slices.SortStableFunc(sorted, func(a, b string) int { return len(a) - len(b) })
	return sorted[0]
}

func isWindowsAppsAlias(exe string) bool {
	s := strings.ReplaceAll(exe, `\`, "/")
	dir, file := s, ""
	if i := strings.LastIndex(s, "/"); i >= 0 {
		dir, file = s[:i], s[i+1:]
	}
	return strings.Contains(s, "AppData") && strings.Contains(s, "Local") &&
		strings.Contains(s, "Microsoft") && strings.HasSuffix(dir, "WindowsApps") &&
		strings.HasPrefix(strings.ToLower(file), "python3.")
}

// EnvironmentKey is the identity used to de-duplicate reports: the
// executable, else a conda prefix's default interpreter path, else the
// prefix. An empty key means the environment cannot be reported.
func EnvironmentKey(env *PythonEnvironment) string {
	switch {
	case env.Executable != "":
		return env.Executable
	case env.Prefix == "":
		return ""
	case env.Kind == KindConda:
		if runtime.GOOS == "windows" {
			return filepath.Join(env.Prefix, "python.exe")
		}
		return filepath.Join(env.Prefix, "bin", "python")
	default:
		return env.Prefix
	}
}
