package core

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/richinsley/pylocate/internal/pathutil"
)

// Environment is the view of the host that locators consult. Tests swap it
// for a fixture tree.
type Environment interface {
	UserHome() string
	// Root is a test-only override that rebases absolute system paths.
	// It is empty in production.
	Root() string
	Getenv(key string) string
	// KnownGlobalSearchLocations are PATH entries plus well known system
	// bin directories.
	KnownGlobalSearchLocations() []string
}

// OSEnvironment reads the real process environment. The search locations
// are computed once.
type OSEnvironment struct {
	once      sync.Once
	locations []string
}

// NewOSEnvironment returns an Environment backed by the running process.
func NewOSEnvironment() *OSEnvironment {
	return &OSEnvironment{}
}

// UserHome returns the case-normalized home directory, or "" when unknown.
func (e *OSEnvironment) UserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return pathutil.NormCase(home)
}

func (e *OSEnvironment) Root() string { return "" }

// Getenv reads the process environment.
func (e *OSEnvironment) Getenv(key string) string {
	return os.Getenv(key)
}

// KnownGlobalSearchLocations returns the PATH entries followed by the usual
// system bin folders, without duplicates.
func (e *OSEnvironment) KnownGlobalSearchLocations() []string {
	e.once.Do(func() {
		e.locations = searchLocations(filepath.SplitList(os.Getenv("PATH")), e.UserHome())
	})
	return e.locations
}

var unixSystemBinDirs = []string{
	"/bin", "/etc", "/lib", "/lib/x86_64-linux-gnu", "/lib64", "/sbin",
	"/snap/bin", "/usr/bin", "/usr/games", "/usr/include", "/usr/lib",
	"/usr/lib/x86_64-linux-gnu", "/usr/lib64", "/usr/libexec", "/usr/local",
	"/usr/local/bin", "/usr/local/etc", "/usr/local/games", "/usr/local/lib",
	"/usr/local/sbin", "/usr/sbin", "/usr/share", "/home/bin", "/home/sbin",
	"/opt", "/opt/bin", "/opt/sbin",
}

func searchLocations(pathEntries []string, home string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range pathEntries {
		if runtime.GOOS == "windows" && !pathutil.Exists(p) {
			continue
		}
		add(p)
	}
	if runtime.GOOS != "windows" {
		for _, p := range unixSystemBinDirs {
			add(p)
		}
		if home != "" {
			add(filepath.Join(home, ".local", "bin"))
		}
	}
	return out
}

// StaticEnvironment is a fixed Environment, used by tests and by callers that
// want to scan a sandbox.
type StaticEnvironment struct {
	Home      string
	RootDir   string
	Vars      map[string]string
	Locations []string
}

func (e *StaticEnvironment) UserHome() string { return e.Home }

func (e *StaticEnvironment) Root() string { return e.RootDir }

func (e *StaticEnvironment) Getenv(key string) string { return e.Vars[key] }

func (e *StaticEnvironment) KnownGlobalSearchLocations() []string { return e.Locations }
