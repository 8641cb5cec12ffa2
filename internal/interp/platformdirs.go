package interp

import (
	"path/filepath"
	"runtime"

	"github.com/richinsley/pylocate/internal/core"
)

// Platformdirs mirrors the directory conventions of Python's platformdirs
// package, which tools such as poetry and conda use for their own files.
type Platformdirs struct {
	AppName string
	Roaming bool
	env     core.Environment
	goos    string
}

// NewPlatformdirs returns the directories of appName for the current OS.
// roaming selects %APPDATA% over %LOCALAPPDATA% on Windows.
func NewPlatformdirs(env core.Environment, appName string, roaming bool) *Platformdirs {
	return &Platformdirs{AppName: appName, Roaming: roaming, env: env, goos: runtime.GOOS}
}

func (p *Platformdirs) getenv(keys ...string) string {
	for _, k := range keys {
		if v := p.env.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (p *Platformdirs) home() string {
	if h := p.env.Getenv("HOME"); h != "" {
		return h
	}
	return p.env.UserHome()
}

// UserCacheDir returns "" when the base directory cannot be determined.
func (p *Platformdirs) UserCacheDir() string {
	switch p.goos {
	case "windows":
		if base := p.getenv("CSIDL_LOCAL_APPDATA", "LOCALAPPDATA"); base != "" {
			return filepath.Join(base, p.AppName, "Cache")
		}
	case "darwin":
		if home := p.home(); home != "" {
			return filepath.Join(home, "Library", "Caches", p.AppName)
		}
	default:
		if base := p.getenv("XDG_CACHE_HOME"); base != "" {
			return filepath.Join(base, p.AppName)
		}
		if home := p.home(); home != "" {
			return filepath.Join(home, ".cache", p.AppName)
		}
	}
	return ""
}

// UserConfigDir honours XDG_CONFIG_HOME on Linux and is UserDataDir
// elsewhere.
func (p *Platformdirs) UserConfigDir() string {
	if p.goos == "windows" || p.goos == "darwin" {
		return p.UserDataDir()
	}
	if base := p.getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, p.AppName)
	}
	if home := p.home(); home != "" {
		return filepath.Join(home, ".config", p.AppName)
	}
	return ""
}

// UserDataDir returns "" when the base directory cannot be determined.
func (p *Platformdirs) UserDataDir() string {
	switch p.goos {
	case "windows":
		var base string
		if p.Roaming {
			base = p.getenv("CSIDL_APPDATA", "APPDATA")
		} else {
			base = p.getenv("CSIDL_LOCAL_APPDATA", "LOCALAPPDATA")
		}
		if base != "" {
			return filepath.Join(base, p.AppName)
		}
	case "darwin":
		if home := p.home(); home != "" {
			return filepath.Join(home, "Library", "Application Support", p.AppName)
		}
	default:
		if base := p.getenv("XDG_DATA_HOME"); base != "" {
			return filepath.Join(base, p.AppName)
		}
		if home := p.home(); home != "" {
			return filepath.Join(home, ".local", "share", p.AppName)
		}
	}
	return ""
}
