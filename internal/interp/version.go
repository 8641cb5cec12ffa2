package interp

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

var pyVersionDefine = regexp.MustCompile(`#define\s+PY_VERSION\s+"((\d+\.?)*.*)"`)

// VersionFromHeaders reads PY_VERSION from the patchlevel.h of the
// installation at prefix (or its bin directory).
func VersionFromHeaders(prefix string) string {
	return versionFromHeaders(prefix, -1, -1)
}

// VersionFromHeadersFor is VersionFromHeaders for a prefix that may hold
// headers of several versions; include/pythonX.Y is preferred.
func VersionFromHeadersFor(prefix string, major, minor int) string {
	return versionFromHeaders(prefix, major, minor)
}

// versionFromHeaders prefers include/pythonX.Y when the major and minor
// versions are known.
func versionFromHeaders(prefix string, major, minor int) string {
	if pathutil.EndsWith(prefix, BinDir()) {
		prefix = filepath.Dir(prefix)
	}
	for _, headers := range []string{filepath.Join(prefix, "Headers"), filepath.Join(prefix, "include")} {
		candidates := []string{filepath.Join(headers, "patchlevel.h")}
		if major >= 0 && minor >= 0 {
			candidates = append(candidates, filepath.Join(headers, fmt.Sprintf("python%d.%d", major, minor), "patchlevel.h"))
		}
		if entries, err := os.ReadDir(headers); err == nil {
			for _, e := range entries {
				if e.IsDir() {
					candidates = append(candidates, filepath.Join(headers, e.Name(), "patchlevel.h"))
				}
			}
		}
		for _, c := range candidates {
			data, err := os.ReadFile(c)
			if err != nil {
				continue
			}
			if m := pyVersionDefine.FindSubmatch(data); m != nil {
				return string(m[1])
			}
		}
	}
	return ""
}

// VersionFromPyVenvCfg returns the version recorded in the pyvenv.cfg of
// prefix.
func VersionFromPyVenvCfg(prefix string) string {
	if cfg := core.FindPyVenvCfg(prefix); cfg != nil {
		return cfg.Version
	}
	return ""
}

// VersionFromPrefix tries pyvenv.cfg, then the header files.
func VersionFromPrefix(prefix string) string {
	if v := VersionFromPyVenvCfg(prefix); v != "" {
		return v
	}
	return VersionFromHeaders(prefix)
}

// VersionFromCreatorForVirtualEnv works out the version of a virtual
// environment without running it: from its own headers, else from the headers
// of the interpreter its bin/python links to. pyvenv.cfg is only trusted on
// Windows when it was written together with the executable.
func VersionFromCreatorForVirtualEnv(prefix string) string {
	if v := VersionFromHeaders(prefix); v != "" {
		return v
	}
	bin := BinDir()
	creator := creatorExecutable(filepath.Join(prefix, bin, "python"))
	if creator == "" {
		if runtime.GOOS == "windows" {
			return versionFromCfgWrittenWithExecutable(prefix)
		}
		return ""
	}
	if pathutil.HasPathPrefix(creator, prefix) {
		resolved, ok := pathutil.ResolveSymlink(creator)
		if !ok {
			return ""
		}
		creator = resolved
	}
	parent := filepath.Dir(creator)
	if filepath.Base(parent) != bin {
		slog.Debug("creator of virtual environment is not in a bin directory", "prefix", prefix, "creator", creator)
		return ""
	}
	major, minor := -1, -1
	if cfg := core.FindPyVenvCfg(prefix); cfg != nil {
		major, minor = cfg.VersionMajor, cfg.VersionMinor
	}
	return versionFromHeaders(filepath.Dir(parent), major, minor)
}

func creatorExecutable(exe string) string {
	if filepath.Base(filepath.Dir(exe)) != BinDir() {
		return ""
	}
	target, ok := pathutil.ResolveSymlink(exe)
	if !ok || !pathutil.IsFile(target) {
		return ""
	}
	return target
}

func versionFromCfgWrittenWithExecutable(prefix string) string {
	cfg := core.FindPyVenvCfg(prefix)
	if cfg == nil {
		return ""
	}
	cfgInfo, err := os.Stat(filepath.Join(prefix, "pyvenv.cfg"))
	if err != nil {
		return ""
	}
	exeInfo, err := os.Stat(filepath.Join(prefix, "Scripts", "python.exe"))
	if err != nil {
		return ""
	}
	delta := cfgInfo.ModTime().Sub(exeInfo.ModTime())
	if delta < 0 {
		delta = -delta
	}
	if delta < time.Minute {
		return cfg.Version
	}
	return ""
}
