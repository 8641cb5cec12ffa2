package conda

import (
	"log/slog"
	"slices"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// missingEnvironments reports what conda knows about but the filesystem
// scan missed, with hints at which config source was overlooked. Nothing
// here feeds back into discovery results.
func missingEnvironments(vars *EnvVariables, info *Info, known []*core.PythonEnvironment, userProvidedExe bool) (core.MissingCondaEnvironments, bool) {
	knownPrefixes := map[string]bool{}
	for _, e := range known {
		if e.Prefix != "" {
			knownPrefixes[e.Prefix] = true
		}
	}

	manager := info.Manager()
	var missing []string
	for _, p := range info.Envs {
		p = pathutil.NormCase(p)
		if knownPrefixes[p] {
			continue
		}
		if env := EnvironmentInfo(p, manager); env != nil {
			slog.Warn("conda environment not found without spawning conda", "prefix", p, "conda", info.Executable)
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return core.MissingCondaEnvironments{}, false
	}

	rcs := knownCondarcs(vars, known)
	seenFiles := map[string]bool{}
	seenDirs := map[string]bool{}
	for _, rc := range rcs {
		for _, f := range rc.Files {
			seenFiles[f] = true
		}
		for _, d := range rc.EnvDirs {
			seenDirs[d] = true
		}
	}

	event := core.MissingCondaEnvironments{
		Missing:              len(missing),
		UserProvidedCondaExe: userProvidedExe,
		CondaManagerNotFound: !slices.ContainsFunc(known, func(e *core.PythonEnvironment) bool {
			return e.Kind == core.KindConda && e.Manager != nil
		}),
	}
	if info.RootPrefix != "" && !knownPrefixes[info.RootPrefix] {
		slog.Warn("conda root prefix not found", "prefix", info.RootPrefix)
		event.RootPrefixNotFound = true
	}
	if info.CondaPrefix != "" && !knownPrefixes[info.CondaPrefix] {
		slog.Warn("conda prefix not found", "prefix", info.CondaPrefix)
		event.CondaPrefixNotFound = true
	}

	sys := countMissing(vars, seenFiles, seenDirs, missing, nonEmpty(info.SysRCPath), "sys")
	user := countMissing(vars, seenFiles, seenDirs, missing, nonEmpty(info.UserRCPath), "user")
	other := countMissing(vars, seenFiles, seenDirs, missing, info.ConfigFiles, "other")

	event.SysRcNotFound = sys.rcNotFound > 0
	event.UserRcNotFound = user.rcNotFound > 0
	event.OtherRcNotFound = other.rcNotFound
	event.MissingEnvDirsFromSysRc = sys.envDirsMissing
	event.MissingEnvDirsFromUserRc = user.envDirsMissing
	event.MissingEnvDirsFromOtherRc = other.envDirsMissing
	event.MissingFromSysRcEnvDirs = sys.envsInMissingDirs
	event.MissingFromUserRcEnvDirs = user.envsInMissingDirs
	event.MissingFromOtherRcEnvDirs = other.envsInMissingDirs
	return event, true
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func knownCondarcs(vars *EnvVariables, known []*core.PythonEnvironment) []*Condarc {
	var rcs []*Condarc
	if rc := CondarcFromEnv(vars); rc != nil {
		rcs = append(rcs, rc)
	}
	for _, e := range known {
		if e.Prefix == "" || !IsCondaInstall(e.Prefix) {
			continue
		}
		if rc := CondarcFromPath(e.Prefix, vars); rc != nil {
			rcs = append(rcs, rc)
		}
	}
	return rcs
}

type missingCounts struct {
	rcNotFound        int
	envsInMissingDirs int
	envDirsMissing    int
}

func countMissing(vars *EnvVariables, seenFiles, seenDirs map[string]bool, missing, configFiles []string, kind string) missingCounts {
	var c missingCounts
	for _, rc := range configFiles {
		if !pathutil.Exists(rc) || seenFiles[rc] {
			continue
		}
		seenFiles[rc] = true
		c.rcNotFound++
		slog.Warn("condarc not found by discovery", "type", kind, "path", rc)

		cfg := CondarcFromPath(rc, vars)
		if cfg == nil {
			continue
		}
		for _, dir := range cfg.EnvDirs {
			if !seenDirs[dir] {
				c.envDirsMissing++
				slog.Warn("conda env dir missing from discovered rc files", "type", kind, "dir", dir)
			}
			for _, env := range missing {
				if pathutil.HasPathPrefix(env, dir) {
					c.envsInMissingDirs++
				}
			}
		}
	}
	return c
}
