package conda

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const appName = "conda"

// EnvironmentPaths gathers every conda environment prefix reachable from
// the well known locations plus extra install folders, re-validated on disk.
func EnvironmentPaths(vars *EnvVariables, extra ...string) []string {
	sources := []func() []string{
		func() []string { return environmentsFromEnvironmentsTxt(vars) },
		func() []string {
			if rc := CondarcFromEnv(vars); rc != nil {
				return rc.EnvDirs
			}
			return nil
		},
		func() []string { return environmentsFromKnownPaths(vars) },
		func() []string { return KnownInstallLocations(vars) },
		func() []string { return extra },
	}
	roots := gather(len(sources), func(i int) []string { return sources[i]() })
	for i, r := range roots {
		roots[i] = pathutil.NormCase(r)
	}
	roots = pathutil.Unique(roots)

	envs := gather(len(roots), func(i int) []string { return environmentsIn(roots[i], vars) })
	return pathutil.Unique(envs)
}

// gather runs fn for 0..n-1 concurrently and concatenates the results.
func gather(n int, fn func(i int) []string) []string {
	var (
		mu  sync.Mutex
		out []string
		g   errgroup.Group
	)
	for i := range n {
		g.Go(func() error {
			found := fn(i)
			mu.Lock()
			out = append(out, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// environmentsIn classifies dir as an install (itself, its envs and the
// dirs of its own condarc), a single environment, a folder holding envs/,
// or an envs folder itself.
func environmentsIn(dir string, vars *EnvVariables) []string {
	var envs []string
	switch {
	case IsCondaInstall(dir):
		envs = append(envs, dir)
		envs = append(envs, condaEnvsUnder(filepath.Join(dir, "envs"))...)
		if rc := CondarcFromPath(dir, vars); rc != nil {
			for _, d := range rc.EnvDirs {
				envs = append(envs, condaEnvsUnder(d)...)
			}
		}
	case IsCondaEnv(dir):
		envs = append(envs, dir)
	case pathutil.Exists(filepath.Join(dir, "envs")):
		envs = append(envs, condaEnvsUnder(filepath.Join(dir, "envs"))...)
	default:
		envs = append(envs, condaEnvsUnder(dir)...)
	}
	return pathutil.Unique(envs)
}

func condaEnvsUnder(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var envs []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if IsCondaEnv(p) {
			envs = append(envs, p)
		}
	}
	return envs
}

// environmentsFromEnvironmentsTxt reads ~/.conda/environments.txt, which
// conda appends to on every create. Entries may be stale.
func environmentsFromEnvironmentsTxt(vars *EnvVariables) []string {
	if vars.Home == "" {
		return nil
	}
	f, err := os.Open(filepath.Join(vars.Home, ".conda", "environments.txt"))
	if err != nil {
		return nil
	}
	defer f.Close()
	var envs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			envs = append(envs, pathutil.NormCase(line))
		}
	}
	return envs
}

func environmentsFromKnownPaths(vars *EnvVariables) []string {
	var envs []string
	if home := vars.Home; home != "" {
		known := []string{
			filepath.Join(home, ".conda", "envs"),
			vars.rebase("/opt/conda/envs"),
			filepath.Join(home, "AppData", "Local", "conda", "envs"),
			filepath.Join(home, "AppData", "Local", "conda", "conda", "envs"),
			filepath.Join(home, "envs"),
			filepath.Join(home, "my-envs"),
		}
		if runtime.GOOS == "windows" {
			known = append(known, `C:\Anaconda\envs`)
		}
		if vars.env != nil {
			if dir := interp.NewPlatformdirs(vars.env, appName, false).UserDataDir(); dir != "" {
				known = append(known, filepath.Join(dir, "envs"))
			}
		}
		if vars.CondaEnvsPath != "" {
			for _, p := range filepath.SplitList(vars.CondaEnvsPath) {
				known = append(known, vars.expand(p))
			}
		}
		for _, dir := range known {
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if p := filepath.Join(dir, e.Name()); pathutil.IsDir(p) {
					envs = append(envs, p)
				}
			}
		}
	}
	envs = append(envs, vars.KnownGlobalLocations...)
	slog.Debug("conda environments in known paths", "count", len(envs))
	return envs
}

// KnownInstallLocations lists the conventional conda install folders,
// including Homebrew casks and the CONDA_* variables.
func KnownInstallLocations(vars *EnvVariables) []string {
	if runtime.GOOS == "windows" {
		return knownWindowsInstallLocations(vars)
	}
	flavors := []string{"anaconda", "anaconda3", "miniconda", "miniconda3", "miniforge", "miniforge3", "micromamba"}
	var known []string
	for _, dir := range []string{"/opt", "/usr/share", "/usr/local", "/usr", "/"} {
		for _, f := range flavors {
			known = append(known, vars.rebase(filepath.Join(dir, f)))
		}
	}
	for _, cask := range []string{"/opt/homebrew/Caskroom", "/usr/local/Caskroom"} {
		for _, f := range []string{"miniforge", "miniconda", "anaconda"} {
			known = append(known, vars.rebase(filepath.Join(cask, f, "base")))
		}
	}
	for _, v := range []string{vars.CondaRoot, vars.CondaPrefix, vars.CondaDir, vars.Conda, vars.MambaRootPrefix} {
		if v != "" {
			known = append(known, vars.expand(v))
		}
	}
	if home := vars.Home; home != "" {
		for _, f := range flavors {
			known = append(known, filepath.Join(home, f))
		}
		known = append(known, filepath.Join(home, ".conda"))
	}
	return pathutil.Unique(known)
}

func knownWindowsInstallLocations(vars *EnvVariables) []string {
	flavors := []string{"anaconda3", "miniconda3", "miniforge3", "micromamba"}
	var known []string
	for _, base := range []string{vars.ProgramData, vars.AllUsersProfile, vars.UserProfile} {
		if base == "" {
			continue
		}
		for _, f := range flavors {
			known = append(known, filepath.Join(base, f))
		}
	}
	if drive := vars.HomeDrive; drive != "" {
		if drive[len(drive)-1] == ':' {
			drive += `\`
		}
		for _, f := range []string{"anaconda3", "miniconda", "miniforge3", "micromamba"} {
			known = append(known, filepath.Join(drive, f))
		}
	}
	for _, v := range []string{vars.CondaRoot, vars.CondaPrefix, vars.Conda, vars.MambaRootPrefix} {
		if v != "" {
			known = append(known, vars.expand(v))
		}
	}
	if home := vars.Home; home != "" {
		for _, f := range flavors {
			known = append(known, filepath.Join(home, f))
		}
		known = append(known, filepath.Join(home, ".conda"), filepath.Join(home, "AppData", "Local", "conda", "conda"))
	}
	for i, p := range known {
		known[i] = pathutil.NormCase(p)
	}
	return pathutil.Unique(known)
}
