package conda

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/richinsley/pylocate/internal/pathutil"
)

// Condarc is the merged view of one or more conda rc files.
type Condarc struct {
	Files   []string
	EnvDirs []string
}

type condarcDocument struct {
	EnvsDirs []string `yaml:"envs_dirs"`
	// envs_path is the older alias of envs_dirs.
	EnvsPath []string `yaml:"envs_path"`
}

var (
	condarcNames      = []string{".condarc", "condarc", ".condarc.d"}
	condarcExtensions = []string{".yaml", ".yml"}
)

// CondarcFromEnv reads every rc file on the conda search path. It returns
// nil when none exists.
func CondarcFromEnv(vars *EnvVariables) *Condarc {
	merged := &Condarc{}
	for _, p := range CondarcSearchPaths(vars) {
		if rc := CondarcFromPath(p, vars); rc != nil {
			merged.merge(rc)
		}
	}
	if len(merged.Files) == 0 && len(merged.EnvDirs) == 0 {
		return nil
	}
	return merged
}

// CondarcFromPath reads the rc file at path, or every rc-looking file inside
// path when it is a directory (conda install roots and condarc.d).
func CondarcFromPath(path string, vars *EnvVariables) *Condarc {
	merged := &Condarc{}
	switch {
	case pathutil.IsFile(path):
		merged.merge(parseCondarcFile(path, vars))
	case pathutil.IsDir(path):
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil
		}
		for _, e := range entries {
			file := filepath.Join(path, e.Name())
			if !isCondarcName(e.Name()) || !pathutil.IsFile(file) {
				continue
			}
			merged.merge(parseCondarcFile(file, vars))
		}
	}
	if len(merged.Files) == 0 && len(merged.EnvDirs) == 0 {
		return nil
	}
	slog.Debug("read condarc", "path", path, "envs_dirs", merged.EnvDirs)
	return merged
}

func isCondarcName(name string) bool {
	lower := strings.ToLower(name)
	return slices.Contains(condarcNames, lower) ||
		slices.Contains(condarcExtensions, filepath.Ext(lower)) ||
		strings.Contains(lower, "condarc")
}

func (c *Condarc) merge(other *Condarc) {
	c.Files = append(c.Files, other.Files...)
	c.EnvDirs = append(c.EnvDirs, other.EnvDirs...)
}

// parseCondarcFile keeps only env dirs that exist on disk. A file that
// fails to parse still counts as found.
func parseCondarcFile(file string, vars *EnvVariables) *Condarc {
	rc := &Condarc{Files: []string{file}}
	data, err := os.ReadFile(file)
	if err != nil {
		return rc
	}
	for _, dir := range parseCondarcContents(data, vars) {
		if pathutil.IsDir(dir) {
			rc.EnvDirs = append(rc.EnvDirs, dir)
		}
	}
	return rc
}

// parseCondarcContents returns the expanded envs_dirs and envs_path entries
// in file order.
func parseCondarcContents(data []byte, vars *EnvVariables) []string {
	var doc condarcDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Debug("failed to parse condarc", "error", err)
		return nil
	}
	var dirs []string
	for _, item := range slices.Concat(doc.EnvsDirs, doc.EnvsPath) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		dirs = append(dirs, vars.expand(item))
	}
	return dirs
}

// CondarcSearchPaths lists the places conda reads configuration from, in
// conda's own order: system, root, XDG, user, prefix and explicit overrides.
func CondarcSearchPaths(vars *EnvVariables) []string {
	var paths []string
	if runtime.GOOS == "windows" {
		drives := []string{"C:"}
		if vars.SystemDrive != "" && !strings.EqualFold(vars.SystemDrive, "C:") {
			drives = append(drives, strings.TrimSuffix(vars.SystemDrive, `\`))
		}
		for _, drive := range drives {
			for _, dir := range []string{"conda", "miniconda", "miniconda3"} {
				base := drive + `\ProgramData\` + dir
				paths = append(paths, filepath.Join(base, ".condarc"), filepath.Join(base, "condarc"), filepath.Join(base, "condarc.d"))
			}
			paths = append(paths, drive+`\ProgramData\conda\.mambarc`)
		}
	} else {
		for _, dir := range []string{"/etc/conda", "/var/lib/conda", "/etc/miniconda", "/var/lib/miniconda", "/etc/miniconda3", "/var/lib/miniconda3"} {
			for _, name := range []string{".condarc", "condarc", "condarc.d"} {
				paths = append(paths, vars.rebase(filepath.Join(dir, name)))
			}
			if strings.HasPrefix(dir, "/etc") {
				paths = append(paths, vars.rebase(filepath.Join(dir, "mambarc")))
			} else {
				paths = append(paths, vars.rebase(filepath.Join(dir, ".mambarc")))
			}
		}
	}
	if vars.CondaRoot != "" {
		root := vars.expand(vars.CondaRoot)
		paths = append(paths, filepath.Join(root, ".condarc"), filepath.Join(root, "condarc"), filepath.Join(root, ".condarc.d"), filepath.Join(root, ".mambarc"))
	}
	if vars.XDGConfigHome != "" {
		x := vars.XDGConfigHome
		paths = append(paths, filepath.Join(x, ".condarc"), filepath.Join(x, "condarc"), filepath.Join(x, ".condarc.d"), filepath.Join(x, ".mambarc"))
	}
	if home := vars.Home; home != "" {
		cfg := filepath.Join(home, ".config", "conda")
		dot := filepath.Join(home, ".conda")
		paths = append(paths,
			filepath.Join(cfg, ".condarc"), filepath.Join(cfg, "condarc"), filepath.Join(cfg, "condarc.d"),
			filepath.Join(dot, ".condarc"), filepath.Join(dot, "condarc"), filepath.Join(dot, "condarc.d"),
			filepath.Join(home, ".condarc"), filepath.Join(home, "condarc"), filepath.Join(home, "condarc.d"),
			filepath.Join(home, ".mambarc"),
		)
	}
	if vars.CondaPrefix != "" {
		prefix := vars.expand(vars.CondaPrefix)
		paths = append(paths, filepath.Join(prefix, ".condarc"), filepath.Join(prefix, "condarc"), filepath.Join(prefix, ".condarc.d"), filepath.Join(prefix, ".mambarc"))
	}
	if vars.CondaDir != "" {
		dir := vars.expand(vars.CondaDir)
		paths = append(paths, filepath.Join(dir, ".condarc"), filepath.Join(dir, "condarc"), filepath.Join(dir, ".condarc.d"))
	}
	if vars.Condarc != "" {
		paths = append(paths, vars.expand(vars.Condarc))
	}
	if vars.Mambarc != "" {
		paths = append(paths, vars.expand(vars.Mambarc))
	}
	return pathutil.Unique(paths)
}
