package conda

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Environment is what the filesystem tells us about one conda environment.
type Environment struct {
	Prefix     string
	Executable string
	Version    string
	CondaDir   string
	Arch       core.Architecture
}

// EnvironmentInfo inspects the environment at prefix. When manager is nil
// the owning install is worked out from the environment's own metadata.
func EnvironmentInfo(prefix string, manager *Manager) *Environment {
	if !IsCondaEnv(prefix) {
		return nil
	}
	env := &Environment{Prefix: prefix}
	if manager != nil {
		env.CondaDir = manager.CondaDir
	} else {
		env.CondaDir = InstallUsedToCreate(prefix)
	}
	if env.CondaDir != "" && !pathutil.Exists(env.CondaDir) {
		slog.Warn("conda install folder does not exist", "conda_dir", env.CondaDir, "prefix", prefix)
		env.CondaDir = ""
	}
	env.Executable = interp.FindExecutable(prefix)
	if env.Executable == "" {
		return env
	}
	if pkg := ReadPackageInfo(prefix, PackagePython); pkg != nil {
		env.Version = pkg.Version
		env.Arch = pkg.Arch
	}
	return env
}

// PythonEnvironment converts env into a report. Environments inside the
// install's envs folder, and the install itself, are named; others are
// addressed by prefix only.
func (e *Environment) PythonEnvironment(condaDir string, manager *core.EnvManager) *core.PythonEnvironment {
	name := filepath.Base(e.Prefix)
	if IsCondaInstall(e.Prefix) {
		name = "base"
	}
	if condaDir != "" && !pathutil.HasPathPrefix(e.Prefix, condaDir) {
		name = ""
	}
	return core.NewBuilder(core.KindConda).
		Executable(e.Executable).
		Version(e.Version).
		Prefix(e.Prefix).
		Arch(e.Arch).
		Symlinks(interp.FindExecutables(e.Prefix)...).
		Name(name).
		Manager(manager).
		Build()
}

// InstallUsedToCreate returns the conda install that created the
// environment at prefix, or "".
//
// conda-meta/history records the creating command, e.g.
//
//	# cmd: /Users/me/miniconda3/bin/conda create -n demo
//	# cmd: C:\miniconda3\Scripts\conda-script.py create -p C:\envs\demo
func InstallUsedToCreate(prefix string) string {
	if IsCondaInstall(prefix) {
		return prefix
	}
	if parent := filepath.Dir(filepath.Dir(prefix)); IsCondaInstall(parent) {
		return parent
	}
	f, err := os.Open(filepath.Join(prefix, "conda-meta", "history"))
	if err != nil {
		return ""
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, "# cmd:") || !strings.Contains(lower, " create -") {
			continue
		}
		if dir := condaDirFromCmd(line); dir != "" && IsCondaInstall(dir) {
			return dir
		}
		return ""
	}
	return ""
}

// condaDirFromCmd extracts the install folder from a history `# cmd:` line.
// The command is either <install>/bin/conda, <install>\Scripts\conda-script.py
// or <install>/lib/pythonX.Y/site-packages/conda/__main__.py.
func condaDirFromCmd(line string) string {
	lower := strings.ToLower(line)
	start := strings.Index(lower, "# cmd:")
	end := strings.Index(lower, " create -")
	if start < 0 || end < 0 || end <= start+len("# cmd:") {
		return ""
	}
	exe := strings.TrimSpace(line[start+len("# cmd:") : end])
	if exe == "" {
		return ""
	}
	if target, ok := pathutil.ResolveSymlink(exe); ok {
		exe = target
	}
	exe = filepath.FromSlash(exe)
	dir := filepath.Dir(exe)
	if dir == "." {
		return ""
	}
	switch strings.ToLower(filepath.Base(dir)) {
	case "bin", "scripts":
		return pathutil.NormCase(filepath.Dir(dir))
	}
	if strings.Contains(dir, "site-packages") && strings.Contains(dir, "lib") {
		for strings.Contains(dir, "lib") && !strings.HasSuffix(dir, "lib") {
			dir = filepath.Dir(dir)
		}
		if strings.HasSuffix(dir, "lib") {
			dir = filepath.Dir(dir)
		}
	}
	return pathutil.NormCase(dir)
}
