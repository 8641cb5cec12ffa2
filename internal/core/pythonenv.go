package core

import (
	"path/filepath"
	"slices"

	"github.com/richinsley/pylocate/internal/pathutil"
)

// PythonEnv is the input to identification: an executable plus whatever
// else the caller already knows about it.
type PythonEnv struct {
	Executable string
	Prefix     string
	Version    string
	Symlinks   []string
}

// NewPythonEnv builds a PythonEnv. When prefix is empty it is inferred from
// a pyvenv.cfg next to the executable's bin/Scripts directory.
func NewPythonEnv(executable, prefix, version string) *PythonEnv {
	env := &PythonEnv{
		Executable: executable,
		Prefix:     pathutil.NormCase(prefix),
		Version:    version,
	}
	if env.Prefix == "" {
		if cfg := FindPyVenvCfg(filepath.Dir(executable)); cfg != nil {
			env.Prefix = filepath.Dir(cfg.FilePath)
		}
	}
	return env
}

// AllExecutables returns the executable and every known symlink.
func (e *PythonEnv) AllExecutables() []string {
	return pathutil.Unique(append(slices.Clone(e.Symlinks), e.Executable))
}
