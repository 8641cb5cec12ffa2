package conda

import (
	"encoding/json"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Info is the subset of `conda info --json` used for reconciliation.
type Info struct {
	Executable   string
	Envs         []string
	CondaPrefix  string
	RootPrefix   string
	CondaVersion string
	EnvsDirs     []string
	ConfigFiles  []string
	RCPath       string
	SysRCPath    string
	UserRCPath   string
}

type infoJSON struct {
	Envs         []string `json:"envs"`
	CondaPrefix  string   `json:"conda_prefix"`
	CondaVersion string   `json:"conda_version"`
	EnvsDirs     []string `json:"envs_dirs"`
	EnvsPath     []string `json:"envs_path"`
	ConfigFiles  []string `json:"config_files"`
	RCPath       string   `json:"rc_path"`
	UserRCPath   string   `json:"user_rc_path"`
	SysRCPath    string   `json:"sys_rc_path"`
	RootPrefix   string   `json:"root_prefix"`
}

// QueryInfo runs `conda info --json` with exe, or plain `conda` from PATH
// when exe is empty.
func QueryInfo(exe string) (*Info, error) {
	if exe == "" {
		exe = "conda"
	}
	if runtime.GOOS != "windows" {
		if target, ok := pathutil.ResolveSymlink(exe); ok {
			exe = target
		}
	}
	out, err := interp.RunReadStdout("", exe, "info", "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to run %s info: %w", exe, err)
	}
	return parseInfo(exe, []byte(strings.TrimSpace(out)))
}

func parseInfo(exe string, data []byte) (*Info, error) {
	var raw infoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s info output: %w", exe, err)
	}
	return &Info{
		Executable:   exe,
		Envs:         raw.Envs,
		CondaPrefix:  raw.CondaPrefix,
		RootPrefix:   raw.RootPrefix,
		CondaVersion: raw.CondaVersion,
		EnvsDirs:     slices.Concat(raw.EnvsDirs, raw.EnvsPath),
		ConfigFiles:  raw.ConfigFiles,
		RCPath:       raw.RCPath,
		SysRCPath:    raw.SysRCPath,
		UserRCPath:   raw.UserRCPath,
	}, nil
}

// Manager describes the conda that produced info.
func (i *Info) Manager() *Manager {
	return &Manager{Executable: i.Executable, Version: i.CondaVersion, CondaDir: i.CondaPrefix}
}
