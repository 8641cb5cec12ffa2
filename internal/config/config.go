// Package config loads CLI settings from defaults, an optional TOML file,
// PYLOCATE_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const (
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "PYLOCATE"
	// FileName is looked up in the working directory when no file is given.
	FileName = "pylocate.toml"
)

// Settings are the user-tunable knobs of a run.
type Settings struct {
	CacheDir         string   `mapstructure:"cache_dir"`
	SearchPaths      []string `mapstructure:"search_paths"`
	EnvironmentDirs  []string `mapstructure:"environment_dirs"`
	CondaExecutable  string   `mapstructure:"conda_executable"`
	PoetryExecutable string   `mapstructure:"poetry_executable"`
	PipenvExecutable string   `mapstructure:"pipenv_executable"`
	LogLevel         string   `mapstructure:"log_level"`
	Kind             string   `mapstructure:"kind"`
	ReportMissing    bool     `mapstructure:"report_missing"`
	WorkspaceOnly    bool     `mapstructure:"workspace_only"`
}

// flagKeys maps CLI flags whose names differ from their settings key.
var flagKeys = map[string]string{
	"cache-directory": "cache_dir",
	"workspace":       "workspace_only",
	"conda":           "conda_executable",
	"poetry":          "poetry_executable",
	"pipenv":          "pipenv_executable",
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// LoadOptions select the config file and flags to merge.
type LoadOptions struct {
	// ConfigFile is used exclusively when set; it must exist.
	ConfigFile string
	// Flags are bound by their names with '-' replaced by '_', except for
	// the few renamed in flagKeys.
	Flags *pflag.FlagSet
}

// Load merges every configuration source into Settings.
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()
	v.SetDefault("log_level", "warn")
	v.SetDefault("search_paths", []string{})
	v.SetDefault("environment_dirs", []string{})
	v.SetDefault("report_missing", false)
	v.SetDefault("workspace_only", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	switch {
	case opts.ConfigFile != "":
		if !pathutil.IsFile(opts.ConfigFile) {
			return nil, fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	case pathutil.IsFile(FileName):
		v.SetConfigFile(FileName)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", FileName, err)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(flagKey(f.Name), f); err != nil {
				bindErr = errors.Join(bindErr, err)
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Kind != "" {
		if _, ok := core.ParseKind(s.Kind); !ok {
			return nil, fmt.Errorf("unknown environment kind %q", s.Kind)
		}
	}
	return &s, nil
}

// FilterKind returns the kind to restrict discovery to, or KindUnknown.
func (s *Settings) FilterKind() core.Kind {
	k, _ := core.ParseKind(s.Kind)
	return k
}

// Configuration turns the settings into locator configuration. Search paths
// default to the working directory; directories become workspace folders and
// files become explicit executables.
func (s *Settings) Configuration() (*core.Configuration, error) {
	paths := s.SearchPaths
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		paths = []string{cwd}
	}
	cfg := &core.Configuration{
		CondaExecutable:  s.CondaExecutable,
		PoetryExecutable: s.PoetryExecutable,
		PipenvExecutable: s.PipenvExecutable,
		CacheDirectory:   s.CacheDir,
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		switch {
		case pathutil.IsDir(abs):
			cfg.WorkspaceDirectories = append(cfg.WorkspaceDirectories, abs)
		case pathutil.IsFile(abs):
			cfg.Executables = append(cfg.Executables, abs)
		}
	}
	cfg.WorkspaceDirectories = pathutil.Unique(cfg.WorkspaceDirectories)
	cfg.Executables = pathutil.Unique(cfg.Executables)
	for _, d := range s.EnvironmentDirs {
		if abs, err := filepath.Abs(d); err == nil {
			cfg.EnvironmentDirectories = append(cfg.EnvironmentDirectories, abs)
		}
	}
	cfg.EnvironmentDirectories = pathutil.Unique(cfg.EnvironmentDirectories)
	return cfg, nil
}
