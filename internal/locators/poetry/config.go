package poetry

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const appName = "pypoetry"

// Config is a poetry config.toml (global) or poetry.toml (project) with the
// virtualenvs folder already worked out.
type Config struct {
	File            string
	VirtualenvsPath string
	// InProject is nil when the file does not set virtualenvs.in-project.
	InProject *bool
	CacheDir  string
}

type configFile struct {
	CacheDir    *string `toml:"cache-dir"`
	Virtualenvs struct {
		Path      *string `toml:"path"`
		InProject *bool   `toml:"in-project"`
	} `toml:"virtualenvs"`
}

// GlobalConfig reads config.toml from POETRY_CONFIG_DIR or the platform
// config folder.
func GlobalConfig(env core.Environment) *Config {
	dir := env.Getenv("POETRY_CONFIG_DIR")
	if dir == "" {
		dir = interp.NewPlatformdirs(env, appName, true).UserConfigDir()
	}
	if dir == "" {
		return nil
	}
	file := filepath.Join(dir, "config.toml")
	if !pathutil.Exists(file) {
		return nil
	}
	return readConfig(file, env)
}

// LocalConfig reads poetry.toml in a project folder.
func LocalConfig(project string, env core.Environment) *Config {
	file := filepath.Join(project, "poetry.toml")
	if !pathutil.IsFile(file) {
		return nil
	}
	return readConfig(file, env)
}

func readConfig(file string, env core.Environment) *Config {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	var raw configFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		slog.Warn("failed to parse poetry config", "file", file, "error", err)
		return nil
	}
	cfg := &Config{File: file, InProject: raw.Virtualenvs.InProject}
	if raw.CacheDir != nil {
		cfg.CacheDir = strings.TrimSpace(*raw.CacheDir)
	}
	if raw.Virtualenvs.Path != nil {
		cfg.VirtualenvsPath = strings.TrimSpace(*raw.Virtualenvs.Path)
		return cfg
	}
	cache := cfg.CacheDir
	if cache == "" || !pathutil.IsDir(cache) {
		cache = defaultCacheDir(env)
	}
	if cache == "" {
		return nil
	}
	cfg.VirtualenvsPath = filepath.Join(cache, "virtualenvs")
	return cfg
}

// defaultCacheDir mirrors poetry's DEFAULT_CACHE_DIR.
func defaultCacheDir(env core.Environment) string {
	if dir := env.Getenv("POETRY_CACHE_DIR"); dir != "" {
		return dir
	}
	return interp.NewPlatformdirs(env, appName, false).UserCacheDir()
}

// environmentsIn lists the entries of a virtualenvs folder.
func (c *Config) environmentsIn() []string {
	if c == nil || c.VirtualenvsPath == "" {
		return nil
	}
	entries, err := os.ReadDir(c.VirtualenvsPath)
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(c.VirtualenvsPath, e.Name()))
	}
	return paths
}

// useInProjectVenv decides whether <project>/.venv belongs to poetry. The
// project file wins over POETRY_VIRTUALENVS_IN_PROJECT, which wins over the
// global file.
func useInProjectVenv(global, local *Config, env core.Environment) bool {
	if local != nil && local.InProject != nil {
		return *local.InProject
	}
	if v := env.Getenv("POETRY_VIRTUALENVS_IN_PROJECT"); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}
	if global != nil && global.InProject != nil {
		return *global.InProject
	}
	return false
}
