package poetry

import (
	"log/slog"
	"strings"
	"time"

	"github.com/richinsley/pylocate/internal/interp"
)

// envListFromPoetry runs `poetry env list --full-path` in project.
func envListFromPoetry(exe, project string) ([]string, bool) {
	start := time.Now()
	out, err := interp.RunReadStdout(project, exe, "env", "list", "--full-path")
	slog.Debug("ran poetry env list", "exe", exe, "project", project, "elapsed", time.Since(start))
	if err != nil {
		slog.Debug("poetry env list failed", "exe", exe, "project", project, "error", err)
		return nil, false
	}
	return parseEnvList(out), true
}

func parseEnvList(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), " (Activated)"))
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// poetryConfig is what `poetry config <key>` reports for a project.
type poetryConfig struct {
	CacheDir        string
	VirtualenvsPath string
	InProject       *bool
}

func queryConfig(exe, project string) poetryConfig {
	cfg := poetryConfig{
		CacheDir:        configValue(exe, project, "cache-dir"),
		VirtualenvsPath: configValue(exe, project, "virtualenvs.path"),
	}
	switch v := configValue(exe, project, "virtualenvs.in-project"); {
	case strings.HasPrefix(v, "true"):
		t := true
		cfg.InProject = &t
	case strings.HasPrefix(v, "false"):
		f := false
		cfg.InProject = &f
	}
	return cfg
}

func configValue(exe, project, key string) string {
	out, err := interp.RunReadStdout(project, exe, "config", key)
	if err != nil {
		slog.Debug("poetry config failed", "exe", exe, "key", key, "project", project, "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}
