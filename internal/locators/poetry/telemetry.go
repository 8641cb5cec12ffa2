package poetry

import (
	"log/slog"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// ReportMissing asks poetry for the environments of every workspace project
// and reports those the scan missed as MissingPoetryEnvironments telemetry,
// together with where our reading of the configuration disagrees with
// poetry's.
func (l *Locator) ReportMissing(reporter core.Reporter, known []*core.PythonEnvironment) {
	workspaces, configured := l.settings()
	manager := FindManager(l.env, configured)
	if manager == nil {
		return
	}
	l.mu.Lock()
	exeNotFound := l.result != nil && len(l.result.Managers) == 0
	l.mu.Unlock()

	global := GlobalConfig(l.env)
	for _, project := range workspaces {
		paths, ok := envListFromPoetry(manager.Executable, project)
		if !ok {
			continue
		}
		var fromPoetry []string
		for _, p := range paths {
			if e := newEnvironment(p, project, manager); e != nil {
				fromPoetry = append(fromPoetry, e.Prefix)
			}
		}
		event, ok := missingEnvironments(project, fromPoetry, known, global, LocalConfig(project, l.env), queryConfig(manager.Executable, project))
		if !ok {
			continue
		}
		event.UserProvidedPoetryExe = configured != ""
		event.PoetryExeNotFound = exeNotFound
		slog.Warn("poetry environments missing from discovery", "project", project, "missing", event.Missing)
		reporter.ReportTelemetry(event)
	}
}

// missingEnvironments compares the prefixes poetry reports for project with
// the prefixes discovered for it. The bool is false when nothing is missing.
func missingEnvironments(project string, fromPoetry []string, known []*core.PythonEnvironment, global, local *Config, poetry poetryConfig) (core.MissingPoetryEnvironments, bool) {
	discovered := map[string]bool{}
	for _, e := range known {
		if e.Project == project && e.Prefix != "" {
			discovered[e.Prefix] = true
		}
	}
	var missing []string
	for _, p := range pathutil.Unique(fromPoetry) {
		if !discovered[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return core.MissingPoetryEnvironments{}, false
	}

	event := core.MissingPoetryEnvironments{
		Missing:              len(missing),
		GlobalConfigNotFound: global == nil,
	}
	if poetry.VirtualenvsPath != "" {
		for _, m := range missing {
			if pathutil.HasPathPrefix(m, poetry.VirtualenvsPath) {
				event.MissingInPath++
			}
		}
	}

	var virtualenvsPath, cacheDir string
	var inProject *bool
	for _, c := range []*Config{global, local} {
		if c == nil {
			continue
		}
		virtualenvsPath = c.VirtualenvsPath
		if c.CacheDir != "" {
			cacheDir = c.CacheDir
		}
		if c.InProject != nil {
			inProject = c.InProject
		}
	}

	if cacheDir == "" {
		event.CacheDirNotFound = true
	} else if poetry.CacheDir != "" && pathutil.Exists(poetry.CacheDir) && cacheDir != poetry.CacheDir {
		event.CacheDirIsDifferent = true
		slog.Warn("poetry cache dir differs", "ours", cacheDir, "poetry", poetry.CacheDir)
	}
	if virtualenvsPath == "" {
		event.VirtualenvsPathNotFound = true
	} else if poetry.VirtualenvsPath != "" && pathutil.Exists(poetry.VirtualenvsPath) && virtualenvsPath != poetry.VirtualenvsPath {
		event.VirtualenvsPathIsDifferent = true
		slog.Warn("poetry virtualenvs.path differs", "ours", virtualenvsPath, "poetry", poetry.VirtualenvsPath)
	}
	if (inProject != nil || poetry.InProject != nil) && !sameBool(inProject, poetry.InProject) {
		event.InProjectIsDifferent = true
	}
	return event, true
}

func sameBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
