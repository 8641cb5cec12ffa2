package pylocate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/interp"
	"github.com/richinsley/pylocate/internal/locators/globalvenvs"
	"github.com/richinsley/pylocate/internal/pathutil"
	"github.com/richinsley/pylocate/internal/reporter"
)

// Breakdown names used in Summary.
const (
	BranchLocators    = "Locators"
	BranchPath        = "Path"
	BranchGlobalVenvs = "GlobalVirtualEnvs"
	BranchWorkspaces  = "Workspaces"
	BranchExecutables = "Executables"
)

// workspaceBatchSize is how many workspace subfolders one goroutine checks.
const workspaceBatchSize = 20

// Summary records how long a discovery run took.
type Summary struct {
	Total     time.Duration
	Locators  map[LocatorName]time.Duration
	Breakdown map[string]time.Duration

	mu sync.Mutex
}

func (s *Summary) locator(name LocatorName, d time.Duration) {
	s.mu.Lock()
	s.Locators[name] = d
	s.mu.Unlock()
}

func (s *Summary) branch(name string, d time.Duration) {
	s.mu.Lock()
	s.Breakdown[name] = d
	s.mu.Unlock()
}

// Telemetry converts the summary into its telemetry event.
func (s *Summary) Telemetry() core.RefreshPerformance {
	s.mu.Lock()
	defer s.mu.Unlock()
	perf := core.RefreshPerformance{
		Total:     s.Total,
		Locators:  make(map[string]time.Duration, len(s.Locators)),
		Breakdown: make(map[string]time.Duration, len(s.Breakdown)),
	}
	for k, v := range s.Locators {
		perf.Locators[string(k)] = v
	}
	for k, v := range s.Breakdown {
		perf.Breakdown[k] = v
	}
	return perf
}

type discoverOptions struct {
	kind          Kind
	reportMissing bool
	workspaceOnly bool
}

// Option tunes a discovery run.
type Option func(*discoverOptions)

// WithKind restricts the run to environments of kind.
func WithKind(kind Kind) Option {
	return func(o *discoverOptions) { o.kind = kind }
}

// WithReportMissing asks conda and poetry, after the scan, which
// environments they know about and reports the ones the scan missed as
// telemetry.
func WithReportMissing() Option {
	return func(o *discoverOptions) { o.reportMissing = true }
}

// WithWorkspaceOnly limits the run to the workspace folders and explicit
// executables of the configuration.
func WithWorkspaceOnly() Option {
	return func(o *discoverOptions) { o.workspaceOnly = true }
}

// missingReporter is implemented by locators that can ask their manager what
// the scan missed.
type missingReporter interface {
	ReportMissing(reporter core.Reporter, known []*core.PythonEnvironment)
}

// Discover finds every environment it can and reports each once through
// out. Locators are configured with cfg first.
func Discover(cfg *Configuration, out Reporter, locators []Locator, env Environment, opts ...Option) *Summary {
	var o discoverOptions
	for _, opt := range opts {
		opt(&o)
	}
	if cfg == nil {
		cfg = &Configuration{}
	}
	for _, l := range locators {
		l.Configure(cfg)
	}

	sink := out
	if o.kind != core.KindUnknown {
		sink = reporter.NewKindFilter(o.kind, out)
	}
	known := reporter.NewCollect()
	dedup := reporter.NewCache(reporter.Tee{sink, known})

	d := &discovery{
		cfg:      cfg,
		env:      env,
		locators: locators,
		reporter: dedup,
		summary: &Summary{
			Locators:  map[LocatorName]time.Duration{},
			Breakdown: map[string]time.Duration{},
		},
	}

	start := time.Now()
	var g errgroup.Group
	if !o.workspaceOnly {
		g.Go(d.timed(BranchLocators, func() { d.findWithLocators(o) }))
		g.Go(d.timed(BranchPath, d.searchPath))
		g.Go(d.timed(BranchGlobalVenvs, d.searchGlobalVirtualEnvs))
	}
	g.Go(d.timed(BranchWorkspaces, d.searchWorkspaces))
	g.Go(d.timed(BranchExecutables, d.identifyExecutables))
	_ = g.Wait()

	if o.reportMissing && !o.workspaceOnly {
		d.reportMissing(known.Result().Environments)
	}

	d.summary.Total = time.Since(start)
	dedup.ReportTelemetry(d.summary.Telemetry())
	slog.Debug("discovery finished", "duration", d.summary.Total)
	return d.summary
}

type discovery struct {
	cfg      *Configuration
	env      Environment
	locators []Locator
	reporter *reporter.Cache
	summary  *Summary
}

// safely runs fn, turning a panic into a log entry so sibling branches keep
// going.
func safely(name string, fn func()) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("discovery branch panicked", "branch", name, "panic", fmt.Sprint(r))
			}
		}()
		fn()
		return nil
	}
}

func (d *discovery) timed(branch string, fn func()) func() error {
	return safely(branch, func() {
		start := time.Now()
		defer func() { d.summary.branch(branch, time.Since(start)) }()
		fn()
	})
}

func (d *discovery) findWithLocators(o discoverOptions) {
	var g errgroup.Group
	for _, l := range d.locators {
		if o.kind != core.KindUnknown && !slices.Contains(l.SupportedKinds(), o.kind) {
			continue
		}
		g.Go(safely(string(l.Name()), func() {
			start := time.Now()
			l.Find(d.reporter)
			d.summary.locator(l.Name(), time.Since(start))
		}))
	}
	_ = g.Wait()
}

// reportMissing runs the manager reconciliation. It only ever produces
// telemetry; nothing it finds is reported as an environment.
func (d *discovery) reportMissing(known []*core.PythonEnvironment) {
	var g errgroup.Group
	for _, l := range d.locators {
		m, ok := l.(missingReporter)
		if !ok {
			continue
		}
		g.Go(safely("missing "+string(l.Name()), func() {
			m.ReportMissing(d.reporter, known)
		}))
	}
	_ = g.Wait()
}

// identifyAndReport identifies exe unless an environment holding it was
// already reported.
func (d *discovery) identifyAndReport(exe, prefix string, fallback Kind) {
	if d.reporter.WasReported(exe) {
		return
	}
	if found := Identify(core.NewPythonEnv(exe, prefix, ""), d.locators, fallback); found != nil {
		d.reporter.ReportEnvironment(found)
	}
}

// pathDirectories returns the PATH entries worth scanning. WindowsApps holds
// Store aliases, which the Store locator owns.
func (d *discovery) pathDirectories() []string {
	var dirs []string
	for _, dir := range d.env.KnownGlobalSearchLocations() {
		if dir == "" || strings.Contains(strings.ToLower(dir), "windowsapps") {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			dir = resolved
		}
		dirs = append(dirs, pathutil.NormCase(filepath.Clean(dir)))
	}
	return pathutil.Unique(dirs)
}

func (d *discovery) searchPath() {
	var g errgroup.Group
	for _, dir := range d.pathDirectories() {
		g.Go(safely(dir, func() {
			for _, exe := range interp.FindExecutables(dir) {
				d.identifyAndReport(exe, "", core.KindGlobalPaths)
			}
		}))
	}
	_ = g.Wait()
}

func (d *discovery) searchGlobalVirtualEnvs() {
	candidates := globalvenvs.List(d.env)
	for _, dir := range d.cfg.EnvironmentDirectories {
		candidates = append(candidates, dir)
		candidates = append(candidates, subdirectories(dir)...)
	}
	var g errgroup.Group
	for _, prefix := range pathutil.Unique(candidates) {
		g.Go(safely(prefix, func() {
			if exe := interp.FindExecutable(prefix); exe != "" {
				d.identifyAndReport(exe, prefix, core.KindUnknown)
			}
		}))
	}
	_ = g.Wait()
}

func (d *discovery) identifyExecutables() {
	var g errgroup.Group
	for _, exe := range d.cfg.Executables {
		g.Go(safely(exe, func() {
			d.identifyAndReport(exe, "", core.KindUnknown)
		}))
	}
	_ = g.Wait()
}

func (d *discovery) searchWorkspaces() {
	var g errgroup.Group
	for _, ws := range d.cfg.WorkspaceDirectories {
		g.Go(safely(ws, func() { d.searchWorkspace(ws) }))
	}
	_ = g.Wait()
}

// workspaceCandidates are the folders of dir that commonly hold a project
// environment, and dir itself.
func workspaceCandidates(dir string) []string {
	return []string{
		filepath.Join(dir, ".venv"),
		filepath.Join(dir, ".conda"),
		filepath.Join(dir, "venv"),
		dir,
	}
}

func (d *discovery) checkFolder(dir string) {
	for _, prefix := range workspaceCandidates(dir) {
		if exe := interp.FindExecutable(prefix); exe != "" {
			d.identifyAndReport(exe, prefix, core.KindUnknown)
		}
	}
}

// searchWorkspace checks ws and, unless ws is itself an environment, each of
// its direct subfolders.
func (d *discovery) searchWorkspace(ws string) {
	d.checkFolder(ws)
	if pathutil.IsDir(filepath.Join(ws, "bin")) || pathutil.IsDir(filepath.Join(ws, "Scripts")) {
		return
	}
	var subs []string
	for _, sub := range subdirectories(ws) {
		if interp.ShouldSearchForEnvironmentsInPath(sub) {
			subs = append(subs, sub)
		}
	}
	var g errgroup.Group
	for batch := range slices.Chunk(subs, workspaceBatchSize) {
		g.Go(safely(ws, func() {
			for _, sub := range batch {
				d.checkFolder(sub)
			}
		}))
	}
	_ = g.Wait()
}

func subdirectories(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if pathutil.IsDirEntry(dir, e) {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return dirs
}
