// Package reporter provides the sinks discovery reports into.
package reporter

import (
	"log/slog"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// Cache forwards each manager and environment to the wrapped reporter
// once. Environments are identified by core.EnvironmentKey; once reported,
// every alias in their symlink set is known and later reports through any of
// those paths are dropped.
type Cache struct {
	next core.Reporter

	mu       sync.Mutex
	managers map[string]bool
	known    map[string]bool
}

// NewCache wraps next.
func NewCache(next core.Reporter) *Cache {
	return &Cache{
		next:     next,
		managers: map[string]bool{},
		known:    map[string]bool{},
	}
}

// WasReported reports whether exe belongs to an environment already
// forwarded.
func (c *Cache) WasReported(exe string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known[pathutil.NormCase(exe)]
}

// ReportManager forwards m unless a manager with the same executable was
// already forwarded.
func (c *Cache) ReportManager(m *core.EnvManager) {
	c.mu.Lock()
	if c.managers[m.Executable] {
		c.mu.Unlock()
		return
	}
	c.managers[m.Executable] = true
	c.mu.Unlock()
	c.next.ReportManager(m)
}

// ReportEnvironment forwards env unless its key or one of its symlinks was
// seen before. Environments without a key are logged and dropped.
func (c *Cache) ReportEnvironment(env *core.PythonEnvironment) {
	key := core.EnvironmentKey(env)
	if key == "" {
		slog.Error("cannot report environment without executable or prefix", "kind", env.Kind, "name", env.Name)
		return
	}
	paths := append([]string{key}, env.Symlinks...)

	c.mu.Lock()
	seen := false
	for _, p := range paths {
		p = pathutil.NormCase(p)
		if c.known[p] {
			seen = true
		}
		c.known[p] = true
	}
	c.mu.Unlock()
	if seen {
		return
	}
	c.next.ReportEnvironment(env)
}

// ReportTelemetry forwards every event.
func (c *Cache) ReportTelemetry(event core.TelemetryEvent) {
	c.next.ReportTelemetry(event)
}
