package reporter

import (
	"slices"
	"strings"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
)

// Collect keeps everything reported in memory.
type Collect struct {
	mu           sync.Mutex
	managers     []core.EnvManager
	environments []*core.PythonEnvironment
	telemetry    []core.TelemetryEvent
}

// NewCollect returns an empty collector.
func NewCollect() *Collect {
	return &Collect{}
}

// ReportManager stores a copy of m.
func (c *Collect) ReportManager(m *core.EnvManager) {
	c.mu.Lock()
	c.managers = append(c.managers, *m)
	c.mu.Unlock()
}

// ReportEnvironment stores a clone of env.
func (c *Collect) ReportEnvironment(env *core.PythonEnvironment) {
	c.mu.Lock()
	c.environments = append(c.environments, env.Clone())
	c.mu.Unlock()
}

// ReportTelemetry stores event.
func (c *Collect) ReportTelemetry(event core.TelemetryEvent) {
	c.mu.Lock()
	c.telemetry = append(c.telemetry, event)
	c.mu.Unlock()
}

// Result returns what was collected, sorted so that two runs over the same
// filesystem compare equal.
func (c *Collect) Result() core.LocatorResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	managers := slices.Clone(c.managers)
	slices.SortFunc(managers, func(a, b core.EnvManager) int {
		return strings.Compare(a.Executable, b.Executable)
	})
	envs := make([]*core.PythonEnvironment, 0, len(c.environments))
	for _, e := range c.environments {
		envs = append(envs, e.Clone())
	}
	slices.SortFunc(envs, func(a, b *core.PythonEnvironment) int {
		if c := strings.Compare(a.Executable, b.Executable); c != 0 {
			return c
		}
		return strings.Compare(a.Prefix, b.Prefix)
	})
	return core.LocatorResult{Managers: managers, Environments: envs}
}

// Telemetry returns the events received so far.
func (c *Collect) Telemetry() []core.TelemetryEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.telemetry)
}
