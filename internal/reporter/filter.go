package reporter

import (
	"sync"

	"github.com/richinsley/pylocate/internal/core"
)

// KindFilter forwards only environments of one kind, plus the managers
// owning them.
type KindFilter struct {
	kind core.Kind
	next core.Reporter

	mu       sync.Mutex
	managers map[string]bool
}

// NewKindFilter returns a filter letting kind through to next.
func NewKindFilter(kind core.Kind, next core.Reporter) *KindFilter {
	return &KindFilter{kind: kind, next: next, managers: map[string]bool{}}
}

// ReportManager drops m. Managers are forwarded with their first matching
// environment instead.
func (f *KindFilter) ReportManager(*core.EnvManager) {}

// ReportEnvironment forwards env when its kind matches, preceded by its
// manager the first time that manager is seen.
func (f *KindFilter) ReportEnvironment(env *core.PythonEnvironment) {
	if env.Kind != f.kind {
		return
	}
	if m := env.Manager; m != nil {
		f.mu.Lock()
		fresh := !f.managers[m.Executable]
		f.managers[m.Executable] = true
		f.mu.Unlock()
		if fresh {
			f.next.ReportManager(m)
		}
	}
	f.next.ReportEnvironment(env)
}

// ReportTelemetry forwards every event.
func (f *KindFilter) ReportTelemetry(event core.TelemetryEvent) {
	f.next.ReportTelemetry(event)
}
