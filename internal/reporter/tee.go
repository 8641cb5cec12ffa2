package reporter

import "github.com/richinsley/pylocate/internal/core"

// Tee forwards every report to each of its reporters in order.
type Tee []core.Reporter

func (t Tee) ReportManager(m *core.EnvManager) {
	for _, r := range t {
		r.ReportManager(m)
	}
}

func (t Tee) ReportEnvironment(env *core.PythonEnvironment) {
	for _, r := range t {
		r.ReportEnvironment(env)
	}
}

func (t Tee) ReportTelemetry(event core.TelemetryEvent) {
	for _, r := range t {
		r.ReportTelemetry(event)
	}
}
