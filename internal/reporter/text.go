package reporter

import (
	"fmt"
	"io"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
)

// Text prints each report as human readable text.
type Text struct {
	mu sync.Mutex
	w  io.Writer
	// Telemetry enables printing telemetry events too.
	Telemetry bool
}

// NewText returns a text reporter writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// ReportManager prints the manager tool, executable and version.
func (t *Text) ReportManager(m *core.EnvManager) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "Manager (%s)\n   Executable  : %s\n", m.Tool, m.Executable)
	if m.Version != "" {
		fmt.Fprintf(t.w, "   Version     : %s\n", m.Version)
	}
	fmt.Fprintln(t.w)
}

// ReportEnvironment prints env.String.
func (t *Text) ReportEnvironment(env *core.PythonEnvironment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, env.String())
}

// ReportTelemetry prints event when Telemetry is set.
func (t *Text) ReportTelemetry(event core.TelemetryEvent) {
	if !t.Telemetry {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "Telemetry (%s): %+v\n\n", event.EventName(), event)
}
