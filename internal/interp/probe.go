package interp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/richinsley/pylocate/internal/cache"
	"github.com/richinsley/pylocate/internal/core"
)

// ProbeMarker separates the probe's JSON from anything site customizations
// print on startup.
const ProbeMarker = "093385e9-59f7-4a16-a604-14bf206256fe"

var probeScript = "import json, sys; print('" + ProbeMarker + "');" +
	"print(json.dumps({'version': '.'.join(str(n) for n in sys.version_info), " +
	"'sys_prefix': sys.prefix, 'executable': sys.executable, 'is64_bit': sys.maxsize > 2**32}))"

type probeOutput struct {
	Version    string `json:"version"`
	SysPrefix  string `json:"sys_prefix"`
	Executable string `json:"executable"`
	Is64Bit    bool   `json:"is64_bit"`
}

// Probe returns ground truth for exe, from the process-wide cache when an
// unchanged entry exists, else by running the interpreter.
func Probe(exe string) (*core.ResolvedPythonEnv, error) {
	return ProbeWith(cache.Default(), exe)
}

// ProbeWith is Probe against a specific cache.
func ProbeWith(c *cache.Cache, exe string) (*core.ResolvedPythonEnv, error) {
	if cached := c.Get(exe); cached != nil {
		return cached, nil
	}
	resolved, err := spawnProbe(exe)
	if err != nil {
		return nil, err
	}
	c.Store(resolved)
	return resolved, nil
}

func spawnProbe(exe string) (*core.ResolvedPythonEnv, error) {
	slog.Debug("spawning interpreter", "executable", exe)
	stdout, err := RunReadStdout("", exe, "-c", probeScript)
	if err != nil {
		return nil, err
	}
	return ParseProbeOutput(exe, stdout)
}

// ParseProbeOutput reads the JSON following the marker line. Any deviation
// from the expected shape is an error.
func ParseProbeOutput(exe, stdout string) (*core.ResolvedPythonEnv, error) {
	_, payload, ok := strings.Cut(stdout, ProbeMarker)
	if !ok {
		return nil, &SpawnError{Executable: exe, Message: "no marker in interpreter output", Err: ErrNoMarker}
	}
	var out probeOutput
	if err := json.NewDecoder(strings.NewReader(payload)).Decode(&out); err != nil {
		return nil, &SpawnError{Executable: exe, Message: fmt.Sprintf("invalid interpreter output: %v", err), Err: err}
	}
	if out.Executable == "" || out.SysPrefix == "" || out.Version == "" {
		return nil, &SpawnError{Executable: exe, Message: "incomplete interpreter output"}
	}
	resolved := &core.ResolvedPythonEnv{
		Executable: out.Executable,
		Prefix:     out.SysPrefix,
		Version:    out.Version,
		Is64Bit:    out.Is64Bit,
	}
	if out.Executable != exe {
		resolved.Symlinks = []string{exe}
	}
	return resolved, nil
}
