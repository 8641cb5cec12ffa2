package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate"
	"github.com/richinsley/pylocate/internal/core"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "0123456789abcdef.1.msgpack")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(entry, []byte{0x80}, 0o644))
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))

	out, err := run(t, "cache", "clear", "--cache-directory", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared")
	assert.NoFileExists(t, entry)
	assert.FileExists(t, other)
}

func TestCacheClearNeedsDirectory(t *testing.T) {
	t.Setenv("PYLOCATE_CACHE_DIR", "")
	_, err := run(t, "cache", "clear")
	assert.ErrorContains(t, err, "no cache directory")
}

func TestResolveUnknownExecutable(t *testing.T) {
	_, err := run(t, "resolve", filepath.Join(t.TempDir(), "python3"))
	assert.ErrorContains(t, err, "not a python interpreter")
}

func TestEncoderRejectsUnknownFormat(t *testing.T) {
	_, _, err := encoder("yaml", &bytes.Buffer{})
	assert.Error(t, err)
	_, err = newOutput("yaml", &bytes.Buffer{}, true, false)
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	result := core.LocatorResult{
		Managers: []core.EnvManager{{Tool: core.ToolConda, Executable: "/opt/conda/bin/conda"}},
		Environments: []*core.PythonEnvironment{
			{Kind: core.KindVenv, Executable: "/w/.venv/bin/python"},
			{Kind: core.KindVenv, Executable: "/w/b/.venv/bin/python"},
			{Executable: "/opt/tool/bin/python"},
		},
	}
	summary := &pylocate.Summary{
		Total:     1500 * time.Millisecond,
		Locators:  map[pylocate.LocatorName]time.Duration{core.LocatorConda: time.Second},
		Breakdown: map[string]time.Duration{pylocate.BranchLocators: time.Second},
	}
	var out bytes.Buffer
	printSummary(&out, result, summary, true)
	text := out.String()
	for _, want := range []string{"Managers", "Conda", "Environments", "Venv", "Unknown", "Breakdown", "1.5s"} {
		assert.Contains(t, text, want)
	}
}
