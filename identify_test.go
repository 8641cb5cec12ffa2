package pylocate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/reporter"
)

func TestIdentifyWithoutSpawning(t *testing.T) {
	s := newSandbox(t)
	prefix := filepath.Join(s.root, "proj", ".venv")
	exe := makeVenv(t, prefix, "3.12.1", "3.12.1")
	require.NoError(t, os.Remove(exe))
	require.NoError(t, os.WriteFile(exe, nil, 0o755))

	found := Identify(core.NewPythonEnv(exe, "", ""), NewLocators(s.env), core.KindUnknown)
	require.NotNil(t, found)
	assert.Equal(t, core.KindVenv, found.Kind)
	assert.Equal(t, "3.12.1", found.Version)
}

func TestIdentifyFailsClosed(t *testing.T) {
	s := newSandbox(t)
	exe := filepath.Join(s.root, "opt", "broken", "bin", "python")
	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0o755))
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\nexit 1\n"), 0o755))

	assert.Nil(t, Identify(core.NewPythonEnv(exe, "", ""), NewLocators(s.env), core.KindGlobalPaths))
}

func TestResolve(t *testing.T) {
	s := newSandbox(t)
	prefix := filepath.Join(s.root, "proj", ".venv")
	makeVenv(t, prefix, "3.12.1", "3.12.1")
	alias := filepath.Join(prefix, "bin", "python3")

	collect := reporter.NewCollect()
	discovered, resolved := Resolve(alias, NewLocators(s.env), collect)
	require.NotNil(t, discovered)
	require.NotNil(t, resolved)
	assert.Equal(t, core.KindVenv, resolved.Kind)
	assert.Equal(t, discovered.Kind, resolved.Kind)
	assert.Equal(t, discovered.Prefix, resolved.Prefix)
	assert.True(t, core.VersionHasPrefix(resolved.Version, discovered.Version))
	assert.Equal(t, core.ArchX64, resolved.Arch)
	assert.Contains(t, resolved.Symlinks, alias)
	assert.Empty(t, collect.Telemetry())
}

func TestResolveReportsInaccuracy(t *testing.T) {
	s := newSandbox(t)
	prefix := filepath.Join(s.root, "proj", ".venv")
	// The interpreter was upgraded in place; pyvenv.cfg still has the old
	// version.
	makeVenv(t, prefix, "3.11.2", "3.12.1")

	collect := reporter.NewCollect()
	discovered, resolved := Resolve(filepath.Join(prefix, "bin", "python"), NewLocators(s.env), collect)
	require.NotNil(t, resolved)
	assert.Equal(t, "3.11.2", discovered.Version)
	assert.Equal(t, "3.12.1", resolved.Version)

	events := collect.Telemetry()
	require.Len(t, events, 1)
	info, ok := events[0].(core.InaccuratePythonEnvironmentInfo)
	require.True(t, ok)
	assert.True(t, info.InvalidVersion)
	assert.False(t, info.InvalidPrefix)
	assert.False(t, info.InvalidExecutable)
	assert.Equal(t, core.KindVenv, info.Kind)
}

func TestResolveUnknownPath(t *testing.T) {
	s := newSandbox(t)
	discovered, resolved := Resolve(filepath.Join(s.root, "missing", "python"), NewLocators(s.env), nil)
	assert.Nil(t, discovered)
	assert.Nil(t, resolved)
}

func TestDiscoveredEnvironmentsResolveConsistently(t *testing.T) {
	s := newSandbox(t)
	ws := workspace(t, s)
	locators := NewLocators(s.env)
	collect := reporter.NewCollect()
	Discover(&core.Configuration{WorkspaceDirectories: []string{ws}}, collect, locators, s.env)

	envs := collect.Result().Environments
	require.NotEmpty(t, envs)
	for _, e := range envs {
		_, resolved := Resolve(e.Executable, NewLocators(s.env), nil)
		require.NotNil(t, resolved, e.Executable)
		assert.Equal(t, e.Kind, resolved.Kind)
		assert.Equal(t, e.Prefix, resolved.Prefix)
		assert.True(t, core.VersionHasPrefix(resolved.Version, e.Version))
	}
}
