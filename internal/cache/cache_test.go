package cache

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/pylocate/internal/core"
)

func fakeInterpreter(t *testing.T) (string, string) {
	t.Helper()
	prefix := t.TempDir()
	bin := filepath.Join(prefix, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	exe := filepath.Join(bin, "python3.12")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	alias := filepath.Join(bin, "python")
	require.NoError(t, os.WriteFile(alias, []byte("#!/bin/sh\n"), 0o755))
	return prefix, exe
}

func TestHashExecutable(t *testing.T) {
	assert.Equal(t, "e72c82125e7281e2", HashExecutable("/Users/donjayamanne/demo/.venvTestInstall1/bin/python3.12"))
	assert.Len(t, HashExecutable("/usr/bin/python3"), 16)
}

func TestStoreAndGet(t *testing.T) {
	prefix, exe := fakeInterpreter(t)
	alias := filepath.Join(prefix, "bin", "python")
	dir := t.TempDir()

	c := New(dir)
	assert.Nil(t, c.Get(exe))

	c.Store(&core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.1", Is64Bit: true, Symlinks: []string{alias}})

	got := c.Get(alias)
	require.NotNil(t, got)
	assert.Equal(t, exe, got.Executable)
	assert.Equal(t, "3.12.1", got.Version)

	// A fresh cache reads the persisted entry back.
	fresh := New(dir)
	got = fresh.Get(exe)
	require.NotNil(t, got)
	assert.Equal(t, prefix, got.Prefix)
	assert.True(t, got.Is64Bit)
}

func TestTouchedAliasInvalidatesEntry(t *testing.T) {
	prefix, exe := fakeInterpreter(t)
	alias := filepath.Join(prefix, "bin", "python")
	dir := t.TempDir()

	c := New(dir)
	c.Store(&core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.1", Symlinks: []string{alias}})
	file := entryPath(dir, exe)
	require.FileExists(t, file)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(alias, later, later))

	assert.Nil(t, New(dir).Get(exe))
	assert.NoFileExists(t, file)

	assert.Nil(t, c.Get(exe), "the in-memory copy is invalidated as well")
}

func TestGetRejectsForeignEntry(t *testing.T) {
	prefix, exe := fakeInterpreter(t)
	other := filepath.Join(prefix, "bin", "python")
	dir := t.TempDir()

	// Simulate a hash collision: the file for other holds exe's record.
	times := captureTimes([]string{exe})
	require.NoError(t, writeEntryFile(dir, other, &entryFile{
		Environment: core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.1"},
		Symlinks:    times,
	}))

	assert.Nil(t, New(dir).Get(other))
}

func TestStoreReplacesEntryWholesale(t *testing.T) {
	prefix, exe := fakeInterpreter(t)
	alias := filepath.Join(prefix, "bin", "python")
	dir := t.TempDir()

	c := New(dir)
	c.Store(&core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.0"})
	c.Store(&core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.1", Symlinks: []string{alias}})

	got := New(dir).Get(exe)
	require.NotNil(t, got)
	assert.Equal(t, "3.12.1", got.Version)
	assert.Contains(t, got.Symlinks, alias)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(alias, later, later))
	assert.Nil(t, New(dir).Get(exe))
	assert.Nil(t, c.Get(exe))
}

func TestMemoryOnlyCache(t *testing.T) {
	prefix, exe := fakeInterpreter(t)
	c := New("")
	c.Store(&core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.1"})
	assert.NotNil(t, c.Get(exe))

	assert.ErrorIs(t, c.Clear(), ErrNoDirectory)
	assert.Nil(t, c.Get(exe))
}

func TestClear(t *testing.T) {
	prefix, exe := fakeInterpreter(t)
	dir := t.TempDir()
	c := New(dir)
	c.Store(&core.ResolvedPythonEnv{Executable: exe, Prefix: prefix, Version: "3.12.1"})

	require.NoError(t, c.Clear())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Nil(t, c.Get(exe))
}

func TestLocatorCacheSingleProducer(t *testing.T) {
	c := NewLocatorCache[int]()
	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok := c.GetOrInsertWith("conda", func() (int, bool) {
				calls.Add(1)
				time.Sleep(10 * time.Millisecond)
				return 42, true
			})
			assert.True(t, ok)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())

	_, ok := c.GetOrInsertWith("missing", func() (int, bool) { return 0, false })
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "misses are not stored")
}

func TestCachedValue(t *testing.T) {
	var v CachedValue[string]
	calls := 0
	get := func() string { calls++; return "root" }
	assert.Equal(t, "root", v.Get(get))
	assert.Equal(t, "root", v.Get(get))
	assert.Equal(t, 1, calls)
	v.Reset()
	v.Get(get)
	assert.Equal(t, 2, calls)
}
