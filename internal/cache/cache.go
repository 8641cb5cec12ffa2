// Package cache remembers what interpreters reported about themselves so
// discovery does not spawn the same executable twice. Entries are keyed by a
// hash of the normalized executable path and are only valid while every
// tracked alias keeps the timestamps captured at store time.
package cache

import (
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

// ErrNoDirectory is returned by operations that need a cache directory when
// the cache is memory only.
var ErrNoDirectory = errors.New("cache has no directory")

// Cache holds resolved interpreters in memory and, when a directory is
// configured, on disk.
type Cache struct {
	dir string

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	env      *core.ResolvedPythonEnv
	symlinks []FileTimes
}

// New creates a cache persisting to dir. An empty dir keeps entries in
// memory only.
func New(dir string) *Cache {
	return &Cache{dir: dir, entries: map[string]*entry{}}
}

// Dir returns the directory entries persist to.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) entry(exe string) *entry {
	key := pathutil.NormCase(exe)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Get returns the cached interpreter for exe, or nil. A hit requires that
// every tracked alias is unchanged and that the stored alias set contains
// exe.
func (c *Cache) Get(exe string) *core.ResolvedPythonEnv {
	e := c.entry(exe)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.env != nil && !timesUnchanged(e.symlinks) {
		e.env, e.symlinks = nil, nil
	}
	if e.env == nil && c.dir != "" {
		if file, ok := readEntryFile(c.dir, exe); ok {
			e.env, e.symlinks = &file.Environment, file.Symlinks
		}
	}
	if e.env == nil {
		return nil
	}
	if !e.env.HasExecutable(exe) {
		slog.Debug("cache entry does not list the executable", "executable", exe, "cached", e.env.Executable)
		return nil
	}
	return cloneResolved(e.env)
}

// Store records env under its executable and every alias, tracking the
// timestamps of all of them.
func (c *Cache) Store(env *core.ResolvedPythonEnv) {
	paths := pathutil.Unique(env.AllExecutables())
	times := captureTimes(paths)
	for _, exe := range paths {
		e := c.entry(exe)
		e.mu.Lock()
		e.env, e.symlinks = cloneResolved(env), slices.Clone(times)
		if c.dir != "" {
			if err := writeEntryFile(c.dir, exe, &entryFile{Environment: *env, Symlinks: times}); err != nil {
				slog.Warn("failed to persist cache entry", "executable", exe, "error", err)
			}
		}
		e.mu.Unlock()
	}
}

// Clear drops every entry in memory and on disk. A memory-only cache is
// emptied and reports ErrNoDirectory.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = map[string]*entry{}
	c.mu.Unlock()
	if c.dir == "" {
		return ErrNoDirectory
	}
	return removeAll(c.dir)
}

func cloneResolved(env *core.ResolvedPythonEnv) *core.ResolvedPythonEnv {
	c := *env
	c.Symlinks = slices.Clone(env.Symlinks)
	return &c
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Init fixes the process-wide cache directory. Only the first call has any
// effect; later calls and Default share that cache.
func Init(dir string) *Cache {
	defaultOnce.Do(func() {
		defaultCache = New(dir)
	})
	return defaultCache
}

// Default returns the process-wide cache, memory only unless Init ran first.
func Default() *Cache {
	return Init("")
}
