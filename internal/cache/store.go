package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/richinsley/pylocate/internal/core"
	"github.com/richinsley/pylocate/internal/pathutil"
)

const (
	fileVersion = 1
	fileExt     = ".msgpack"
)

// FileTimes captures the timestamps of one tracked path.
type FileTimes struct {
	Path  string `msgpack:"path"`
	Mtime int64  `msgpack:"mtime"`
	Ctime int64  `msgpack:"ctime"`
}

// entryFile is the persisted form of one cache entry.
type entryFile struct {
	Environment core.ResolvedPythonEnv `msgpack:"environment"`
	Symlinks    []FileTimes            `msgpack:"symlinks"`
}

// HashExecutable returns the fixed-length key for an executable path.
func HashExecutable(exe string) string {
	sum := sha256.Sum256([]byte(pathutil.NormCase(exe)))
	return hex.EncodeToString(sum[:])[:16]
}

func entryPath(dir, exe string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%d%s", HashExecutable(exe), fileVersion, fileExt))
}

// captureTimes stats every path. Paths that cannot be read are skipped; the
// result is sorted and free of duplicates.
func captureTimes(paths []string) []FileTimes {
	var out []FileTimes
	for _, p := range pathutil.Unique(paths) {
		mtime, ctime, err := fileTimes(p)
		if err != nil {
			continue
		}
		out = append(out, FileTimes{Path: p, Mtime: mtime, Ctime: ctime})
	}
	return out
}

// timesUnchanged reports whether every tracked path still has the recorded
// timestamps.
func timesUnchanged(tracked []FileTimes) bool {
	for _, ft := range tracked {
		mtime, ctime, err := fileTimes(ft.Path)
		if err != nil || mtime != ft.Mtime || ctime != ft.Ctime {
			return false
		}
	}
	return true
}

// readEntryFile loads and validates the entry for exe. An entry whose
// tracked timestamps changed is deleted.
func readEntryFile(dir, exe string) (*entryFile, bool) {
	file := entryPath(dir, exe)
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}
	var entry entryFile
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		slog.Debug("discarding unreadable cache entry", "file", file, "error", err)
		_ = os.Remove(file)
		return nil, false
	}
	if !timesUnchanged(entry.Symlinks) {
		slog.Debug("cache entry is stale", "executable", exe, "file", file)
		_ = os.Remove(file)
		return nil, false
	}
	return &entry, true
}

// writeEntryFile persists the entry for exe through a temp file and rename.
// Concurrent writers of the same key race last-write-wins.
func writeEntryFile(dir, exe string, entry *entryFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), entryPath(dir, exe)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache entry: %w", err)
	}
	return nil
}

// removeAll deletes every entry file in dir.
func removeAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
