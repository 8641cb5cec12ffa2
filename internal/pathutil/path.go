// Package pathutil holds the path identity helpers shared by every locator:
// case normalization, symlink resolution, variable expansion and the test
// root override.
package pathutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// NormCase returns the canonical spelling of a path. On Windows the drive
// and every component take their on-disk casing; elsewhere the path is
// returned unchanged.
func NormCase(path string) string {
	if path == "" {
		return path
	}
	return normCase(path)
}

// ResolveSymlink returns the target of a python or conda executable that is a
// symbolic link. Helper binaries such as python3-config are ignored.
func ResolveSymlink(exe string) (string, bool) {
	name := filepath.Base(exe)
	if strings.HasSuffix(name, "-config") || strings.HasSuffix(name, "-build") {
		return "", false
	}
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "python") && !strings.HasPrefix(lower, "conda") {
		return "", false
	}
	info, err := os.Lstat(exe)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return "", false
	}
	target, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", false
	}
	target = stripExtendedPrefix(target)
	if target == exe {
		return "", false
	}
	return target, true
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// IsBrokenSymlink reports whether path is a symbolic link whose target does
// not exist.
func IsBrokenSymlink(path string) bool {
	if !IsSymlink(path) {
		return false
	}
	_, err := os.Stat(path)
	return err != nil
}

// Exists reports whether anything (following links) lives at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsFile reports whether path is a regular file, following links.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path is a directory, following links.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsDirEntry reports whether e, listed from dir, is a directory. Junctions
// count as directories even though ReadDir types them as irregular files.
func IsDirEntry(dir string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	return e.Type()&fs.ModeIrregular != 0 && IsJunction(filepath.Join(dir, e.Name()))
}

// ExpandPath replaces a leading ~ with home and expands $VAR and ${VAR}
// references through getenv. Paths that fail to parse are returned as given.
func ExpandPath(path, home string, getenv func(string) string) string {
	if home != "" && (path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`)) {
		path = filepath.Join(home, path[1:])
	}
	if !strings.Contains(path, "$") || getenv == nil {
		return path
	}
	word, err := syntax.NewParser().Document(strings.NewReader(path))
	if err != nil {
		return path
	}
	cfg := &expand.Config{Env: expand.FuncEnviron(getenv)}
	expanded, err := expand.Document(cfg, word)
	if err != nil {
		return path
	}
	return expanded
}

// Rebase joins path under root. An empty root leaves path untouched; tests
// use it to redirect absolute system locations into a fixture tree.
func Rebase(root, path string) string {
	if root == "" {
		return path
	}
	vol := filepath.VolumeName(path)
	return filepath.Join(root, strings.TrimPrefix(path, vol))
}

// Unique sorts paths and drops empty entries and duplicates.
func Unique(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// HasPathPrefix reports whether path equals dir or lives below it.
func HasPathPrefix(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// EndsWith reports whether the final components of path equal suffix,
// compared component by component (bin matches /x/bin but not /x/robin).
func EndsWith(path string, suffix ...string) bool {
	parts := strings.FieldsFunc(filepath.ToSlash(path), func(r rune) bool { return r == '/' })
	if len(suffix) > len(parts) {
		return false
	}
	tail := parts[len(parts)-len(suffix):]
	for i, s := range suffix {
		if !sameName(tail[i], s) {
			return false
		}
	}
	return true
}

func stripExtendedPrefix(path string) string {
	return strings.TrimPrefix(path, `\\?\`)
}
