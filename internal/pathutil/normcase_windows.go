//go:build windows

package pathutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

func normCase(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	if !strings.HasPrefix(path, `\\?\`) {
		resolved = stripExtendedPrefix(resolved)
	}
	return resolved
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// IsJunction reports whether path is an NTFS junction (a mount point reparse
// point), which os.Lstat no longer reports as a symlink.
func IsJunction(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	var data windows.Win32finddata
	h, err := windows.FindFirstFile(p, &data)
	if err != nil {
		return false
	}
	_ = windows.FindClose(h)
	return data.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 &&
		data.Reserved0 == windows.IO_REPARSE_TAG_MOUNT_POINT
}
