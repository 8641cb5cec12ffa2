//go:build windows

package cache

import (
	"os"
	"syscall"
)

// fileTimes returns the last-write and creation times of path in
// nanoseconds.
func fileTimes(path string) (mtime, ctime int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return data.LastWriteTime.Nanoseconds(), data.CreationTime.Nanoseconds(), nil
	}
	return info.ModTime().UnixNano(), info.ModTime().UnixNano(), nil
}
