//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package cache

import "os"

func fileTimes(path string) (mtime, ctime int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, err
	}
	return info.ModTime().UnixNano(), info.ModTime().UnixNano(), nil
}
