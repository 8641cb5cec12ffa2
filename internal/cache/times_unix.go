//go:build linux || freebsd || openbsd

package cache

import "golang.org/x/sys/unix"

// fileTimes returns the modification and status-change times of path in
// nanoseconds, following symlinks.
func fileTimes(path string) (mtime, ctime int64, err error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0, err
	}
	return st.Mtim.Nano(), st.Ctim.Nano(), nil
}
