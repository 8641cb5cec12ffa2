//go:build darwin || netbsd

package cache

import "golang.org/x/sys/unix"

func fileTimes(path string) (mtime, ctime int64, err error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0, err
	}
	return st.Mtimespec.Nano(), st.Ctimespec.Nano(), nil
}
