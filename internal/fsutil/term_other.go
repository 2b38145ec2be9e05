//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package fsutil

import "os"

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
