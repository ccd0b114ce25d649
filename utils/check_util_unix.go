package utils

import (
	"os"
	"path/filepath"
	"strconv"
)

// CheckPid reports whether pid names a running process.
func CheckPid(pid string) bool {
	if n, err := strconv.Atoi(pid); err != nil || n <= 0 {
		return false
	}
	path := filepath.Join("/proc", pid)
	_, err := os.Stat(path)
	return err == nil
}
