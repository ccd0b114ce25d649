package utils

import (
	"fmt"
	"os"
)

// Executable returns the path of the executable pid runs, or the /proc
// link to it when the link can't be read.
func Executable(pid int) string {
	link := fmt.Sprintf("/proc/%d/exe", pid)
	path, err := os.Readlink(link)
	if err != nil {
		return link
	}
	return path
}
