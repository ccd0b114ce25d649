//go:build !linux

package proc

import (
	e "smug/error"
)

func sysReadv(pid int, local [][]byte, remote []Request) (int, error) {
	return -1, e.Unsupported
}
