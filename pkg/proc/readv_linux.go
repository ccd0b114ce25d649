//go:build linux

package proc

import (
	"golang.org/x/sys/unix"
)

func sysReadv(pid int, local [][]byte, remote []Request) (int, error) {
	localIov := make([]unix.Iovec, len(local))
	for i, buf := range local {
		if len(buf) > 0 {
			localIov[i].Base = &buf[0]
		}
		localIov[i].SetLen(len(buf))
	}

	remoteIov := make([]unix.RemoteIovec, len(remote))
	for i, r := range remote {
		remoteIov[i] = unix.RemoteIovec{
			Base: uintptr(r.Base),
			Len:  r.Len,
		}
	}

	return unix.ProcessVMReadv(pid, localIov, remoteIov, 0)
}
