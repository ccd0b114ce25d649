package service

import "time"

// Name is what a server answers the handshake with.
const Name = "smug"

// Timeout bounds one request. Scans of large targets take a while.
const Timeout = 10 * time.Minute

// Client sends command lines to a scanner server and returns their output.
type Client interface {
	SendExpr(expr string) (string, error)
	IsSmugServer() bool
}

// Executor runs command lines against a target. *prowler.Prowler is one.
type Executor interface {
	Exec(line string) (string, error)
	Pid() int
}
