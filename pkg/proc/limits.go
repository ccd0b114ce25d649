package proc

import (
	"github.com/tklauser/go-sysconf"
)

const (
	// DefaultChunkSize is the byte budget of one batch of requests.
	DefaultChunkSize = 1 << 30

	// fallbackIovMax is UIO_MAXIOV on Linux, used if sysconf fails.
	fallbackIovMax = 1024
)

// Limits bounds the size of a single vectored read.
type Limits struct {
	// IovMax is the maximum number of ranges per call.
	IovMax int
	// ChunkSize is the maximum number of bytes per call.
	ChunkSize uint64
}

// SystemLimits queries IOV_MAX once. Callers keep the result for the
// lifetime of the process.
func SystemLimits() Limits {
	l := Limits{IovMax: fallbackIovMax, ChunkSize: DefaultChunkSize}
	if n, err := sysconf.Sysconf(sysconf.SC_IOV_MAX); err == nil && n > 0 {
		l.IovMax = int(n)
	}
	return l
}

// WithChunkSize returns a copy of l using n as byte budget. Zero keeps the
// current budget.
func (l Limits) WithChunkSize(n uint64) Limits {
	if n > 0 {
		l.ChunkSize = n
	}
	return l
}

func (l Limits) normalize() Limits {
	if l.IovMax <= 0 {
		l.IovMax = fallbackIovMax
	}
	if l.ChunkSize == 0 {
		l.ChunkSize = DefaultChunkSize
	}
	return l
}
