package proc

// Reader reads the memory of one process through vectored reads.
type Reader struct {
	pid    int
	sys    Readv
	limits Limits
}

// NewReader returns a Reader using process_vm_readv.
func NewReader(pid int, limits Limits) *Reader {
	return NewReaderWith(pid, ReadvFunc(sysReadv), limits)
}

// NewReaderWith returns a Reader issuing its calls through sys.
func NewReaderWith(pid int, sys Readv, limits Limits) *Reader {
	return &Reader{
		pid:    pid,
		sys:    sys,
		limits: limits.normalize(),
	}
}

func (r *Reader) Pid() int {
	return r.pid
}

func (r *Reader) Limits() Limits {
	return r.limits
}

// ReadOne reads n bytes at addr. It returns nil unless all n bytes could
// be read.
func (r *Reader) ReadOne(addr uint64, n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	read, err := r.sys.Readv(r.pid, [][]byte{buf}, []Request{{Base: addr, Len: n}})
	if err != nil || read != n {
		return nil
	}
	return buf
}

// ReadMany reads every request and returns one buffer per request, nil for
// the ones that couldn't be read in full. Requests beyond IovMax are read in
// further calls.
func (r *Reader) ReadMany(reqs []Request) [][]byte {
	out := make([][]byte, len(reqs))
	for lo := 0; lo < len(reqs); lo += r.limits.IovMax {
		hi := min(lo+r.limits.IovMax, len(reqs))
		r.readv(reqs[lo:hi], out[lo:hi])
	}
	return out
}

// readv resolves every request in reqs, storing successful buffers in out.
//
// process_vm_readv fails outright if the first remote range is invalid and
// otherwise stops at the first range it can't finish, returning the bytes
// copied so far. Each call therefore resolves at least one request: either
// the first one fails, or the byte count is walked across the requests
// until one isn't fully covered. That one is dropped and the next call
// starts right after it.
func (r *Reader) readv(reqs []Request, out [][]byte) {
	bufs := make([][]byte, len(reqs))
	for i, req := range reqs {
		if req.Len > 0 {
			bufs[i] = make([]byte, req.Len)
		}
	}

	cur := 0
	for cur < len(reqs) {
		n, err := r.sys.Readv(r.pid, bufs[cur:], reqs[cur:])
		if err != nil || n < 0 {
			cur++
			continue
		}

		for cur < len(reqs) {
			l := reqs[cur].Len
			if l > 0 && n >= l {
				out[cur] = bufs[cur]
				n -= l
				cur++
				continue
			}
			// Partially read (or not at all): discard it and retry after it.
			cur++
			break
		}
	}
}
