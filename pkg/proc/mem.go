package proc

// Request is one remote range to read: Len bytes starting at Base.
type Request struct {
	Base uint64
	Len  int
}

// End returns the address one past the last byte of the request.
func (r Request) End() uint64 {
	return r.Base + uint64(r.Len)
}

// Readv performs a single vectored read from the memory of pid, with the
// semantics of process_vm_readv(2): local[i] receives remote[i], reading
// stops at the first remote range that can't be read in full and the
// number of bytes transferred so far is returned. An error means nothing
// was read because the first range is invalid.
type Readv interface {
	Readv(pid int, local [][]byte, remote []Request) (int, error)
}

// ReadvFunc adapts a function to the Readv interface.
type ReadvFunc func(pid int, local [][]byte, remote []Request) (int, error)

func (f ReadvFunc) Readv(pid int, local [][]byte, remote []Request) (int, error) {
	return f(pid, local, remote)
}

// MemoryReader reads the memory of a target process. Unreadable ranges are
// reported as nil buffers, never as truncated data.
type MemoryReader interface {
	// ReadOne reads n bytes at addr, or returns nil.
	ReadOne(addr uint64, n int) []byte
	// ReadMany reads every request; the result is aligned with reqs.
	ReadMany(reqs []Request) [][]byte
}
