package proc

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

var errFault = errors.New("bad address")

// fakeMemory mimics process_vm_readv over a sparse address space: every
// address not listed in holes is readable and holds byte(addr*7+3).
type fakeMemory struct {
	holes  []Span
	calls  int
	firsts []uint64
}

func memByte(addr uint64) byte {
	return byte(addr*7 + 3)
}

func (f *fakeMemory) readable(addr uint64) bool {
	for _, h := range f.holes {
		if h.Start <= addr && addr < h.End {
			return false
		}
	}
	return true
}

func (f *fakeMemory) Readv(pid int, local [][]byte, remote []Request) (int, error) {
	f.calls++
	if len(remote) > 0 {
		f.firsts = append(f.firsts, remote[0].Base)
	}

	total := 0
	for i, r := range remote {
		for k := 0; k < r.Len; k++ {
			addr := r.Base + uint64(k)
			if !f.readable(addr) {
				if total == 0 {
					return -1, errFault
				}
				return total, nil
			}
			local[i][k] = memByte(addr)
			total++
		}
	}
	return total, nil
}

func expected(r Request) []byte {
	buf := make([]byte, r.Len)
	for i := range buf {
		buf[i] = memByte(r.Base + uint64(i))
	}
	return buf
}

func checkResults(t *testing.T, reqs []Request, invalid map[int]bool, got [][]byte) {
	t.Helper()
	if len(got) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(got))
	}
	for i, r := range reqs {
		if invalid[i] {
			if got[i] != nil {
				t.Fatalf("request %d (%#x) should have failed", i, r.Base)
			}
			continue
		}
		if !bytes.Equal(got[i], expected(r)) {
			t.Fatalf("request %d (%#x) returned wrong data", i, r.Base)
		}
	}
}

func TestReadManyPositions(t *testing.T) {
	reqs := []Request{
		{Base: 0x1000, Len: 16},
		{Base: 0x2000, Len: 32},
		{Base: 0x3000, Len: 8},
		{Base: 0x4000, Len: 64},
	}

	cases := []struct {
		name    string
		invalid []int
	}{
		{"none", nil},
		{"first", []int{0}},
		{"middle", []int{1}},
		{"last", []int{3}},
		{"first and last", []int{0, 3}},
		{"adjacent", []int{1, 2}},
		{"all", []int{0, 1, 2, 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := &fakeMemory{}
			invalid := map[int]bool{}
			for _, i := range tc.invalid {
				invalid[i] = true
				mem.holes = append(mem.holes, Span{Start: reqs[i].Base, End: reqs[i].End()})
			}

			r := NewReaderWith(1, mem, Limits{IovMax: 16, ChunkSize: 1 << 20})
			checkResults(t, reqs, invalid, r.ReadMany(reqs))

			if mem.calls > len(tc.invalid)+1 {
				t.Fatalf("%d calls for %d invalid requests", mem.calls, len(tc.invalid))
			}
		})
	}
}

func TestReadManyPartialRequest(t *testing.T) {
	// The hole covers only the tail of the second request: its leading
	// bytes are read but must not be returned.
	reqs := []Request{
		{Base: 0x1000, Len: 16},
		{Base: 0x2000, Len: 32},
		{Base: 0x3000, Len: 8},
	}
	mem := &fakeMemory{holes: []Span{{Start: 0x2010, End: 0x2020}}}
	r := NewReaderWith(1, mem, Limits{IovMax: 16, ChunkSize: 1 << 20})

	checkResults(t, reqs, map[int]bool{1: true}, r.ReadMany(reqs))
	if mem.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mem.calls)
	}
}

func TestReadManyRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 500; iter++ {
		n := 1 + rng.Intn(40)
		reqs := make([]Request, n)
		invalid := map[int]bool{}
		mem := &fakeMemory{}

		addr := uint64(0x10000)
		for i := range reqs {
			addr += uint64(rng.Intn(3)) * 0x100
			reqs[i] = Request{Base: addr, Len: 1 + rng.Intn(200)}
			addr = reqs[i].End()
			if rng.Intn(3) == 0 {
				invalid[i] = true
				// Make a random byte of the request unreadable.
				k := uint64(rng.Intn(reqs[i].Len))
				mem.holes = append(mem.holes, Span{Start: reqs[i].Base + k, End: reqs[i].Base + k + 1})
			}
		}

		iovMax := 1 + rng.Intn(8)
		r := NewReaderWith(1, mem, Limits{IovMax: iovMax, ChunkSize: 1 << 20})
		checkResults(t, reqs, invalid, r.ReadMany(reqs))

		// Requests ascend, so no call may start at or before the previous one.
		for i := 1; i < len(mem.firsts); i++ {
			if mem.firsts[i] <= mem.firsts[i-1] {
				t.Fatalf("call %d re-read from %#x after %#x", i, mem.firsts[i], mem.firsts[i-1])
			}
		}

		windows := (n + iovMax - 1) / iovMax
		if mem.calls > len(invalid)+windows {
			t.Fatalf("%d calls for %d invalid requests in %d windows", mem.calls, len(invalid), windows)
		}
	}
}

func TestReadOne(t *testing.T) {
	mem := &fakeMemory{holes: []Span{{Start: 0x2004, End: 0x2005}}}
	r := NewReaderWith(1, mem, Limits{})

	if got := r.ReadOne(0x1000, 8); !bytes.Equal(got, expected(Request{Base: 0x1000, Len: 8})) {
		t.Fatalf("unexpected data %x", got)
	}
	if got := r.ReadOne(0x2000, 8); got != nil {
		t.Fatalf("expected nil for partially readable range, got %x", got)
	}
	if got := r.ReadOne(0x2004, 1); got != nil {
		t.Fatalf("expected nil for unreadable byte, got %x", got)
	}
	if got := r.ReadOne(0x1000, 0); got != nil {
		t.Fatalf("expected nil for empty read")
	}
}
