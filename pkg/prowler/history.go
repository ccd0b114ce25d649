package prowler

import (
	"cmp"
	"slices"

	e "smug/error"
	"smug/pkg/num"
)

// Entry is the result of one scan. Typed scans also keep the value read at
// each address, which later rescans compare against.
type Entry struct {
	// Command that produced the entry, e.g. "sd".
	Command string
	// Addrs ascend and hold no duplicates.
	Addrs []uint64

	Typed bool
	Kind  num.Kind
	// Bits[i] are the raw bits read at Addrs[i] when Typed.
	Bits []uint64
}

func (en Entry) Len() int {
	return len(en.Addrs)
}

// Prev returns the bits recorded at addr read as kind k.
func (en Entry) Prev(addr uint64, k num.Kind) (num.Value, bool) {
	if !en.Typed {
		return num.Value{}, false
	}
	i, ok := slices.BinarySearch(en.Addrs, addr)
	if !ok {
		return num.Value{}, false
	}
	return num.FromBits(k, en.Bits[i]), true
}

// Comparable reports whether values of kind k can be compared against the
// values the entry recorded.
func (en Entry) Comparable(k num.Kind) bool {
	return en.Typed && num.FromBits(en.Kind, 0).ByteWidth() == num.FromBits(k, 0).ByteWidth()
}

// History is the append-only list of past results. Indices seen by the user
// are 1-based and 0 stands for the latest entry.
type History struct {
	entries []Entry
}

// Append records en, even when it is empty, and returns its index.
func (h *History) Append(en Entry) int {
	h.entries = append(h.entries, en)
	return len(h.entries)
}

func (h *History) Len() int {
	return len(h.entries)
}

// Get returns the entry at the 1-based idx, or the latest for 0.
func (h *History) Get(idx int) (Entry, bool) {
	if idx == 0 {
		idx = len(h.entries)
	}
	if idx < 1 || idx > len(h.entries) {
		return Entry{}, false
	}
	return h.entries[idx-1], true
}

// Diff returns the addresses of the latest entry missing from the one
// before it.
func (h *History) Diff() ([]uint64, error) {
	n := len(h.entries)
	if n < 2 {
		return nil, e.NotEnoughScans
	}
	return Diff(h.entries[n-2].Addrs, h.entries[n-1].Addrs), nil
}

// Diff merges two ascending address lists and returns what newer adds to
// older. Addresses dropped by newer are not reported.
func Diff(older, newer []uint64) []uint64 {
	var (
		out  []uint64
		i, j int
	)
	for i < len(newer) && j < len(older) {
		switch cmp.Compare(newer[i], older[j]) {
		case -1:
			out = append(out, newer[i])
			i++
		case 0:
			i++
			j++
		default:
			j++
		}
	}
	return append(out, newer[i:]...)
}
