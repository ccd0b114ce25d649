package proc

import (
	"smug/pkg/maps"
)

// Span is a half-open address range [Start, End).
type Span struct {
	Start uint64
	End   uint64
}

// Planner splits the regions of a catalog, clipped to a range, into batches
// of requests that each fit in one vectored read. Batches come out in
// ascending address order and are produced lazily: the caller finishes one
// before asking for the next.
type Planner struct {
	spans  []Span
	limits Limits
	align  uint64

	i   int
	off uint64
}

// NewPlanner plans reads of every region of c intersecting [start, end).
// When a region has to be split, splits fall on multiples of align bytes
// from the region start so fixed-width values stay aligned.
func NewPlanner(c maps.Catalog, start, end uint64, limits Limits, align int) *Planner {
	limits = limits.normalize()
	if align < 1 {
		align = 1
	}
	if limits.ChunkSize < uint64(align) {
		limits.ChunkSize = uint64(align)
	}

	p := &Planner{
		limits: limits,
		align:  uint64(align),
	}
	for _, r := range c {
		s, e := max(r.Start, start), min(r.End, end)
		if s < e {
			p.spans = append(p.spans, Span{Start: s, End: e})
		}
	}
	return p
}

// Spans returns the clipped ranges the planner covers.
func (p *Planner) Spans() []Span {
	return p.spans
}

// Reset rewinds the planner to the first batch.
func (p *Planner) Reset() {
	p.i, p.off = 0, 0
}

// Next returns the next batch, or false once every span has been handed
// out. The total length of a batch never exceeds ChunkSize and it never
// holds more than IovMax requests.
func (p *Planner) Next() ([]Request, bool) {
	budget := p.limits.ChunkSize
	var batch []Request

	for p.i < len(p.spans) && len(batch) < p.limits.IovMax {
		sp := p.spans[p.i]
		base := sp.Start + p.off
		n := sp.End - base
		if n > budget {
			n = budget - budget%p.align
			if n == 0 {
				break
			}
		}

		batch = append(batch, Request{Base: base, Len: int(n)})
		budget -= n
		p.off += n
		if base+n == sp.End {
			p.i++
			p.off = 0
		}
		if budget == 0 {
			break
		}
	}

	if len(batch) == 0 {
		return nil, false
	}
	return batch, true
}

// Batches groups whole requests into batches honouring the same limits as
// Planner. A request larger than ChunkSize gets a batch of its own.
func Batches(reqs []Request, limits Limits) [][]Request {
	limits = limits.normalize()

	var (
		out   [][]Request
		lo    int
		bytes uint64
	)
	for i, r := range reqs {
		size := uint64(r.Len)
		if i > lo && (i-lo == limits.IovMax || bytes+size > limits.ChunkSize) {
			out = append(out, reqs[lo:i])
			lo, bytes = i, 0
		}
		bytes += size
	}
	if lo < len(reqs) {
		out = append(out, reqs[lo:])
	}
	return out
}
