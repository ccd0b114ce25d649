package prowler

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	e "smug/error"
	"smug/pkg/maps"
	"smug/pkg/num"
	"smug/pkg/pattern"
	"smug/pkg/proc"
)

// Result is what a scan committed to the history.
type Result struct {
	// Index of the new history entry.
	Index int
	Addrs []uint64
}

type hit struct {
	addr uint64
	bits uint64
}

type sweepStats struct {
	batches  int
	requests int
	failed   int
}

// visitFunc inspects the memory read for one request and appends its hits
// to out.
type visitFunc func(base uint64, mem []byte, out []hit) []hit

// sweep reads every batch next hands out and runs visit over the requests
// read in full. Each batch is read, then split between at most p.workers
// goroutines. Requests that fail to read are skipped. The hits come back
// sorted by address without duplicates.
func (p *Prowler) sweep(next func() ([]proc.Request, bool), visit visitFunc) ([]hit, sweepStats) {
	var (
		mu      sync.Mutex
		results []hit
		st      sweepStats
	)

	for {
		batch, ok := next()
		if !ok {
			break
		}
		st.batches++
		st.requests += len(batch)

		bufs := p.reader.ReadMany(batch)
		for _, mem := range bufs {
			if mem == nil {
				st.failed++
			}
		}

		var g errgroup.Group
		g.SetLimit(p.workers)
		per := (len(batch) + p.workers - 1) / p.workers
		for lo := 0; lo < len(batch); lo += per {
			lo := lo
			hi := min(lo+per, len(batch))
			g.Go(func() error {
				var local []hit
				for i := lo; i < hi; i++ {
					if bufs[i] != nil {
						local = visit(batch[i].Base, bufs[i], local)
					}
				}
				if len(local) > 0 {
					mu.Lock()
					results = append(results, local...)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	slices.SortFunc(results, func(a, b hit) int {
		return cmp.Compare(a.addr, b.addr)
	})
	results = slices.CompactFunc(results, func(a, b hit) bool {
		return a.addr == b.addr
	})
	return results, st
}

func (p *Prowler) logSweep(cmd string, regions int, st sweepStats, matches int, start time.Time) {
	p.logger.Debugf("%s: %d regions, %d batches, %d of %d requests failed, %d matches in %v",
		cmd, regions, st.batches, st.failed, st.requests, matches, time.Since(start))
}

func (p *Prowler) commit(en Entry) Result {
	idx := p.history.Append(en)
	return Result{Index: idx, Addrs: en.Addrs}
}

func typedEntry(cmd string, k num.Kind, hits []hit) Entry {
	en := Entry{
		Command: cmd,
		Typed:   true,
		Kind:    k,
		Addrs:   make([]uint64, len(hits)),
		Bits:    make([]uint64, len(hits)),
	}
	for i, h := range hits {
		en.Addrs[i] = h.addr
		en.Bits[i] = h.bits
	}
	return en
}

func plainEntry(cmd string, hits []hit) Entry {
	en := Entry{Command: cmd, Addrs: make([]uint64, len(hits))}
	for i, h := range hits {
		en.Addrs[i] = h.addr
	}
	return en
}

// bound turns the unbounded end address 0 into the top of the address
// space.
func bound(end uint64) uint64 {
	if end == 0 {
		return math.MaxUint64
	}
	return end
}

// Scan searches the writable regions in [start, end) for values of
// proto's kind satisfying every constraint. An end of 0 means no bound.
func (p *Prowler) Scan(cmd string, proto num.Value, start, end uint64, cs []num.Constraint) (Result, error) {
	if num.NeedPrevious(cs) {
		return Result{}, e.NeedsPrevious
	}
	c, err := p.catalog()
	if err != nil {
		return Result{}, err
	}

	t0 := time.Now()
	regions := c.Interesting(maps.ReadWrite)
	w := proto.ByteWidth()
	planner := proc.NewPlanner(regions, start, bound(end), p.limits, w)

	hits, st := p.sweep(planner.Next, func(base uint64, mem []byte, out []hit) []hit {
		v := proto
		for off := 0; off+w <= len(mem); off += w {
			v.Decode(mem[off : off+w])
			if num.All(cs, v, num.Value{}) {
				out = append(out, hit{addr: base + uint64(off), bits: v.Bits()})
			}
		}
		return out
	})
	p.logSweep(cmd, len(regions), st, len(hits), t0)

	return p.commit(typedEntry(cmd, proto.Kind(), hits)), nil
}

// Rescan re-reads the addresses of history entry idx as values of
// proto's kind and keeps those satisfying every constraint. The result is
// always a subset of the entry. A missing entry gives an empty result.
func (p *Prowler) Rescan(cmd string, proto num.Value, idx int, cs []num.Constraint) (Result, error) {
	k := proto.Kind()
	en, ok := p.history.Get(idx)
	if !ok {
		p.logger.Debugf("%s: no history entry %d", cmd, idx)
		return p.commit(typedEntry(cmd, k, nil)), nil
	}

	needPrev := num.NeedPrevious(cs)
	if needPrev && !en.Comparable(k) {
		return Result{}, e.NeedsPrevious
	}

	t0 := time.Now()
	w := proto.ByteWidth()
	reqs := make([]proc.Request, len(en.Addrs))
	for i, addr := range en.Addrs {
		reqs[i] = proc.Request{Base: addr, Len: w}
	}
	batches := proc.Batches(reqs, p.limits)
	next := func() ([]proc.Request, bool) {
		if len(batches) == 0 {
			return nil, false
		}
		b := batches[0]
		batches = batches[1:]
		return b, true
	}

	hits, st := p.sweep(next, func(base uint64, mem []byte, out []hit) []hit {
		v := proto
		if !v.Decode(mem) {
			return out
		}
		var prev num.Value
		if needPrev {
			prev, _ = en.Prev(base, k)
		}
		if num.All(cs, v, prev) {
			out = append(out, hit{addr: base, bits: v.Bits()})
		}
		return out
	})
	p.logSweep(cmd, 0, st, len(hits), t0)

	return p.commit(typedEntry(cmd, k, hits)), nil
}

// readableSweep runs visit over every readable region in [start, end).
func (p *Prowler) readableSweep(cmd string, start, end uint64, visit visitFunc) (Result, error) {
	c, err := p.catalog()
	if err != nil {
		return Result{}, err
	}

	t0 := time.Now()
	regions := c.Interesting(maps.Readable)
	planner := proc.NewPlanner(regions, start, bound(end), p.limits, 1)
	hits, st := p.sweep(planner.Next, visit)
	p.logSweep(cmd, len(regions), st, len(hits), t0)

	return p.commit(plainEntry(cmd, hits)), nil
}

// PatternScan searches the readable regions in [start, end) for pat.
func (p *Prowler) PatternScan(cmd string, start, end uint64, pat *pattern.Pattern) (Result, error) {
	return p.readableSweep(cmd, start, end, func(base uint64, mem []byte, out []hit) []hit {
		m := pat.Search(mem)
		for {
			off, ok := m.Next()
			if !ok {
				return out
			}
			out = append(out, hit{addr: base + uint64(off)})
		}
	})
}

// StringScan searches the readable regions in [start, end) for needle.
func (p *Prowler) StringScan(cmd string, start, end uint64, needle []byte) (Result, error) {
	if len(needle) == 0 {
		return Result{}, e.NoText
	}
	return p.readableSweep(cmd, start, end, func(base uint64, mem []byte, out []hit) []hit {
		findAll(mem, needle, func(off int) {
			out = append(out, hit{addr: base + uint64(off)})
		})
		return out
	})
}

// Cell is one value shown by Display.
type Cell struct {
	Addr  uint64
	Value num.Value
	// Partial is set for a trailing remainder too short to decode.
	Partial bool
	// Pointer is set when the value points into readable memory.
	Pointer bool
}

// Display reads length bytes at addr and decodes them as values of
// proto's kind.
func (p *Prowler) Display(proto num.Value, addr uint64, length int) ([]Cell, error) {
	mem := p.reader.ReadOne(addr, length)
	if mem == nil {
		return nil, e.Arg("address", fmt.Sprintf("%#x", addr), e.Unreadable)
	}
	c, err := p.catalog()
	if err != nil {
		return nil, err
	}
	readable := c.Filter(maps.Readable)

	var cells []Cell
	w := proto.ByteWidth()
	for off := 0; off < len(mem); off += w {
		cell := Cell{Addr: addr + uint64(off), Value: proto}
		if off+w > len(mem) {
			cell.Partial = true
			cells = append(cells, cell)
			break
		}
		cell.Value.Decode(mem[off : off+w])
		cell.Pointer = p.pointsInto(readable, cell.Value.AsU64())
		cells = append(cells, cell)
	}
	return cells, nil
}

func (p *Prowler) pointsInto(readable maps.Catalog, ptr uint64) bool {
	if _, ok := readable.Find(ptr); !ok {
		return false
	}
	return p.reader.ReadOne(ptr, 1) != nil
}
