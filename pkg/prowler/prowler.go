// Package prowler scans the memory of a live process: typed value scans
// and rescans, byte pattern and string searches, and the history of their
// results.
package prowler

import (
	"fmt"
	"runtime"
	"sync"

	"smug/pkg/logflags"
	"smug/pkg/maps"
	"smug/pkg/proc"
)

// MapSource returns the current memory map of the target.
type MapSource func() (maps.Catalog, error)

// Options configures a Prowler. Zero fields take defaults.
type Options struct {
	Limits  proc.Limits
	Workers int
	// MaxPrint is the largest result listed address by address.
	MaxPrint int

	// Reader and Maps replace process_vm_readv and /proc/<pid>/maps.
	Reader proc.MemoryReader
	Maps   MapSource

	Logger logflags.Logger
}

// Prowler runs commands against one target process, one at a time.
type Prowler struct {
	pid      int
	reader   proc.MemoryReader
	maps     MapSource
	limits   proc.Limits
	workers  int
	maxPrint int
	logger   logflags.Logger

	history History
	mu      sync.Mutex
}

// NewProwler returns a Prowler for pid. Unless a map source is given, the
// maps and memory of pid must be readable.
func NewProwler(pid int, opts Options) (*Prowler, error) {
	p := &Prowler{
		pid:      pid,
		reader:   opts.Reader,
		maps:     opts.Maps,
		limits:   opts.Limits,
		workers:  opts.Workers,
		maxPrint: opts.MaxPrint,
		logger:   opts.Logger,
	}

	if p.limits.IovMax == 0 {
		p.limits = proc.SystemLimits().WithChunkSize(p.limits.ChunkSize)
	}
	if p.workers <= 0 {
		p.workers = runtime.NumCPU()
	}
	if p.logger == nil {
		p.logger = logflags.ProwlerLogger()
	}
	if p.maps == nil {
		if err := maps.Accessible(pid); err != nil {
			return nil, fmt.Errorf("can't access process %d: %w", pid, err)
		}
		p.maps = func() (maps.Catalog, error) {
			return maps.Load(pid)
		}
	}
	if p.reader == nil {
		p.reader = proc.NewReader(pid, p.limits)
	}

	return p, nil
}

func (p *Prowler) Pid() int {
	return p.pid
}

// History returns the results recorded so far.
func (p *Prowler) History() *History {
	return &p.history
}

// catalog reads the memory map afresh.
func (p *Prowler) catalog() (maps.Catalog, error) {
	c, err := p.maps()
	if err != nil {
		return nil, fmt.Errorf("couldn't parse memory map: %w", err)
	}
	return c, nil
}

// Region returns the region containing addr.
func (p *Prowler) Region(addr uint64) (maps.Region, bool, error) {
	c, err := p.catalog()
	if err != nil {
		return maps.Region{}, false, err
	}
	r, ok := c.Find(addr)
	return r, ok, nil
}

// Maps returns the regions a value scan covers, or every region.
func (p *Prowler) Maps(all bool) (maps.Catalog, error) {
	c, err := p.catalog()
	if err != nil || all {
		return c, err
	}
	return c.Interesting(maps.ReadWrite), nil
}

// fileBacked returns the regions whose addresses are highlighted.
func (p *Prowler) fileBacked() maps.Catalog {
	c, err := p.catalog()
	if err != nil {
		return nil
	}
	return c.Interesting(maps.Readable).Filter(maps.Region.IsLikelyFileBacked)
}
