// Package maps parses /proc/<pid>/maps into a Catalog of Regions and
// classifies them for scanning.
package maps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// ProcRoot is where per-process directories are looked up.
var ProcRoot = "/proc"

const deletedSuffix = " (deleted)"

// Permissions of a mapping, from the 4 character perms column.
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
	Shared  bool
}

// ParsePermissions parses strings like "rw-p". It returns false if s is
// shorter than 4 characters.
func ParsePermissions(s string) (Permissions, bool) {
	if len(s) < 4 {
		return Permissions{}, false
	}
	return Permissions{
		Read:    s[0] == 'r',
		Write:   s[1] == 'w',
		Execute: s[2] == 'x',
		Shared:  s[3] == 's',
	}, true
}

func (p Permissions) String() string {
	b := []byte("---p")
	if p.Read {
		b[0] = 'r'
	}
	if p.Write {
		b[1] = 'w'
	}
	if p.Execute {
		b[2] = 'x'
	}
	if p.Shared {
		b[3] = 's'
	}
	return string(b)
}

// Region is one line of the maps file: the half-open range [Start, End).
type Region struct {
	Start uint64
	End   uint64
	Perms Permissions
	// Path of the backing file, or a pseudo-path such as "[stack]". Empty
	// for anonymous mappings.
	Path string
}

func (r Region) Size() uint64 {
	return r.End - r.Start
}

func (r Region) Contains(addr uint64) bool {
	return r.Start <= addr && addr < r.End
}

func (r Region) String() string {
	return fmt.Sprintf("%016X-%016X %s %10d %s", r.Start, r.End, r.Perms, r.Size(), r.Path)
}

// Compare orders r against addr: -1 if r lies entirely below addr, 1 if r
// starts above addr, 0 if r contains addr.
func (r Region) Compare(addr uint64) int {
	switch {
	case r.End <= addr:
		return -1
	case r.Start > addr:
		return 1
	default:
		return 0
	}
}

func (r Region) deleted() bool {
	return strings.HasSuffix(r.Path, deletedSuffix)
}

func (r Region) memfd() bool {
	return strings.HasPrefix(r.Path, "/memfd:")
}

func (r Region) pseudo() bool {
	return strings.HasPrefix(r.Path, "[")
}

var helperMappings = map[string]bool{
	"[vsyscall]":    true,
	"[vvar]":        true,
	"[vvar_vclock]": true,
	"[vdso]":        true,
}

var systemDirs = []string{"/dev/", "/proc/", "/sys/"}

var volatileDirs = []string{"/dev/", "/proc/", "/sys/", "/tmp/", "/run/", "/dev/shm/"}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// ReadWrite reports whether the region is readable and writable.
func ReadWrite(r Region) bool {
	return r.Perms.Read && r.Perms.Write
}

// ReadOnly reports whether the region is readable but not writable.
func ReadOnly(r Region) bool {
	return r.Perms.Read && !r.Perms.Write
}

// Readable reports whether the region is readable at all.
func Readable(r Region) bool {
	return r.Perms.Read
}

// IsInteresting reports whether the region is worth scanning: it must be
// readable and not one of the kernel helper mappings, a device or system
// file, an anonymous inode, a memfd or a deleted file.
func (r Region) IsInteresting() bool {
	if !r.Perms.Read {
		return false
	}
	if helperMappings[r.Path] {
		return false
	}
	if hasAnyPrefix(r.Path, systemDirs) || strings.HasPrefix(r.Path, "anon_inode:") {
		return false
	}
	return !r.memfd() && !r.deleted()
}

// IsLikelyFileBacked is a display heuristic: the region maps a regular file
// that is likely to stay put, so pointers into it are probably static.
func (r Region) IsLikelyFileBacked() bool {
	if r.Path == "" || r.pseudo() {
		return false
	}
	return !hasAnyPrefix(r.Path, volatileDirs) && !r.deleted() && !r.memfd()
}

// Catalog is a list of regions sorted by start address.
type Catalog []Region

// Filter returns the regions for which keep returns true.
func (c Catalog) Filter(keep func(Region) bool) Catalog {
	var out Catalog
	for _, r := range c {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Interesting is a shorthand for Filter with both keep and IsInteresting.
func (c Catalog) Interesting(keep func(Region) bool) Catalog {
	return c.Filter(func(r Region) bool {
		return keep(r) && r.IsInteresting()
	})
}

// Find returns the region containing addr. The catalog must be sorted.
func (c Catalog) Find(addr uint64) (Region, bool) {
	i, found := slices.BinarySearchFunc(c, addr, Region.Compare)
	if !found {
		return Region{}, false
	}
	return c[i], true
}

// Bounds returns the lowest start and highest end in the catalog.
func (c Catalog) Bounds() (uint64, uint64) {
	if len(c) == 0 {
		return 0, 0
	}
	return c[0].Start, c[len(c)-1].End
}

// ParseLine parses one line of a maps file. Lines that don't follow the
// "start-end perms offset dev inode [path]" layout are rejected.
func ParseLine(line string) (Region, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Region{}, false
	}

	lo, hi, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Region{}, false
	}
	start, err := strconv.ParseUint(lo, 16, 64)
	if err != nil {
		return Region{}, false
	}
	end, err := strconv.ParseUint(hi, 16, 64)
	if err != nil || end < start {
		return Region{}, false
	}

	perms, ok := ParsePermissions(fields[1])
	if !ok {
		return Region{}, false
	}

	// The path may contain spaces, so take everything after the inode.
	rest := line
	for i := 0; i < 5; i++ {
		rest = strings.TrimLeft(rest, " \t")
		j := strings.IndexAny(rest, " \t")
		if j < 0 {
			rest = ""
			break
		}
		rest = rest[j:]
	}

	return Region{
		Start: start,
		End:   end,
		Perms: perms,
		Path:  strings.TrimSpace(rest),
	}, true
}

// Parse reads a maps file, skipping malformed lines.
func Parse(rd io.Reader) (Catalog, error) {
	var c Catalog
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if r, ok := ParseLine(line); ok {
			c = append(c, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(c, func(a, b Region) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return c, nil
}

// Load parses the maps file of pid. It is re-read on every call since the
// mappings of a live process change.
func Load(pid int) (Catalog, error) {
	f, err := os.Open(filepath.Join(ProcRoot, strconv.Itoa(pid), "maps"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Accessible checks that both the maps file and the memory of pid can be
// opened by this process.
func Accessible(pid int) error {
	dir := filepath.Join(ProcRoot, strconv.Itoa(pid))
	for _, name := range []string{"maps", "mem"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		f.Close()
	}
	return nil
}
