package maps

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleMaps = `55d0c8a00000-55d0c8a02000 r--p 00000000 fd:01 1835132                    /usr/bin/cat
55d0c8a02000-55d0c8a07000 r-xp 00002000 fd:01 1835132                    /usr/bin/cat
55d0c8a0b000-55d0c8a0c000 rw-p 0000a000 fd:01 1835132                    /usr/bin/cat
55d0c9b5a000-55d0c9b7b000 rw-p 00000000 00:00 0                          [heap]
7f1e2c000000-7f1e2c021000 rw-p 00000000 00:00 0
7f1e2c200000-7f1e2c400000 rw-s 00000000 00:01 2048                       /memfd:wayland-shm (deleted)
7f1e2c600000-7f1e2c601000 rw-s 00000000 00:0e 1051                       anon_inode:[perf_event]
7f1e2c800000-7f1e2c810000 r--s 00000000 00:05 1024                       /dev/dri/card0
7f1e2ca00000-7f1e2ca10000 rw-p 00000000 fd:01 1234                       /tmp/my file.bin (deleted)
7f1e2cc00000-7f1e2cc10000 r--p 00000000 fd:01 4321                       /home/user/my lib.so
7ffc1a9f0000-7ffc1aa11000 rw-p 00000000 00:00 0                          [stack]
7ffc1ab4e000-7ffc1ab52000 r--p 00000000 00:00 0                          [vvar]
7ffc1ab52000-7ffc1ab54000 r-xp 00000000 00:00 0                          [vdso]
ffffffffff600000-ffffffffff601000 --xp 00000000 00:00 0                  [vsyscall]
garbage line
`

func mustParse(t *testing.T, s string) Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParse(t *testing.T) {
	c := mustParse(t, sampleMaps)
	if len(c) != 14 {
		t.Fatalf("expected 14 regions, got %d", len(c))
	}

	heap := c[3]
	want := Region{
		Start: 0x55d0c9b5a000,
		End:   0x55d0c9b7b000,
		Perms: Permissions{Read: true, Write: true},
		Path:  "[heap]",
	}
	if diff := cmp.Diff(want, heap); diff != "" {
		t.Fatalf("heap region mismatch (-want +got):\n%s", diff)
	}

	if c[4].Path != "" {
		t.Fatalf("anonymous mapping should have no path, got %q", c[4].Path)
	}
	if c[8].Path != "/tmp/my file.bin (deleted)" {
		t.Fatalf("path with spaces not preserved: %q", c[8].Path)
	}
	if !c[5].Perms.Shared {
		t.Fatalf("expected shared mapping")
	}
	if c[5].Perms.String() != "rw-s" {
		t.Fatalf("unexpected perms string %q", c[5].Perms.String())
	}
}

func TestClassification(t *testing.T) {
	c := mustParse(t, sampleMaps)

	interesting := map[string]bool{}
	fileBacked := map[string]bool{}
	for _, r := range c {
		interesting[r.Path] = r.IsInteresting()
		fileBacked[r.Path] = r.IsLikelyFileBacked()
	}

	for path, want := range map[string]bool{
		"/usr/bin/cat":                  true,
		"[heap]":                        true,
		"":                              true,
		"/memfd:wayland-shm (deleted)":  false,
		"anon_inode:[perf_event]":       false,
		"/dev/dri/card0":                false,
		"/tmp/my file.bin (deleted)":    false,
		"/home/user/my lib.so":          true,
		"[stack]":                       true,
		"[vvar]":                        false,
		"[vdso]":                        false,
		"[vsyscall]":                    false,
	} {
		if interesting[path] != want {
			t.Errorf("IsInteresting(%q) = %v, want %v", path, interesting[path], want)
		}
	}

	for path, want := range map[string]bool{
		"/usr/bin/cat":               true,
		"[heap]":                     false,
		"":                           false,
		"/dev/dri/card0":             false,
		"/tmp/my file.bin (deleted)": false,
		"/home/user/my lib.so":       true,
		"[stack]":                    false,
	} {
		if fileBacked[path] != want {
			t.Errorf("IsLikelyFileBacked(%q) = %v, want %v", path, fileBacked[path], want)
		}
	}

	rw := c.Interesting(ReadWrite)
	for _, r := range rw {
		if !r.Perms.Read || !r.Perms.Write || !r.IsInteresting() {
			t.Fatalf("unexpected region in read-write set: %v", r)
		}
	}
	if len(rw) != 4 {
		t.Fatalf("expected 4 interesting read-write regions, got %d", len(rw))
	}
	ro := c.Filter(ReadOnly)
	for _, r := range ro {
		if r.Perms.Write || !r.Perms.Read {
			t.Fatalf("unexpected region in read-only set: %v", r)
		}
	}
}

func linearFind(c Catalog, addr uint64) (Region, bool) {
	for _, r := range c {
		if r.Contains(addr) {
			return r, true
		}
	}
	return Region{}, false
}

func TestFindMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 200; iter++ {
		var c Catalog
		addr := uint64(rng.Intn(64))
		for n := rng.Intn(20); n > 0; n-- {
			start := addr + uint64(rng.Intn(32))
			end := start + 1 + uint64(rng.Intn(64))
			c = append(c, Region{Start: start, End: end})
			addr = end
		}

		for probe := uint64(0); probe < addr+16; probe++ {
			got, gotOK := c.Find(probe)
			want, wantOK := linearFind(c, probe)
			if gotOK != wantOK || got != want {
				t.Fatalf("Find(%#x) = %v,%v; linear scan = %v,%v", probe, got, gotOK, want, wantOK)
			}
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	old := ProcRoot
	ProcRoot = dir
	defer func() { ProcRoot = old }()

	if _, err := Load(42); err == nil {
		t.Fatalf("expected error for missing maps file")
	}
	if err := Accessible(42); err == nil {
		t.Fatalf("expected error for missing process")
	}

	if err := os.MkdirAll(filepath.Join(dir, "42"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "42", "maps"), []byte(sampleMaps), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "42", "mem"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c) != 14 {
		t.Fatalf("expected 14 regions, got %d", len(c))
	}
	if err := Accessible(42); err != nil {
		t.Fatalf("Accessible: %v", err)
	}
}
