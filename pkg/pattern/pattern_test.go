package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	e "smug/error"
)

const hello = "48 65 6C 6C 6F ?? 20 ?? ?? 72 6C 64 ??"

func TestParseAnchors(t *testing.T) {
	p, err := Parse(strings.Fields(hello))
	if err != nil {
		t.Fatal(err)
	}
	want := []Anchor{
		{Offset: 0, Bytes: []byte("Hello")},
		{Offset: 6, Bytes: []byte(" ")},
		{Offset: 9, Bytes: []byte("rld")},
	}
	if diff := cmp.Diff(want, p.Anchors()); diff != "" {
		t.Fatalf("unexpected anchors (-want +got):\n%s", diff)
	}
	if p.Len() != 13 {
		t.Fatalf("expected a 13 byte pattern, got %d", p.Len())
	}
	if p.Best().Offset != 0 {
		t.Fatalf("expected the first anchor to be searched for, got offset %d", p.Best().Offset)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in  string
		err error
	}{
		{"", e.EmptyPattern},
		{"?? ? ??", e.EmptyPattern},
		{"48 4? 65", e.NibbleWildcard},
		{"48 ?5", e.NibbleWildcard},
		{"48 GG", e.BadPatternByte},
		{"480", e.BadPatternByte},
		{"+1", e.BadPatternByte},
	}
	for _, tc := range cases {
		_, err := Parse(strings.Fields(tc.in))
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.err, err)
		}
	}
}

func TestFindHello(t *testing.T) {
	p, err := Parse(strings.Fields(hello))
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []int{0, 1, 100, 4096 - 13} {
		buf := make([]byte, 4096)
		copy(buf[k:], "Hello, World!")

		if got := p.Find(buf); !cmp.Equal(got, []int{k}) {
			t.Fatalf("k=%d: got %v", k, got)
		}

		// Alter a known byte; wildcards stay free.
		buf[k+9] = 'x'
		if got := p.Find(buf); len(got) != 0 {
			t.Fatalf("k=%d: altered buffer matched at %v", k, got)
		}
		buf[k+9] = 'r'
		buf[k+5] = 'x'
		if got := p.Find(buf); !cmp.Equal(got, []int{k}) {
			t.Fatalf("k=%d: wildcard byte change broke the match: %v", k, got)
		}
	}
}

func TestFindBounds(t *testing.T) {
	// The pattern would start before the chunk.
	p, _ := Parse([]string{"??", "41"})
	if got := p.Find([]byte("ABC")); len(got) != 0 {
		t.Fatalf("expected no match before the chunk, got %v", got)
	}
	if got := p.Find([]byte("xABC")); !cmp.Equal(got, []int{0}) {
		t.Fatalf("expected a match at 0, got %v", got)
	}

	// The trailing anchor runs off the end.
	p, _ = Parse([]string{"41", "??", "42"})
	if got := p.Find([]byte("xxA")); len(got) != 0 {
		t.Fatalf("expected no match past the chunk, got %v", got)
	}
	if got := p.Find([]byte("xxA?B")); !cmp.Equal(got, []int{2}) {
		t.Fatalf("expected a match at 2, got %v", got)
	}
}

func TestFindNonOverlapping(t *testing.T) {
	p, _ := Parse([]string{"41", "41"})
	if got := p.Find([]byte("AAAAA")); !cmp.Equal(got, []int{0, 2}) {
		t.Fatalf("unexpected occurrences %v", got)
	}
}

func TestScoreOrdering(t *testing.T) {
	for n := 2; n <= 16; n++ {
		same := []byte(strings.Repeat("\x00", n))
		varied := make([]byte, n)
		for i := range varied {
			varied[i] = byte(i*37 + 11)
		}
		s1, err := Score(same)
		if err != nil {
			t.Fatal(err)
		}
		s2, err := Score(varied)
		if err != nil {
			t.Fatal(err)
		}
		if s1 >= s2 {
			t.Fatalf("n=%d: identical bytes scored %f, varied bytes %f", n, s1, s2)
		}
	}

	a, _ := Score([]byte{1, 2, 3, 4})
	b, _ := Score([]byte{1, 2, 3, 4})
	if a != b {
		t.Fatalf("score isn't deterministic")
	}
}

func TestScoreOverflow(t *testing.T) {
	if _, err := Score(make([]byte, 1<<16)); !errors.Is(err, e.AnchorOverflow) {
		t.Fatalf("expected AnchorOverflow, got %v", err)
	}
	if _, err := Score(make([]byte, 1<<16-1)); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	toks := make([]string, 1<<16)
	for i := range toks {
		toks[i] = "00"
	}
	if _, err := Parse(toks); !errors.Is(err, e.AnchorOverflow) {
		t.Fatalf("expected Parse to report AnchorOverflow, got %v", err)
	}
}

func TestBestAnchorSkipsRuns(t *testing.T) {
	p, err := Parse(strings.Fields("00 00 00 00 ?? 8B 45 F8"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Best().Offset != 5 {
		t.Fatalf("expected the varied anchor to be searched for, got offset %d", p.Best().Offset)
	}
}
