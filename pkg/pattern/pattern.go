// Package pattern searches memory for byte patterns with whole-byte
// wildcards, written the way disassemblers print them:
//
//	48 65 6C 6C 6F ?? 20 ?? ?? 72 6C 64 ??
//
// A pattern is split into anchors, runs of known bytes. The anchor least
// likely to appear in memory by chance is searched for literally and the
// others are verified around each hit.
package pattern

import (
	"bytes"
	"strconv"
	"strings"

	e "smug/error"
)

// Anchor is a run of known bytes at Offset from the start of the pattern.
type Anchor struct {
	Offset int
	Bytes  []byte
}

// Pattern is a parsed byte pattern.
type Pattern struct {
	anchors []Anchor
	scores  []float64
	best    int
	length  int
}

func isWildcard(tok string) bool {
	return tok == "??" || tok == "?"
}

func parseByte(tok string) (byte, error) {
	if len(tok) == 2 && strings.Contains(tok, "?") {
		return 0, e.Arg("pattern byte", tok, e.NibbleWildcard)
	}
	if len(tok) == 0 || len(tok) > 2 {
		return 0, e.Arg("pattern byte", tok, e.BadPatternByte)
	}
	b, err := strconv.ParseUint(tok, 16, 8)
	if err != nil {
		return 0, e.Arg("pattern byte", tok, e.BadPatternByte)
	}
	return byte(b), nil
}

// Parse builds a Pattern from byte tokens.
func Parse(tokens []string) (*Pattern, error) {
	var (
		anchors []Anchor
		cur     []byte
		start   int
	)
	flush := func() {
		if len(cur) > 0 {
			anchors = append(anchors, Anchor{Offset: start, Bytes: cur})
			cur = nil
		}
	}

	for i, tok := range tokens {
		if isWildcard(tok) {
			flush()
			continue
		}
		b, err := parseByte(tok)
		if err != nil {
			return nil, err
		}
		if len(cur) == 0 {
			start = i
		}
		cur = append(cur, b)
	}
	flush()

	if len(anchors) == 0 {
		return nil, e.EmptyPattern
	}

	p := &Pattern{anchors: anchors, length: len(tokens)}
	for i, a := range anchors {
		s, err := Score(a.Bytes)
		if err != nil {
			return nil, err
		}
		p.scores = append(p.scores, s)
		if s > p.scores[p.best] {
			p.best = i
		}
	}
	return p, nil
}

// Len is the number of bytes the pattern spans, wildcards included.
func (p *Pattern) Len() int {
	return p.length
}

// Anchors returns the anchors in pattern order.
func (p *Pattern) Anchors() []Anchor {
	return p.anchors
}

// Best returns the anchor searched for literally.
func (p *Pattern) Best() Anchor {
	return p.anchors[p.best]
}

// Find returns every offset into chunk where the pattern starts.
func (p *Pattern) Find(chunk []byte) []int {
	var out []int
	m := p.Search(chunk)
	for {
		off, ok := m.Next()
		if !ok {
			return out
		}
		out = append(out, off)
	}
}

// Search returns a Matcher over the occurrences of p in chunk.
func (p *Pattern) Search(chunk []byte) *Matcher {
	return &Matcher{p: p, chunk: chunk}
}

// Matcher yields pattern occurrences in one chunk, front to back. Hits of
// the search anchor don't overlap.
type Matcher struct {
	p     *Pattern
	chunk []byte
	pos   int
}

// Next returns the offset of the next occurrence.
func (m *Matcher) Next() (int, bool) {
	best := m.p.Best()
	for m.pos <= len(m.chunk)-len(best.Bytes) {
		i := bytes.Index(m.chunk[m.pos:], best.Bytes)
		if i < 0 {
			m.pos = len(m.chunk)
			return 0, false
		}
		hit := m.pos + i
		m.pos = hit + len(best.Bytes)

		start := hit - best.Offset
		if start >= 0 && m.verify(start) {
			return start, true
		}
	}
	return 0, false
}

func (m *Matcher) verify(start int) bool {
	for i, a := range m.p.anchors {
		if i == m.p.best {
			continue
		}
		lo := start + a.Offset
		hi := lo + len(a.Bytes)
		if hi > len(m.chunk) || !bytes.Equal(m.chunk[lo:hi], a.Bytes) {
			return false
		}
	}
	return true
}
