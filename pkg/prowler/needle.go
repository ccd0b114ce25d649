package prowler

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	e "smug/error"
)

// Encoding selects how a search string is laid out in memory.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16
	UTF32
)

func (enc Encoding) encoder() *encoding.Encoder {
	switch enc {
	case UTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	case UTF32:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewEncoder()
	}
	return nil
}

// Needle encodes text as it would be stored by the target.
func Needle(text string, enc Encoding) ([]byte, error) {
	if text == "" {
		return nil, e.NoText
	}
	encoder := enc.encoder()
	if encoder == nil {
		return []byte(text), nil
	}
	return encoder.Bytes([]byte(text))
}

// findAll returns the offsets of the non-overlapping occurrences of needle
// in mem.
func findAll(mem, needle []byte, visit func(off int)) {
	off := 0
	for {
		i := bytes.Index(mem[off:], needle)
		if i < 0 {
			return
		}
		visit(off + i)
		off += i + len(needle)
	}
}
