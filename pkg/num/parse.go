package num

import (
	"math"
	"strconv"
	"strings"

	e "smug/error"
)

// ParseUint parses an unsigned integer literal. Literals take the usual Go
// base prefixes (0x, 0o, 0b), '_' separators, and may be joined by +, -, * and / without
// spaces; the expression is evaluated left to right with wrapping
// arithmetic, e.g. "0x1000+0x20*2".
func ParseUint(s string) (uint64, error) {
	if s == "" {
		return 0, e.InvalidNumber
	}

	var (
		acc uint64
		op  byte = '+'
	)
	for {
		i := strings.IndexAny(s, "+-*/")
		if i == 0 {
			return 0, e.InvalidNumber
		}
		term := s
		if i > 0 {
			term = s[:i]
		}

		n, err := parseTerm(term)
		if err != nil {
			return 0, e.InvalidNumber
		}

		switch op {
		case '+':
			acc += n
		case '-':
			acc -= n
		case '*':
			acc *= n
		case '/':
			if n == 0 {
				return 0, e.InvalidNumber
			}
			acc /= n
		}

		if i < 0 {
			return acc, nil
		}
		op = s[i]
		s = s[i+1:]
		if s == "" {
			return 0, e.InvalidNumber
		}
	}
}

// parseTerm parses one literal. A leading zero doesn't mean octal.
func parseTerm(s string) (uint64, error) {
	s = strings.ReplaceAll(s, "_", "")
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			return strconv.ParseUint(s, 0, 64)
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// ParseInt parses a signed integer literal: an optional leading '-'
// followed by what ParseUint accepts.
func ParseInt(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	u, err := ParseUint(s)
	if err != nil {
		return 0, err
	}
	if neg {
		if u > 1<<63 {
			return 0, e.OutOfRange
		}
		return -int64(u), nil
	}
	if u > math.MaxInt64 {
		return 0, e.OutOfRange
	}
	return int64(u), nil
}

// Parse reads s as a value of kind k. Integers must fit the kind's width.
func Parse(k Kind, s string) (Value, error) {
	switch {
	case k.IsFloat():
		bits := 64
		if k == F32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return Value{}, e.InvalidNumber
		}
		return FromFloat64(k, f), nil

	case k.IsSigned():
		i, err := ParseInt(s)
		if err != nil {
			return Value{}, err
		}
		width := 8 * uint(kindInfo[k].width)
		if width < 64 {
			lo, hi := -int64(1)<<(width-1), int64(1)<<(width-1)-1
			if i < lo || i > hi {
				return Value{}, e.OutOfRange
			}
		}
		return FromInt64(k, i), nil

	default:
		u, err := ParseUint(s)
		if err != nil {
			return Value{}, err
		}
		if u > mask(kindInfo[k].width) {
			return Value{}, e.OutOfRange
		}
		return FromUint64(k, u), nil
	}
}
