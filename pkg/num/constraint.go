package num

import (
	"strings"

	e "smug/error"
)

// Op is the comparison a Constraint performs.
type Op uint8

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
	InRange
	EqPrev
	NePrev
	LtPrev
	LePrev
	GtPrev
	GePrev
	IncBy
	DecBy
)

// Constraint is a predicate over a value of one kind and, for the *Prev,
// IncBy and DecBy ops, the value previously read at the same address.
type Constraint struct {
	Op     Op
	Lo, Hi Value
}

// NeedsPrevious reports whether Check reads prev.
func (c Constraint) NeedsPrevious() bool {
	return c.Op >= EqPrev
}

// Check evaluates the constraint. prev is ignored unless NeedsPrevious.
func (c Constraint) Check(cur, prev Value) bool {
	switch c.Op {
	case Eq:
		return cur.Equal(c.Lo)
	case Ne:
		return !cur.Equal(c.Lo)
	case Lt:
		return cur.Less(c.Lo)
	case Le:
		return cur.Less(c.Lo) || cur.Equal(c.Lo)
	case Gt:
		return c.Lo.Less(cur)
	case Ge:
		return c.Lo.Less(cur) || cur.Equal(c.Lo)
	case InRange:
		return !cur.Less(c.Lo) && !c.Hi.Less(cur)
	case EqPrev:
		return cur.Equal(prev)
	case NePrev:
		return !cur.Equal(prev)
	case LtPrev:
		return cur.Less(prev)
	case LePrev:
		return cur.Less(prev) || cur.Equal(prev)
	case GtPrev:
		return prev.Less(cur)
	case GePrev:
		return prev.Less(cur) || cur.Equal(prev)
	case IncBy:
		return cur.Equal(prev.Add(c.Lo))
	case DecBy:
		return cur.Equal(prev.Sub(c.Lo))
	}
	return false
}

var keywords = map[string]Op{
	"=":         EqPrev,
	"unchanged": EqPrev,
	"!=":        NePrev,
	"!":         NePrev,
	"changed":   NePrev,
	"<":         LtPrev,
	"<=":        LePrev,
	">":         GtPrev,
	">=":        GePrev,
	"+":         GtPrev,
	"increased": GtPrev,
	"-":         LtPrev,
	"decreased": LtPrev,
}

// prefixes are tried in order, so two character operators come first.
var prefixes = []struct {
	s  string
	op Op
}{
	{"!=", Ne},
	{"<=", Le},
	{">=", Ge},
	{"=", Eq},
	{"!", Ne},
	{"<", Lt},
	{">", Gt},
	{"+", IncBy},
	{"-", DecBy},
}

// ParseConstraint parses one constraint token for values of proto's kind.
// A bare literal means equality.
func ParseConstraint(tok string, proto Value) (Constraint, error) {
	bad := func() (Constraint, error) {
		return Constraint{}, e.Arg("constraint", tok, e.BadConstraint)
	}
	k := proto.Kind()

	if op, ok := keywords[tok]; ok {
		return Constraint{Op: op}, nil
	}

	if lo, hi, ok := strings.Cut(tok, ".."); ok {
		l, err := Parse(k, lo)
		if err != nil {
			return bad()
		}
		h, err := Parse(k, hi)
		if err != nil || h.Less(l) {
			return bad()
		}
		return Constraint{Op: InRange, Lo: l, Hi: h}, nil
	}

	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(tok, p.s); ok {
			v, err := Parse(k, rest)
			if err != nil {
				return bad()
			}
			return Constraint{Op: p.op, Lo: v}, nil
		}
	}

	v, err := Parse(k, tok)
	if err != nil {
		return bad()
	}
	return Constraint{Op: Eq, Lo: v}, nil
}

// ParseConstraints parses every token, failing on the first bad one.
func ParseConstraints(toks []string, proto Value) ([]Constraint, error) {
	if len(toks) == 0 {
		return nil, e.NoConstraints
	}
	cs := make([]Constraint, 0, len(toks))
	for _, tok := range toks {
		c, err := ParseConstraint(tok, proto)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// NeedPrevious reports whether any constraint reads the previous value.
func NeedPrevious(cs []Constraint) bool {
	for _, c := range cs {
		if c.NeedsPrevious() {
			return true
		}
	}
	return false
}

// All reports whether every constraint holds.
func All(cs []Constraint, cur, prev Value) bool {
	for _, c := range cs {
		if !c.Check(cur, prev) {
			return false
		}
	}
	return true
}
