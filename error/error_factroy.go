package error

import (
	"errors"
	"fmt"
)

var (
	UnknownCommand  = errors.New("unknown command")
	UnknownType     = errors.New("missing or invalid type specifier")
	MissingArgument = errors.New("missing")
	InvalidNumber   = errors.New("not a valid number")
	OutOfRange      = errors.New("out of range")
	BadConstraint   = errors.New("invalid constraint")
	NoConstraints   = errors.New("constraints missing")
	NeedsPrevious   = errors.New("constraint compares against a previous value, which this scan doesn't have")
	EmptyPattern    = errors.New("won't search for an all-wildcard pattern")
	BadPatternByte  = errors.New("invalid pattern byte")
	NibbleWildcard  = errors.New("nibble wildcards are not supported")
	AnchorOverflow  = errors.New("pattern anchor too large")
	NoText          = errors.New("string missing")
	Unreadable      = errors.New("memory not readable")
	NotEnoughScans  = errors.New("need at least two scans to diff")
	Unsupported     = errors.New("remote memory reads are not supported on this platform")
	NotServer       = errors.New("not a smug server")
)

// ArgError reports a malformed command argument.
type ArgError struct {
	Name  string
	Value string
	Err   error
}

func (a *ArgError) Error() string {
	if a.Value == "" {
		return fmt.Sprintf("%s %v", a.Name, a.Err)
	}
	return fmt.Sprintf("%s %q: %v", a.Name, a.Value, a.Err)
}

func (a *ArgError) Unwrap() error {
	return a.Err
}

// Arg returns an *ArgError for the argument name with the given value.
func Arg(name, value string, err error) error {
	return &ArgError{Name: name, Value: value, Err: err}
}

var usage = []error{
	NoConstraints, NeedsPrevious, EmptyPattern, BadPatternByte,
	NibbleWildcard, AnchorOverflow, NoText, NotEnoughScans,
}

// IsUsage reports whether err was caused by the command line rather than
// by the target process.
func IsUsage(err error) bool {
	var a *ArgError
	if errors.As(err, &a) {
		return true
	}
	for _, u := range usage {
		if errors.Is(err, u) {
			return true
		}
	}
	return false
}
