package prowler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	e "smug/error"
	"smug/pkg/maps"
	"smug/pkg/num"
	"smug/pkg/pattern"
)

const (
	fileBackedColor = "\x1b[0;32m"
	pointerColor    = "\x1b[0;36m"
	resetColor      = "\x1b[0m"

	defaultMaxPrint      = 10
	defaultDisplayLength = 64
	displayLineBytes     = 16
)

type cmdFn func(p *Prowler, args []string) (string, error)

// Command is one entry of the command table. Handlers get the command
// name as args[0].
type Command struct {
	Aliases []string
	Usage   string
	Help    string
	fn      cmdFn
}

func typed(prefix string) []string {
	names := make([]string, len(num.TypeCodes))
	for i := range num.TypeCodes {
		names[i] = prefix + num.TypeCodes[i:i+1]
	}
	return names
}

var commands = []Command{
	{
		Aliases: typed("s"),
		Usage:   "<start> <end> <constraints...>",
		Help: `Scan writable memory for values.

The second letter selects the type: b w d q are unsigned 8, 16, 32 and
64 bit integers, B W D Q their signed versions, f and F 32 and 64 bit
floats. An end of 0 scans to the last region.

Constraints: =X !=X <X <=X >X >=X X..Y, or a bare X for =X.`,
		fn: scan,
	},
	{
		Aliases: typed("u"),
		Usage:   "[<index>] <constraints...>",
		Help: `Rescan the addresses of a history entry.

The index defaults to 0, the latest entry. Besides the scan constraints
these compare against the value the entry recorded, when it has the same
width: = (unchanged) != (changed) < <= > >= + (increased) - (decreased),
+X and -X (changed by exactly X).`,
		fn: rescan,
	},
	{
		Aliases: typed("d"),
		Usage:   "<address> [<length>]",
		Help: `Display memory as values.

Shows length bytes, 64 by default. Values pointing into readable memory
are highlighted.`,
		fn: display,
	},
	{
		Aliases: []string{"sp", "p", "pattern"},
		Usage:   "<start> <end> <pattern...>",
		Help: `Search readable memory for a byte pattern.

For example: sp 0 0 48 65 6C 6C 6F ?? 20 ?? ?? 72 6C 64 ??
Nibble wildcards such as F? are not supported.`,
		fn: patternScan,
	},
	{
		Aliases: []string{"ss", "ss16", "ss32"},
		Usage:   "<start> <end> <text...>",
		Help: `Search readable memory for a string.

ss16 and ss32 search for the UTF-16 and UTF-32 little endian encodings.`,
		fn: stringScan,
	},
	{
		Aliases: []string{"h", "hist", "history"},
		Usage:   "[<index>] [<count>]",
		Help: `Show the addresses of a history entry.

The index defaults to 0, the latest entry. A count of 0 shows every
address.`,
		fn: history,
	},
	{
		Aliases: []string{"diff"},
		Help:    "List the addresses of the last scan missing from the scan before it.",
		fn:      diff,
	},
	{
		Aliases: []string{"r", "reg", "region"},
		Usage:   "<address>",
		Help:    "Show the region an address is mapped in.",
		fn:      region,
	},
	{
		Aliases: []string{"m", "maps"},
		Usage:   "[all]",
		Help:    "Print the scannable memory maps, or every map with all.",
		fn:      listMaps,
	},
}

var byName = func() map[string]*Command {
	m := make(map[string]*Command)
	for i := range commands {
		for _, alias := range commands[i].Aliases {
			m[alias] = &commands[i]
		}
	}
	return m
}()

// Commands returns the command table.
func Commands() []Command {
	return commands
}

// Exec parses and runs one command line, returning its output.
func (p *Prowler) Exec(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", e.Arg("command line", "", err)
	}
	if len(args) == 0 {
		return "", nil
	}

	cmd, ok := byName[args[0]]
	if !ok {
		return "", e.Arg("command", args[0], e.UnknownCommand)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Debugf("exec %q", line)
	return cmd.fn(p, args)
}

func arg(args []string, i int, name string) (string, error) {
	if i >= len(args) {
		return "", e.Arg(name, "", e.MissingArgument)
	}
	return args[i], nil
}

func numArg(args []string, i int, name string) (uint64, error) {
	s, err := arg(args, i, name)
	if err != nil {
		return 0, err
	}
	n, err := num.ParseUint(s)
	if err != nil {
		return 0, e.Arg(name, s, err)
	}
	return n, nil
}

// optArg parses args[i] if present, else returns def.
func optArg(args []string, i int, name string, def uint64) (uint64, error) {
	if i >= len(args) {
		return def, nil
	}
	return numArg(args, i, name)
}

func typeOf(cmd string) (num.Value, error) {
	if len(cmd) != 2 {
		return num.Value{}, e.Arg("type", cmd, e.UnknownType)
	}
	return num.FromTypeCode(cmd[1])
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func bounds(args []string) (uint64, uint64, error) {
	start, err := numArg(args, 1, "start address")
	if err != nil {
		return 0, 0, err
	}
	end, err := numArg(args, 2, "end address")
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func scan(p *Prowler, args []string) (string, error) {
	proto, err := typeOf(args[0])
	if err != nil {
		return "", err
	}
	start, end, err := bounds(args)
	if err != nil {
		return "", err
	}
	cs, err := num.ParseConstraints(args[3:], proto)
	if err != nil {
		return "", err
	}

	res, err := p.Scan(args[0], proto, start, end, cs)
	if err != nil {
		return "", err
	}
	return p.summary(res.Addrs), nil
}

func rescan(p *Prowler, args []string) (string, error) {
	proto, err := typeOf(args[0])
	if err != nil {
		return "", err
	}

	rest := args[1:]
	idx := 0
	if len(rest) > 0 && isIndex(rest[0]) {
		idx, err = strconv.Atoi(rest[0])
		if err != nil {
			return "", e.Arg("history index", rest[0], e.InvalidNumber)
		}
		rest = rest[1:]
	}
	cs, err := num.ParseConstraints(rest, proto)
	if err != nil {
		return "", err
	}

	res, err := p.Rescan(args[0], proto, idx, cs)
	if err != nil {
		return "", err
	}
	return p.summary(res.Addrs), nil
}

func patternScan(p *Prowler, args []string) (string, error) {
	start, end, err := bounds(args)
	if err != nil {
		return "", err
	}
	pat, err := pattern.Parse(args[3:])
	if err != nil {
		return "", err
	}

	res, err := p.PatternScan(args[0], start, end, pat)
	if err != nil {
		return "", err
	}
	return p.summary(res.Addrs), nil
}

func stringScan(p *Prowler, args []string) (string, error) {
	start, end, err := bounds(args)
	if err != nil {
		return "", err
	}

	enc := UTF8
	switch {
	case strings.HasSuffix(args[0], "16"):
		enc = UTF16
	case strings.HasSuffix(args[0], "32"):
		enc = UTF32
	}
	needle, err := Needle(strings.Join(args[3:], " "), enc)
	if err != nil {
		return "", err
	}

	res, err := p.StringScan(args[0], start, end, needle)
	if err != nil {
		return "", err
	}
	return p.summary(res.Addrs), nil
}

func display(p *Prowler, args []string) (string, error) {
	proto, err := typeOf(args[0])
	if err != nil {
		return "", err
	}
	addr, err := numArg(args, 1, "address")
	if err != nil {
		return "", err
	}
	length, err := optArg(args, 2, "length", defaultDisplayLength)
	if err != nil {
		return "", err
	}
	if length == 0 || length > 1<<20 {
		return "", e.Arg("length", args[2], e.OutOfRange)
	}

	cells, err := p.Display(proto, addr, int(length))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	perLine := max(displayLineBytes/proto.ByteWidth(), 1)
	for i, c := range cells {
		if i%perLine == 0 {
			if i > 0 {
				buf.WriteByte('\n')
			}
			fmt.Fprintf(&buf, "0x%016X:", c.Addr)
		}
		buf.WriteByte(' ')
		switch {
		case c.Partial:
			buf.WriteString(c.Value.Placeholder())
		case c.Pointer:
			buf.WriteString(pointerColor + c.Value.Display() + resetColor)
		default:
			buf.WriteString(c.Value.Display())
		}
	}
	return buf.String(), nil
}

func history(p *Prowler, args []string) (string, error) {
	idx, err := optArg(args, 1, "history index", 0)
	if err != nil {
		return "", err
	}
	count, err := optArg(args, 2, "count", 0)
	if err != nil {
		return "", err
	}

	if idx > uint64(p.history.Len()) {
		return "No results.", nil
	}
	en, ok := p.history.Get(int(idx))
	if !ok || en.Len() == 0 {
		return "No results.", nil
	}
	n := en.Len()
	if count > 0 && count < uint64(n) {
		n = int(count)
	}
	return p.addrList(en.Addrs[:n]), nil
}

func diff(p *Prowler, args []string) (string, error) {
	addrs, err := p.history.Diff()
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "No results.", nil
	}
	return p.addrList(addrs), nil
}

func region(p *Prowler, args []string) (string, error) {
	addr, err := numArg(args, 1, "address")
	if err != nil {
		return "", err
	}
	r, ok, err := p.Region(addr)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("0x%X is not mapped.", addr), nil
	}
	return r.String(), nil
}

func listMaps(p *Prowler, args []string) (string, error) {
	all := len(args) > 1 && args[1] == "all"
	c, err := p.Maps(all)
	if err != nil {
		return "", err
	}
	lines := make([]string, len(c))
	for i, r := range c {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n"), nil
}

func (p *Prowler) maxPrintCount() int {
	if p.maxPrint <= 0 {
		return defaultMaxPrint
	}
	return p.maxPrint
}

// summary reports the result of a scan, listing the addresses when there
// are few of them.
func (p *Prowler) summary(addrs []uint64) string {
	switch n := len(addrs); {
	case n == 0:
		return "No results."
	case n > p.maxPrintCount():
		return fmt.Sprintf("Found %d results.", n)
	case n == 1:
		return "Found 1 match at:\n" + p.addrList(addrs)
	default:
		return fmt.Sprintf("Found %d results at:\n", n) + p.addrList(addrs)
	}
}

// addrList prints one address per line, highlighting addresses in file
// backed regions since those are likely static.
func (p *Prowler) addrList(addrs []uint64) string {
	return formatAddrs(addrs, p.fileBacked())
}

func formatAddrs(addrs []uint64, fileBacked maps.Catalog) string {
	lines := make([]string, len(addrs))
	for i, addr := range addrs {
		if _, ok := fileBacked.Find(addr); ok {
			lines[i] = fmt.Sprintf("%s0x%X%s", fileBackedColor, addr, resetColor)
		} else {
			lines[i] = fmt.Sprintf("0x%X", addr)
		}
	}
	return strings.Join(lines, "\n")
}
