package terminal

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"smug/pkg/config"
	"smug/pkg/prowler"
	"smug/service"
)

type cmdFn func(term *Term, name, args string) error

type command struct {
	aliases []string
	usage   string
	fn      cmdFn
	help    string
}

func (c command) match(cmdstr string) bool {
	return slices.Contains(c.aliases, cmdstr)
}

type Commands struct {
	cmds   []command
	client service.Client
	// rename maps configured aliases to the name the server knows.
	rename map[string]string
}

// NewCommands returns the local commands followed by the commands the
// server runs, with the aliases of conf added.
func NewCommands(client service.Client, conf *config.Config) *Commands {
	c := &Commands{
		client: client,
		rename: make(map[string]string),
	}

	c.cmds = []command{
		{
			aliases: []string{"help"},
			usage:   "[<command>]",
			fn:      c.help,
			help: `Prints the help message.

Type "help" followed by the name of a command for more information about it.`},
		{
			aliases: []string{"exit", "quit", "q"},
			fn:      exit,
			help:    "Exit smug. The target keeps running.",
		},
	}
	for _, pc := range prowler.Commands() {
		c.cmds = append(c.cmds, command{
			aliases: slices.Clone(pc.Aliases),
			usage:   pc.Usage,
			fn:      forward,
			help:    pc.Help,
		})
	}

	if conf != nil {
		c.merge(conf.Aliases)
	}
	return c
}

// merge adds configured aliases. Keys name an existing command.
func (c *Commands) merge(allAliases map[string][]string) {
	names := make([]string, 0, len(allAliases))
	for name := range allAliases {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for i := range c.cmds {
			if !c.cmds[i].match(name) {
				continue
			}
			for _, alias := range allAliases[name] {
				if c.Find(alias).fn != nil {
					continue
				}
				c.cmds[i].aliases = append(c.cmds[i].aliases, alias)
				c.rename[alias] = name
			}
			break
		}
	}
}

// Find will look up the command for the given command name. It returns
// a command with a nil fn if there is none.
func (c *Commands) Find(cmdstr string) command {
	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v
		}
	}

	return command{}
}

func (c *Commands) Call(cmdStr string, t *Term) error {
	name, argStr, _ := strings.Cut(strings.TrimSpace(cmdStr), " ")

	cmd := c.Find(name)
	if cmd.fn == nil {
		return fmt.Errorf("%w: %s", errNoCmd, name)
	}
	if orig, ok := c.rename[name]; ok {
		name = orig
	}
	return cmd.fn(t, name, argStr)
}

func (c *Commands) help(t *Term, _, args string) error {
	if args = strings.TrimSpace(args); args != "" {
		cmd := c.Find(args)
		if cmd.fn == nil {
			return fmt.Errorf("%w: %s", errNoCmd, args)
		}
		fmt.Fprintf(t.stdout, "%s %s\n\n%s\n", args, cmd.usage, cmd.help)
		return nil
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.help
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(t.stdout)
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

// forward runs the command on the server and prints its output.
func forward(t *Term, name, args string) error {
	line := name
	if args != "" {
		line += " " + args
	}
	out, err := t.client.SendExpr(line)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}

	_, err = fmt.Fprintln(t.stdout, out)
	return err
}

type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

func exit(t *Term, _, args string) error {
	return ExitRequestError{}
}

var errNoCmd = errors.New("command not available")
