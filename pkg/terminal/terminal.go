package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/derekparker/trie"
	"github.com/go-delve/liner"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"smug/pkg/config"
	"smug/service"
)

const historyFile string = ".smug_history"

type Term struct {
	client      service.Client
	conf        *config.Config
	prompt      string
	line        *liner.State
	cmds        *Commands
	historyFile *os.File
	stdout      io.Writer
	stderr      io.Writer
}

// New returns a terminal sending its commands to client.
func New(client service.Client, conf *config.Config) *Term {
	if conf == nil {
		conf = &config.Config{}
	}
	t := &Term{
		client: client,
		conf:   conf,
		line:   liner.NewLiner(),
		prompt: conf.PromptString(),
		cmds:   NewCommands(client, conf),
	}
	t.stdout, t.stderr = Outputs(conf)

	return t
}

// Outputs returns stdout and stderr writers. Escape codes are stripped
// unless colour is on.
func Outputs(conf *config.Config) (io.Writer, io.Writer) {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if conf.Colorize(tty) {
		return colorable.NewColorableStdout(), colorable.NewColorableStderr()
	}
	return colorable.NewNonColorable(os.Stdout), colorable.NewNonColorable(os.Stderr)
}

func (t *Term) sigintGuard(ch <-chan os.Signal) {
	for range ch {
		fmt.Fprintf(t.stdout, "received SIGINT, type exit to quit\n")
	}
}

func (t *Term) Run() error {
	defer t.Close()

	var (
		err error
	)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go t.sigintGuard(ch)

	cmds := trie.New()
	for _, cmd := range t.cmds.cmds {
		for _, alias := range cmd.aliases {
			cmds.Add(alias, nil)
		}
	}

	t.line.SetCompleter(func(line string) (c []string) {
		if strings.Contains(line, " ") {
			return nil
		}
		return cmds.PrefixSearch(line)
	})

	fullHistory, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		return err
	}
	t.historyFile, err = os.OpenFile(fullHistory, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(parentDir(fullHistory), 0755); err != nil {
				return fmt.Errorf("create parent dir failed: %v", err)
			}

			t.historyFile, err = os.OpenFile(fullHistory, os.O_CREATE|os.O_RDWR, 0600)
		}
		if err != nil {
			fmt.Fprintf(t.stderr, "Unable to open history file: %v. History will not be saved for this session.\n", err)
		}
	}

	if t.historyFile != nil {
		if _, err = t.line.ReadHistory(t.historyFile); err != nil {
			fmt.Fprintf(t.stderr, "Unable to read history file %s: %v\n", fullHistory, err)
		}
	}

	fmt.Fprintln(t.stdout, "Type 'help' for list of commands.")

	for {
		cmd, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(t.stdout, "exit")
				return t.handleExit()
			}
			return errors.New("prompt for input failed")
		}

		if strings.TrimSpace(cmd) == "" {
			continue
		}

		if err = t.cmds.Call(cmd, t); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}

			fmt.Fprintf(t.stderr, "Command failed: %s\n", err)
		}
	}
}

func (t *Term) Close() {
	t.line.Close()
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}

	return l, nil
}

func (t *Term) handleExit() error {
	if t.historyFile != nil {
		if _, err := t.historyFile.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := t.historyFile.Truncate(0); err != nil {
			return err
		}
		if _, err := t.line.WriteHistory(t.historyFile); err != nil {
			fmt.Fprintln(t.stderr, "readline history error:", err)
			return err
		}
		if err := t.historyFile.Close(); err != nil {
			fmt.Fprintf(t.stderr, "error closing history file: %s\n", err)
			return err
		}
	}

	return nil
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == os.PathSeparator {
			return path[:i]
		}
	}
	return ""
}
