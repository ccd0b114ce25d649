package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"smug/pkg/config"
	"smug/pkg/logflags"
	"smug/pkg/proc"
	"smug/pkg/prowler"
	"smug/pkg/terminal"
	"smug/service"
	"smug/service/grpc"
	"smug/service/http"
	"smug/utils"
)

type ExecType int

const (
	Run ExecType = iota
	Maps
	Attach
	Serve
	Conn
)

const (
	defaultAddr = "127.0.0.1:0"
)

type executor struct {
	et   ExecType
	pid  int
	ctx  *cli.Context
	conf *config.Config
}

func newExecutor(et ExecType, pid int, ctx *cli.Context) *executor {
	return &executor{
		et:   et,
		pid:  pid,
		ctx:  ctx,
		conf: config.LoadConfig(),
	}
}

func (e *executor) run() error {
	switch e.et {
	case Run:
		return e.runOnce()
	case Maps:
		return e.maps()
	case Attach:
		return e.attach()
	case Serve:
		return e.serve()
	case Conn:
		args := e.ctx.Args()
		return e.connect(args.First())
	}

	return nil
}

func exec(et ExecType, pid int, ctx *cli.Context) error {
	if err := logflags.Setup(ctx.Bool("logFlag"), ctx.String("logStr"), ctx.String("logDesc")); err != nil {
		return err
	}
	defer logflags.Close()

	ex := newExecutor(et, pid, ctx)
	return ex.run()
}

func (e *executor) newProwler() (*prowler.Prowler, error) {
	limits := proc.SystemLimits().WithChunkSize(e.conf.ChunkSizeOr(proc.DefaultChunkSize))
	return prowler.NewProwler(e.pid, prowler.Options{
		Limits:   limits,
		Workers:  e.conf.WorkerCount(),
		MaxPrint: e.conf.MaxPrintCount(),
	})
}

// print runs one command line and prints its output.
func (e *executor) print(line string) error {
	p, err := e.newProwler()
	if err != nil {
		return err
	}
	out, err := p.Exec(line)
	if err != nil {
		return err
	}

	stdout, _ := terminal.Outputs(e.conf)
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func (e *executor) runOnce() error {
	return e.print(joinArgs(e.ctx.Args().Tail()))
}

func (e *executor) maps() error {
	if e.ctx.Bool("all") {
		return e.print("m all")
	}
	return e.print("m")
}

func (e *executor) startServer(addr string) (service.Server, net.Listener, error) {
	p, err := e.newProwler()
	if err != nil {
		return nil, nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen: %w", err)
	}

	var server service.Server
	switch e.ctx.String("srv") {
	case "grpc":
		server = grpc.NewServer(listener, p)
	case "http":
		fallthrough
	default:
		server = http.NewServer(listener, p)
	}

	if err := server.Run(); err != nil {
		listener.Close()
		return nil, nil, err
	}
	return server, listener, nil
}

func (e *executor) attach() error {
	server, listener, err := e.startServer(defaultAddr)
	if err != nil {
		return err
	}
	defer server.Stop()

	fmt.Printf("Attached to %d (%s).\n", e.pid, utils.Executable(e.pid))
	return e.connect(listener.Addr().String())
}

func (e *executor) serve() error {
	server, listener, err := e.startServer(e.ctx.String("listen"))
	if err != nil {
		return err
	}

	fmt.Printf("Scanning %d (%s), listening at %s.\n", e.pid, utils.Executable(e.pid), listener.Addr())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	return server.Stop()
}

func (e *executor) connect(addr string) (err error) {
	var client service.Client
	switch e.ctx.String("srv") {
	case "grpc":
		var c *grpc.Client
		c, err = grpc.NewClient(addr)
		if err != nil {
			return
		}
		defer c.Close()
		client = c
	case "http":
		fallthrough
	default:
		client, err = http.NewClient(addr)
		if err != nil {
			return
		}
	}

	term := terminal.New(client, e.conf)
	return term.Run()
}

var argQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// joinArgs turns arguments split by the shell back into one command line.
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'\"\\#") {
			quoted[i] = a
			continue
		}
		quoted[i] = `"` + argQuoter.Replace(a) + `"`
	}
	return strings.Join(quoted, " ")
}
