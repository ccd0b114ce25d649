package cmd

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"smug/pkg/logflags"
	"smug/utils"
)

var logFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "logFlag, f",
		Usage: "enable debug logging",
	},
	cli.StringFlag{
		Name:  "logStr, s",
		Usage: "comma separated layers to log: prowler, http, grpc",
	},
	cli.StringFlag{
		Name:  "logDesc, d",
		Usage: "specify the log file path",
		Value: logflags.DefaultLogDesc,
	},
}

var srvFlag = cli.StringFlag{
	Name:  "srv",
	Usage: "transport between terminal and scanner: http or grpc",
	Value: "http",
}

func withFlags(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, logFlags...), flags...)
}

func pidArgsCheck(args cli.Args) error {
	pid := args.First()
	if !utils.CheckPid(pid) {
		return fmt.Errorf("pid %s does not exist", pid)
	}

	return nil
}

func pidArg(context *cli.Context) (int, error) {
	return strconv.Atoi(context.Args().First())
}
