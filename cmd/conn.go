package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"smug/utils"
)

var conn = cli.Command{
	Name:      "conn",
	Usage:     "connect a terminal to a smug server",
	ArgsUsage: "<addr>",
	Flags:     withFlags(srvFlag),
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 1, utils.ExactArgs, connArgsCheck); err != nil {
			return err
		}

		return exec(Conn, 0, context)
	},
}

func connArgsCheck(args cli.Args) error {
	addr := args.First()
	if utils.Telnet(addr, 5*time.Second) {
		return nil
	}

	return fmt.Errorf("invalid connection address: %s", addr)
}
