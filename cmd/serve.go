package cmd

import (
	"github.com/urfave/cli"

	"smug/utils"
)

var serve = cli.Command{
	Name:      "serve",
	Usage:     "scan a process for terminals connecting with conn",
	ArgsUsage: "<pid>",
	Flags: withFlags(srvFlag, cli.StringFlag{
		Name:  "listen, l",
		Usage: "address to listen on",
		Value: "127.0.0.1:7717",
	}),
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 1, utils.ExactArgs, pidArgsCheck); err != nil {
			return err
		}

		pid, err := pidArg(context)
		if err != nil {
			return err
		}
		return exec(Serve, pid, context)
	},
}
