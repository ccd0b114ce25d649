package cmd

import (
	"github.com/urfave/cli"

	"smug/utils"
)

var attach = cli.Command{
	Name:      "attach",
	Usage:     "attach to a process and open a terminal",
	ArgsUsage: "<pid>",
	Flags:     withFlags(srvFlag),
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 1, utils.ExactArgs, pidArgsCheck); err != nil {
			return err
		}

		pid, err := pidArg(context)
		if err != nil {
			return err
		}
		return exec(Attach, pid, context)
	},
}
