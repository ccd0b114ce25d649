package cmd

import (
	"github.com/urfave/cli"

	"smug/utils"
)

var run = cli.Command{
	Name:      "run",
	Usage:     "run one command against a process, as typed in the terminal",
	ArgsUsage: "<pid> <command> [<args>...]",
	Flags:     withFlags(),
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 2, utils.MinArgs, pidArgsCheck); err != nil {
			return err
		}

		pid, err := pidArg(context)
		if err != nil {
			return err
		}
		return exec(Run, pid, context)
	},
}
