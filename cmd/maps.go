package cmd

import (
	"github.com/urfave/cli"

	"smug/utils"
)

var maps = cli.Command{
	Name:      "maps",
	Usage:     "print the memory regions of a process smug scans",
	ArgsUsage: "<pid>",
	Flags: withFlags(cli.BoolFlag{
		Name:  "all, a",
		Usage: "print every region, scannable or not",
	}),
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 1, utils.ExactArgs, pidArgsCheck); err != nil {
			return err
		}

		pid, err := pidArg(context)
		if err != nil {
			return err
		}
		return exec(Maps, pid, context)
	},
}
