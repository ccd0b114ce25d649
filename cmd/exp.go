package cmd

import "github.com/urfave/cli"

const (
	usage = `smug scans the memory of a running process for values, byte patterns
             and strings, and narrows the results down across rescans`
)

func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "smug"
	app.Usage = usage
	app.Commands = []cli.Command{
		attach,
		serve,
		conn,
		maps,
		run,
	}

	return app
}
