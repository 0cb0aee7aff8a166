package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/lsm303dlx/adapter"
	"github.com/mklimuk/lsm303dlx/cmd/lsm303/console"
)

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "query the mcp2221 bridge state",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		&cli.BoolFlag{Name: "release", Usage: "cancel any pending transfer before reading the status"},
	},
	Action: func(c *cli.Context) error {
		bridge := adapter.NewMCP2221()
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		var status *adapter.Status
		var err error
		if c.Bool("release") {
			status, err = bridge.ReleaseBus(ctx)
		} else {
			status, err = bridge.Status(ctx)
		}
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		enc := yaml.NewEncoder(os.Stdout)
		err = enc.Encode(status)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}
