package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lsm303dlx/adapter"
	"github.com/mklimuk/lsm303dlx/cmd/lsm303/console"
)

// The INT1 line of the accelerometer can be wired to one of the MCP2221 GPIO
// pins; this command samples the pin states so motion interrupts can be
// checked without a logic analyzer.
var irqCmd = cli.Command{
	Name:  "irq",
	Usage: "read the adapter GPIO pins carrying the interrupt line (mcp2221 only)",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	},
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		bridge := adapter.NewMCP2221()
		values, err := bridge.ReadGPIO(ctx)
		if err != nil {
			return console.Exit(1, "error reading adapter GPIO: %s", console.Red(err))
		}
		console.Printf("GP0 [%s] %d\n", values.GPIO0Mode, values.GPIO0Value)
		console.Printf("GP1 [%s] %d\n", values.GPIO1Mode, values.GPIO1Value)
		console.Printf("GP2 [%s] %d\n", values.GPIO2Mode, values.GPIO2Value)
		console.Printf("GP3 [%s] %d\n", values.GPIO3Mode, values.GPIO3Value)
		return nil
	},
}
