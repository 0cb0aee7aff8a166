package main

import (
	"time"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/raspi"

	"github.com/mklimuk/lsm303dlx"
	"github.com/mklimuk/lsm303dlx/accel"
	"github.com/mklimuk/lsm303dlx/adapter"
	"github.com/mklimuk/lsm303dlx/cmd/lsm303/console"
	"github.com/mklimuk/lsm303dlx/i2c"
)

var deviceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "bus transport (mcp2221, i2c, raspi)",
		Value:   "mcp2221",
	},
	&cli.StringFlag{
		Name:  "bus",
		Usage: "host i2c bus name or number",
		Value: "1",
	},
	&cli.IntFlag{
		Name:  "address",
		Usage: "device address on the bus",
		Value: 0x18,
	},
	&cli.Int64Flag{
		Name:  "range",
		Usage: "nominal full scale range in mg",
		Value: 2048,
	},
	&cli.DurationFlag{
		Name:  "settle",
		Usage: "post power-mode-change settle delay",
		Value: 6 * time.Millisecond,
	},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
}

func openBus(c *cli.Context) (lsm303dlx.RegisterBus, error) {
	switch c.String("adapter") {
	case "i2c":
		bus, err := i2c.NewGenericBus(c.String("bus"))
		if err != nil {
			return nil, err
		}
		return bus, nil
	case "raspi":
		adaptor := raspi.NewAdaptor()
		if err := adaptor.Connect(); err != nil {
			return nil, err
		}
		return i2c.NewGobotBus(adaptor, adaptor.DefaultI2cBus()), nil
	default:
		return adapter.NewMCP2221(), nil
	}
}

func openDevice(c *cli.Context) (*accel.LSM303DLx, error) {
	bus, err := openBus(c)
	if err != nil {
		return nil, console.Exit(1, "adapter initialization error: %s", console.Red(err))
	}
	dev, err := accel.New(bus,
		accel.WithAddress(byte(c.Int("address"))),
		accel.WithNominalRange(c.Int64("range")),
		accel.WithSettleDelay(c.Duration("settle")),
	)
	if err != nil {
		return nil, console.Exit(1, "device attach error: %s", console.Red(err))
	}
	return dev, nil
}
