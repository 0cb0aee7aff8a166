package main

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lsm303dlx/accel"
	"github.com/mklimuk/lsm303dlx/cmd/lsm303/console"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read a single acceleration sample",
	Flags: deviceFlags,
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		data, err := dev.ReadSample(ctx)
		if errors.Is(err, accel.ErrDataNotReady) {
			console.Warn("no fresh sample available; is the device resumed?")
			return nil
		}
		if err != nil {
			return console.Exit(1, "error reading sample: %s", console.Red(err))
		}
		x, y, z := accel.DecodeSample(data)
		console.PInfof(console.PictoRuler, "x=%s y=%s z=%s (raw % X)",
			console.White(x), console.White(y), console.White(z), data)
		return nil
	},
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "poll acceleration samples until interrupted",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "polling interval",
			Value: 100 * time.Millisecond,
		},
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of samples to read (0 = forever)",
		},
	}, deviceFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		ticker := time.NewTicker(c.Duration("interval"))
		defer ticker.Stop()
		seen := 0
		for range ticker.C {
			data, err := dev.ReadSample(ctx)
			if errors.Is(err, accel.ErrDataNotReady) {
				continue
			}
			if err != nil {
				return console.Exit(1, "error reading sample: %s", console.Red(err))
			}
			x, y, z := accel.DecodeSample(data)
			console.Printf("x=%6d y=%6d z=%6d\n", x, y, z)
			seen++
			if count := c.Int("count"); count > 0 && seen >= count {
				break
			}
		}
		return nil
	},
}
