package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lsm303dlx/cmd/lsm303/console"
)

var powerCmd = cli.Command{
	Name:  "power",
	Usage: "drive the device through a power state transition",
	Subcommands: cli.Commands{
		&powerSuspendCmd,
		&powerResumeCmd,
	},
}

var powerSuspendCmd = cli.Command{
	Name:  "suspend",
	Usage: "program the suspend profile (best-effort write sequence)",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "skip the confirmation prompt",
		},
	}, deviceFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("suspend the accelerometer?")
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if answer != console.Yes {
				return nil
			}
		}
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		if err = dev.Suspend(ctx); err != nil {
			return console.Exit(1, "error entering suspend: %s", console.Red(err))
		}
		console.PInfof(console.PictoZzz, "device suspended")
		return nil
	},
}

var powerResumeCmd = cli.Command{
	Name:  "resume",
	Usage: "program the resume profile (fail-fast write sequence)",
	Flags: deviceFlags,
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		if err = dev.Resume(ctx); err != nil {
			return console.Exit(1, "error entering resume: %s", console.Red(err))
		}
		console.PInfof(console.PictoFinish, "device resumed")
		return nil
	},
}
