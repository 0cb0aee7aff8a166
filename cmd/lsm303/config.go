package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/lsm303dlx/accel"
	"github.com/mklimuk/lsm303dlx/cmd/lsm303/console"
)

var configCmd = cli.Command{
	Name:  "config",
	Usage: "inspect and change the suspend/resume configuration pair",
	Subcommands: cli.Commands{
		&configSetCmd,
		&configGetCmd,
		&configLoadCmd,
	},
}

var configSetCmd = cli.Command{
	Name:  "set",
	Usage: "set one configuration value",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "key",
			Aliases:  []string{"k"},
			Usage:    "configuration key (odr-suspend, odr-resume, fsr-suspend, fsr-resume, mot-ths, nmot-ths, mot-dur, nmot-dur, irq-suspend, irq-resume)",
			Required: true,
		},
		&cli.Int64Flag{
			Name:     "value",
			Usage:    "requested value in physical units (mHz, mg or ms)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "apply",
			Usage: "push the result to the device immediately instead of staging it",
		},
	}, deviceFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		key, err := accel.ParseConfigKey(c.String("key"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		if err = dev.SetConfig(ctx, key, c.Bool("apply"), c.Int64("value")); err != nil {
			return console.Exit(1, "error setting %s: %s", key, console.Red(err))
		}
		value, err := dev.GetConfig(key)
		if err != nil {
			return console.Exit(1, "error reading back %s: %s", key, console.Red(err))
		}
		console.PInfof(console.PictoPin, "%s = %s", key, console.White(value))
		return nil
	},
}

var configGetCmd = cli.Command{
	Name:  "get",
	Usage: "print one configuration value",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "key",
			Aliases:  []string{"k"},
			Required: true,
		},
	}, deviceFlags...),
	Action: func(c *cli.Context) error {
		key, err := accel.ParseConfigKey(c.String("key"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		value, err := dev.GetConfig(key)
		if err != nil {
			return console.Exit(1, "error reading %s: %s", key, console.Red(err))
		}
		console.PInfof(console.PictoPin, "%s = %s", key, console.White(value))
		return nil
	},
}

var configLoadCmd = cli.Command{
	Name:  "load",
	Usage: "stage or apply a whole dual-state profile from a YAML file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "profile file path",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "apply",
			Usage: "push every value to the device as it is staged",
		},
	}, deviceFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		profile, err := accel.LoadProfile(c.String("file"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		dev, err := openDevice(c)
		if err != nil {
			return err
		}
		if err = profile.Apply(ctx, dev, c.Bool("apply")); err != nil {
			return console.Exit(1, "error applying profile: %s", console.Red(err))
		}
		console.PInfof(console.PictoFinish, "profile %s loaded", c.String("file"))
		return nil
	},
}
