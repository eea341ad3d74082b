package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/apds9960"
	"github.com/mklimuk/apds9960/cmd/apds9960/console"
)

var proximityCmd = cli.Command{
	Name:    "proximity",
	Aliases: []string{"prox"},
	Subcommands: []*cli.Command{
		&proximityReadCmd,
	},
}

var proximityReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read the proximity channel (0 far, 255 close)",
	Flags:   busFlags,
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		helper, err := apds9960.New(connectFromFlags(c), apds9960.ModeProximity)
		if err != nil {
			return console.Exit(1, "helper setup error: %s", console.Red(err))
		}
		err = helper.Init(ctx)
		if err != nil {
			return console.Exit(1, "sensor initialization error: %s", console.Red(err))
		}
		defer func() { _ = helper.Close(ctx) }()
		value, err := helper.Proximity(ctx)
		if err != nil {
			return console.Exit(1, "proximity read error: %s", console.Red(err))
		}
		console.Printf("proximity: %s\n", console.White(value))
		return nil
	},
}
