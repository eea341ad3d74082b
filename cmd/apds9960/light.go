package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/apds9960"
	"github.com/mklimuk/apds9960/cmd/apds9960/console"
)

type lightReading struct {
	Ambient int `yaml:"ambient"`
	Red     int `yaml:"red"`
	Green   int `yaml:"green"`
	Blue    int `yaml:"blue"`
}

var lightCmd = cli.Command{
	Name: "light",
	Subcommands: []*cli.Command{
		&lightReadCmd,
	},
}

var lightReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read ambient light and color channels",
	Flags:   busFlags,
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		helper, err := apds9960.New(connectFromFlags(c), apds9960.ModeLight)
		if err != nil {
			return console.Exit(1, "helper setup error: %s", console.Red(err))
		}
		err = helper.Init(ctx)
		if err != nil {
			return console.Exit(1, "sensor initialization error: %s", console.Red(err))
		}
		defer func() { _ = helper.Close(ctx) }()
		var reading lightReading
		if reading.Ambient, err = helper.AmbientLight(ctx); err != nil {
			return console.Exit(1, "ambient light read error: %s", console.Red(err))
		}
		if reading.Red, err = helper.RedLight(ctx); err != nil {
			return console.Exit(1, "red channel read error: %s", console.Red(err))
		}
		if reading.Green, err = helper.GreenLight(ctx); err != nil {
			return console.Exit(1, "green channel read error: %s", console.Red(err))
		}
		if reading.Blue, err = helper.BlueLight(ctx); err != nil {
			return console.Exit(1, "blue channel read error: %s", console.Red(err))
		}
		enc := yaml.NewEncoder(os.Stdout)
		err = enc.Encode(reading)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}
