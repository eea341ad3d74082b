package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/apds9960"
	"github.com/mklimuk/apds9960/cmd/apds9960/console"
)

var gestureCmd = cli.Command{
	Name: "gesture",
	Subcommands: []*cli.Command{
		&gestureWatchCmd,
	},
}

var gestureWatchCmd = cli.Command{
	Name:    "watch",
	Aliases: []string{"w"},
	Usage:   "print detected gestures until interrupted",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "interval",
			Value: apds9960.DefaultPollInterval,
			Usage: "gesture poll interval",
		},
	}, busFlags...),
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		helper, err := apds9960.New(connectFromFlags(c), apds9960.ModeGesture,
			apds9960.WithPollInterval(c.Duration("interval")))
		if err != nil {
			return console.Exit(1, "helper setup error: %s", console.Red(err))
		}
		helper.OnGesture(func(dir apds9960.Direction) {
			console.Printf("%s %s\n", console.White(time.Now().Format(time.TimeOnly)), console.Green(dir))
		})
		err = helper.Init(ctx)
		if err != nil {
			return console.Exit(1, "sensor initialization error: %s", console.Red(err))
		}
		console.Infof("watching for gestures, ctrl-c to stop")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		err = helper.Close(ctx)
		if err != nil {
			return console.Exit(1, "sensor shutdown error: %s", console.Red(err))
		}
		return nil
	},
}
