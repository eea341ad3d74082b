package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/apds9960"
	"github.com/mklimuk/apds9960/adapter"
	"github.com/mklimuk/apds9960/i2c"
)

// busFlags select the bus provider shared by all sensor commands. The
// device address is fixed (0x39), only the transport varies.
var busFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Value:   "periph",
		Usage:   "bus provider: periph, mcp2221 or gobot",
	},
	&cli.StringFlag{
		Name:  "bus",
		Usage: "bus name for the periph provider (empty selects the first one)",
	},
	&cli.IntFlag{
		Name:  "bus-num",
		Usage: "bus number for the gobot provider",
	},
}

// connectFromFlags builds the bus acquisition step for the helper: open the
// selected transport, then bind the sensor over it.
func connectFromFlags(c *cli.Context) apds9960.Connect {
	provider := c.String("adapter")
	busName := c.String("bus")
	busNum := c.Int("bus-num")
	return func(ctx context.Context) (apds9960.Driver, error) {
		switch provider {
		case "periph":
			bus, err := i2c.Open(busName, apds9960.DefaultAddr)
			if err != nil {
				return nil, err
			}
			return apds9960.NewDevice(bus, apds9960.WithBusCloser(bus)), nil
		case "mcp2221":
			bridge := adapter.NewMCP2221()
			// the status probe doubles as device enumeration
			_, err := bridge.Status()
			if err != nil {
				return nil, err
			}
			return apds9960.NewDevice(bridge, apds9960.WithBusCloser(bridge)), nil
		case "gobot":
			npi := nanopi.NewNeoAdaptor()
			err := npi.I2cBusAdaptor.Connect()
			if err != nil {
				return nil, fmt.Errorf("adaptor connect error: %w", err)
			}
			bus, err := adapter.NewGobotBus(npi, apds9960.DefaultAddr, busNum)
			if err != nil {
				return nil, err
			}
			return apds9960.NewDevice(bus, apds9960.WithBusCloser(bus)), nil
		default:
			return nil, fmt.Errorf("unknown bus provider: %s", provider)
		}
	}
}
