package adapter

import (
	"fmt"

	gi2c "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/apds9960"
)

var _ apds9960.BusCloser = &GobotBus{}

// GobotBus exposes a gobot platform adaptor (NanoPi, Raspberry Pi, ...) as a
// bus connection. The underlying generic driver is bound to a single device
// address, so Tx rejects transactions addressed elsewhere.
type GobotBus struct {
	driver *gi2c.GenericDriver
	addr   uint16
}

// NewGobotBus starts a generic driver over a connected platform adaptor,
// bound to the device address on the given bus number.
func NewGobotBus(adaptor gi2c.Connector, addr byte, bus int) (*GobotBus, error) {
	driver := gi2c.NewGenericDriver(adaptor, "apds9960", int(addr), func(c gi2c.Config) {
		c.SetBus(bus)
	})
	err := driver.Start()
	if err != nil {
		return nil, fmt.Errorf("generic driver start error: %w", err)
	}
	return &GobotBus{driver: driver, addr: uint16(addr)}, nil
}

// Tx writes w and reads into r as two separate bus operations; the gobot
// connection does not expose a combined transaction with repeated start.
func (b *GobotBus) Tx(addr uint16, w, r []byte) error {
	if addr != b.addr {
		return fmt.Errorf("connection is bound to %#x, cannot address %#x", b.addr, addr)
	}
	if len(w) > 0 {
		err := b.driver.Write(w)
		if err != nil {
			return fmt.Errorf("could not write to %#x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		err := b.driver.Read(r)
		if err != nil {
			return fmt.Errorf("could not read from %#x: %w", addr, err)
		}
	}
	return nil
}

func (b *GobotBus) Close() error {
	err := b.driver.Halt()
	if err != nil {
		return fmt.Errorf("generic driver halt error: %w", err)
	}
	return nil
}
