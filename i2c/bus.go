package i2c

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/apds9960"
)

// FastModeSpeed is the bus clock used for the sensor (I2C fast mode).
const FastModeSpeed = 400 * physic.KiloHertz

var _ apds9960.BusCloser = &GenericBus{}

// GenericBus is a periph.io backed bus connection. The bus is opened in the
// platform's shared mode, so other consumers of the same physical bus may
// coexist; serialization against them is left to the bus subsystem.
type GenericBus struct {
	bus i2c.BusCloser
}

// Open initializes the host, opens the named bus (an empty name selects the
// first registered one), switches it to fast mode and probes for a device
// at addr. A probe with no answer fails with apds9960.ErrDeviceNotFound.
func Open(dev string, addr byte) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	err = bus.SetSpeed(FastModeSpeed)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("could not set bus speed: %w", err)
	}
	// presence probe: a one byte read has to be acked by the device
	err = bus.Tx(uint16(addr), nil, make([]byte, 1))
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("no answer from %#x: %w", addr, apds9960.ErrDeviceNotFound)
	}
	return &GenericBus{bus: bus}, nil
}

func (b *GenericBus) Tx(addr uint16, w, r []byte) error {
	err := b.bus.Tx(addr, w, r)
	if err != nil {
		return fmt.Errorf("i2c transaction with %x failed: %w", addr, err)
	}
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
