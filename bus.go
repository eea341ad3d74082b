package apds9960

import "errors"

var (
	// ErrDeviceNotFound is returned when bus or adapter enumeration
	// yields no device to talk to.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrBusBusy signals an adapter-level transient failure (command not completed).
	ErrBusBusy = errors.New("I2C engine is busy (command not completed)")
)

// I2C is the bus connection contract consumed by the sensor binding.
// It is satisfied by periph.io/x/conn/v3/i2c.Bus and is method-compatible
// with tinygo.org/x/drivers.I2C, so any provider implementing it can back
// the vendor driver directly.
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

// BusCloser is an I2C connection whose lifetime is owned by the caller.
type BusCloser interface {
	I2C
	Close() error
}
