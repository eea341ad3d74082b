package apds9960

import (
	"context"
	"fmt"
	"io"

	drv "tinygo.org/x/drivers/apds9960"
)

// DefaultAddr is the fixed I2C address of the APDS-9960.
const DefaultAddr = 0x39

// Device binds the vendor register driver (tinygo.org/x/drivers/apds9960)
// to the Driver contract. It is pure glue: the register protocol stays in
// the vendor driver, Device only maps capabilities, directions and units.
type Device struct {
	dev    drv.Device
	closer io.Closer
}

var _ Driver = &Device{}

type DeviceOpt func(*Device)

// WithBusCloser hands ownership of the bus connection to the device; it is
// closed by Close after the sensor has been powered down.
func WithBusCloser(c io.Closer) DeviceOpt {
	return func(d *Device) {
		d.closer = c
	}
}

// NewDevice creates an APDS-9960 binding over an open bus connection.
func NewDevice(bus I2C, opts ...DeviceOpt) *Device {
	d := &Device{dev: drv.New(bus)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) Init(ctx context.Context) error {
	if !d.dev.Connected() {
		return fmt.Errorf("apds9960 at %#x does not respond: %w", DefaultAddr, ErrDeviceNotFound)
	}
	// vendor defaults match the datasheet reset values
	d.dev.Configure(drv.Configuration{})
	return nil
}

func (d *Device) EnableGesture(ctx context.Context, interrupts bool) error {
	if interrupts {
		return fmt.Errorf("interrupt-driven gesture detection is not supported, use polling")
	}
	d.dev.EnableGesture()
	return nil
}

// The vendor driver's engines are modal: enabling one tears the others
// down, and the only teardown entry point is DisableAll. Each capability
// disable maps onto it, which keeps the disable-everything close semantics.
func (d *Device) DisableGesture(ctx context.Context) error {
	d.dev.DisableAll()
	return nil
}

func (d *Device) EnableLight(ctx context.Context, interrupts bool) error {
	if interrupts {
		return fmt.Errorf("interrupt-driven light sensing is not supported, use polling")
	}
	d.dev.EnableColor()
	return nil
}

func (d *Device) DisableLight(ctx context.Context) error {
	d.dev.DisableAll()
	return nil
}

func (d *Device) EnableProximity(ctx context.Context, interrupts bool) error {
	if interrupts {
		return fmt.Errorf("interrupt-driven proximity sensing is not supported, use polling")
	}
	d.dev.EnableProximity()
	return nil
}

func (d *Device) DisableProximity(ctx context.Context) error {
	d.dev.DisableAll()
	return nil
}

// PowerOff clears the enable register, shutting down all engines including
// the oscillator.
func (d *Device) PowerOff(ctx context.Context) error {
	d.dev.DisableAll()
	return nil
}

func (d *Device) GestureAvailable(ctx context.Context) (bool, error) {
	return d.dev.GestureAvailable(), nil
}

func (d *Device) ReadGesture(ctx context.Context) (Direction, error) {
	return mapGesture(d.dev.ReadGesture()), nil
}

func (d *Device) ReadProximity(ctx context.Context) (byte, error) {
	return clampByte(d.dev.ReadProximity()), nil
}

func (d *Device) ReadAmbientLight(ctx context.Context) (int, error) {
	_, _, _, clear := d.dev.ReadColor()
	return int(clear), nil
}

func (d *Device) ReadRedLight(ctx context.Context) (int, error) {
	r, _, _, _ := d.dev.ReadColor()
	return int(r), nil
}

func (d *Device) ReadGreenLight(ctx context.Context) (int, error) {
	_, g, _, _ := d.dev.ReadColor()
	return int(g), nil
}

func (d *Device) ReadBlueLight(ctx context.Context) (int, error) {
	_, _, b, _ := d.dev.ReadColor()
	return int(b), nil
}

func (d *Device) Close(ctx context.Context) error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	if err != nil {
		return fmt.Errorf("could not close bus connection: %w", err)
	}
	return nil
}

func mapGesture(g int32) Direction {
	switch g {
	case drv.GESTURE_UP:
		return DirectionUp
	case drv.GESTURE_DOWN:
		return DirectionDown
	case drv.GESTURE_LEFT:
		return DirectionLeft
	case drv.GESTURE_RIGHT:
		return DirectionRight
	default:
		return DirectionNone
	}
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 0xFF {
		return 0xFF
	}
	return byte(v)
}
