package apds9960

import (
	"context"
	"errors"
)

// ErrInvalidMode is returned for a Mode value outside the known set.
var ErrInvalidMode = errors.New("invalid sensor mode")

// Mode selects the single sensor capability a helper instance drives for
// its whole lifetime. The APDS-9960 engines are mutually exclusive at this
// level: enabling a different capability after construction is not supported.
type Mode uint8

const (
	ModeGesture Mode = iota
	ModeLight
	ModeProximity
)

func (m Mode) String() string {
	switch m {
	case ModeGesture:
		return "gesture"
	case ModeLight:
		return "light"
	case ModeProximity:
		return "proximity"
	default:
		return "unknown"
	}
}

func (m Mode) valid() bool {
	switch m {
	case ModeGesture, ModeLight, ModeProximity:
		return true
	}
	return false
}

// Direction is a detected gesture direction.
type Direction uint8

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "none"
	}
}

// Driver is the capability-level contract of the register driver. The
// interrupts flag on the enable calls mirrors the sensor's interrupt lines;
// implementations that only support polling reject interrupts=true.
//
// Close releases the bus handle the driver was constructed over: the driver
// and its connection share a single lifetime.
type Driver interface {
	Init(ctx context.Context) error

	EnableGesture(ctx context.Context, interrupts bool) error
	DisableGesture(ctx context.Context) error
	EnableLight(ctx context.Context, interrupts bool) error
	DisableLight(ctx context.Context) error
	EnableProximity(ctx context.Context, interrupts bool) error
	DisableProximity(ctx context.Context) error
	PowerOff(ctx context.Context) error

	GestureAvailable(ctx context.Context) (bool, error)
	ReadGesture(ctx context.Context) (Direction, error)
	ReadProximity(ctx context.Context) (byte, error)
	ReadAmbientLight(ctx context.Context) (int, error)
	ReadRedLight(ctx context.Context) (int, error)
	ReadGreenLight(ctx context.Context) (int, error)
	ReadBlueLight(ctx context.Context) (int, error)

	Close(ctx context.Context) error
}
