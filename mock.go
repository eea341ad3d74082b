package apds9960

import "context"

// MockDriver is a mock implementation of Driver driven by optional behavior
// functions, usable without any hardware. Unset functions behave as succeeding
// no-ops returning zero values, so tests only define what they care about.
//
// Example usage:
//
//	drv := &MockDriver{
//		GestureAvailableFunc: func(ctx context.Context) (bool, error) { return true, nil },
//		ReadGestureFunc:      func(ctx context.Context) (Direction, error) { return DirectionUp, nil },
//	}
//	h, _ := NewWithDriver(drv, ModeGesture)
type MockDriver struct {
	InitFunc             func(ctx context.Context) error
	EnableGestureFunc    func(ctx context.Context, interrupts bool) error
	DisableGestureFunc   func(ctx context.Context) error
	EnableLightFunc      func(ctx context.Context, interrupts bool) error
	DisableLightFunc     func(ctx context.Context) error
	EnableProximityFunc  func(ctx context.Context, interrupts bool) error
	DisableProximityFunc func(ctx context.Context) error
	PowerOffFunc         func(ctx context.Context) error
	GestureAvailableFunc func(ctx context.Context) (bool, error)
	ReadGestureFunc      func(ctx context.Context) (Direction, error)
	ReadProximityFunc    func(ctx context.Context) (byte, error)
	ReadAmbientLightFunc func(ctx context.Context) (int, error)
	ReadRedLightFunc     func(ctx context.Context) (int, error)
	ReadGreenLightFunc   func(ctx context.Context) (int, error)
	ReadBlueLightFunc    func(ctx context.Context) (int, error)
	CloseFunc            func(ctx context.Context) error
}

var _ Driver = &MockDriver{}

func (m *MockDriver) Init(ctx context.Context) error {
	if m.InitFunc == nil {
		return nil
	}
	return m.InitFunc(ctx)
}

func (m *MockDriver) EnableGesture(ctx context.Context, interrupts bool) error {
	if m.EnableGestureFunc == nil {
		return nil
	}
	return m.EnableGestureFunc(ctx, interrupts)
}

func (m *MockDriver) DisableGesture(ctx context.Context) error {
	if m.DisableGestureFunc == nil {
		return nil
	}
	return m.DisableGestureFunc(ctx)
}

func (m *MockDriver) EnableLight(ctx context.Context, interrupts bool) error {
	if m.EnableLightFunc == nil {
		return nil
	}
	return m.EnableLightFunc(ctx, interrupts)
}

func (m *MockDriver) DisableLight(ctx context.Context) error {
	if m.DisableLightFunc == nil {
		return nil
	}
	return m.DisableLightFunc(ctx)
}

func (m *MockDriver) EnableProximity(ctx context.Context, interrupts bool) error {
	if m.EnableProximityFunc == nil {
		return nil
	}
	return m.EnableProximityFunc(ctx, interrupts)
}

func (m *MockDriver) DisableProximity(ctx context.Context) error {
	if m.DisableProximityFunc == nil {
		return nil
	}
	return m.DisableProximityFunc(ctx)
}

func (m *MockDriver) PowerOff(ctx context.Context) error {
	if m.PowerOffFunc == nil {
		return nil
	}
	return m.PowerOffFunc(ctx)
}

func (m *MockDriver) GestureAvailable(ctx context.Context) (bool, error) {
	if m.GestureAvailableFunc == nil {
		return false, nil
	}
	return m.GestureAvailableFunc(ctx)
}

func (m *MockDriver) ReadGesture(ctx context.Context) (Direction, error) {
	if m.ReadGestureFunc == nil {
		return DirectionNone, nil
	}
	return m.ReadGestureFunc(ctx)
}

func (m *MockDriver) ReadProximity(ctx context.Context) (byte, error) {
	if m.ReadProximityFunc == nil {
		return 0, nil
	}
	return m.ReadProximityFunc(ctx)
}

func (m *MockDriver) ReadAmbientLight(ctx context.Context) (int, error) {
	if m.ReadAmbientLightFunc == nil {
		return 0, nil
	}
	return m.ReadAmbientLightFunc(ctx)
}

func (m *MockDriver) ReadRedLight(ctx context.Context) (int, error) {
	if m.ReadRedLightFunc == nil {
		return 0, nil
	}
	return m.ReadRedLightFunc(ctx)
}

func (m *MockDriver) ReadGreenLight(ctx context.Context) (int, error) {
	if m.ReadGreenLightFunc == nil {
		return 0, nil
	}
	return m.ReadGreenLightFunc(ctx)
}

func (m *MockDriver) ReadBlueLight(ctx context.Context) (int, error) {
	if m.ReadBlueLightFunc == nil {
		return 0, nil
	}
	return m.ReadBlueLightFunc(ctx)
}

func (m *MockDriver) Close(ctx context.Context) error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc(ctx)
}
