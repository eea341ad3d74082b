package apds9960

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// recordingDriver is a testify-based Driver mock used where tests assert on
// which capability calls were made.
type recordingDriver struct {
	mock.Mock
}

var _ Driver = &recordingDriver{}

func (d *recordingDriver) Init(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

func (d *recordingDriver) EnableGesture(ctx context.Context, interrupts bool) error {
	return d.Called(ctx, interrupts).Error(0)
}

func (d *recordingDriver) DisableGesture(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

func (d *recordingDriver) EnableLight(ctx context.Context, interrupts bool) error {
	return d.Called(ctx, interrupts).Error(0)
}

func (d *recordingDriver) DisableLight(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

func (d *recordingDriver) EnableProximity(ctx context.Context, interrupts bool) error {
	return d.Called(ctx, interrupts).Error(0)
}

func (d *recordingDriver) DisableProximity(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

func (d *recordingDriver) PowerOff(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

func (d *recordingDriver) GestureAvailable(ctx context.Context) (bool, error) {
	args := d.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (d *recordingDriver) ReadGesture(ctx context.Context) (Direction, error) {
	args := d.Called(ctx)
	return args.Get(0).(Direction), args.Error(1)
}

func (d *recordingDriver) ReadProximity(ctx context.Context) (byte, error) {
	args := d.Called(ctx)
	return args.Get(0).(byte), args.Error(1)
}

func (d *recordingDriver) ReadAmbientLight(ctx context.Context) (int, error) {
	args := d.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (d *recordingDriver) ReadRedLight(ctx context.Context) (int, error) {
	args := d.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (d *recordingDriver) ReadGreenLight(ctx context.Context) (int, error) {
	args := d.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (d *recordingDriver) ReadBlueLight(ctx context.Context) (int, error) {
	args := d.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (d *recordingDriver) Close(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

func TestHelperInit_EnablesSelectedCapability(t *testing.T) {
	tests := []struct {
		mode      Mode
		enabled   string
		untouched []string
	}{
		{ModeGesture, "EnableGesture", []string{"EnableLight", "EnableProximity"}},
		{ModeLight, "EnableLight", []string{"EnableGesture", "EnableProximity"}},
		{ModeProximity, "EnableProximity", []string{"EnableGesture", "EnableLight"}},
	}
	for _, test := range tests {
		t.Run(test.mode.String(), func(t *testing.T) {
			drv := &recordingDriver{}
			drv.On("Init", mock.Anything).Return(nil)
			drv.On(test.enabled, mock.Anything, false).Return(nil)

			// a one-hour interval keeps the poll out of the way in gesture mode
			h, err := NewWithDriver(drv, test.mode, WithPollInterval(time.Hour))
			assert.NoError(t, err)
			assert.False(t, h.Ready())
			assert.NoError(t, h.Init(context.Background()))
			assert.True(t, h.Ready())
			assert.Equal(t, test.mode, h.Mode())

			drv.AssertCalled(t, test.enabled, mock.Anything, false)
			for _, name := range test.untouched {
				drv.AssertNotCalled(t, name, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHelperNew_InvalidMode(t *testing.T) {
	h, err := New(func(context.Context) (Driver, error) {
		t.Fatal("connect must not be called for an invalid mode")
		return nil, nil
	}, Mode(42))
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestHelperInit_DeviceNotFound(t *testing.T) {
	h, err := New(func(context.Context) (Driver, error) {
		return nil, fmt.Errorf("could not enumerate bus devices: %w", ErrDeviceNotFound)
	}, ModeGesture, WithPollInterval(5*time.Millisecond))
	assert.NoError(t, err)

	err = h.Init(context.Background())
	assert.ErrorIs(t, err, ErrDeviceNotFound)
	assert.False(t, h.Ready())
	// nothing was created, so Close has nothing to release
	assert.NoError(t, h.Close(context.Background()))
}

func TestHelperInit_EnableFailureReleasesDriver(t *testing.T) {
	var closed atomic.Int64
	drv := &MockDriver{
		EnableLightFunc: func(ctx context.Context, interrupts bool) error {
			return fmt.Errorf("enable rejected")
		},
		CloseFunc: func(ctx context.Context) error {
			closed.Add(1)
			return nil
		},
	}
	h, err := NewWithDriver(drv, ModeLight)
	assert.NoError(t, err)
	assert.Error(t, h.Init(context.Background()))
	assert.False(t, h.Ready())
	assert.Equal(t, int64(1), closed.Load())
}

func TestHelperInit_Twice(t *testing.T) {
	h, err := NewWithDriver(&MockDriver{}, ModeLight)
	assert.NoError(t, err)
	assert.NoError(t, h.Init(context.Background()))
	assert.Error(t, h.Init(context.Background()))
}

func TestHelperAccessors_BeforeInit(t *testing.T) {
	h, err := NewWithDriver(&MockDriver{}, ModeLight)
	assert.NoError(t, err)
	_, err = h.AmbientLight(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = h.Proximity(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestHelperAccessors_AfterClose(t *testing.T) {
	h, err := NewWithDriver(&MockDriver{}, ModeProximity)
	assert.NoError(t, err)
	assert.NoError(t, h.Init(context.Background()))
	assert.NoError(t, h.Close(context.Background()))
	_, err = h.Proximity(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	err = h.Init(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHelperLightAccessors_Passthrough(t *testing.T) {
	drv := &MockDriver{
		ReadAmbientLightFunc: func(ctx context.Context) (int, error) { return 1024, nil },
		ReadRedLightFunc:     func(ctx context.Context) (int, error) { return 120, nil },
		ReadGreenLightFunc:   func(ctx context.Context) (int, error) { return 7, nil },
		ReadBlueLightFunc:    func(ctx context.Context) (int, error) { return 0, nil },
	}
	h, err := NewWithDriver(drv, ModeLight)
	assert.NoError(t, err)
	assert.NoError(t, h.Init(context.Background()))

	ctx := context.Background()
	ambient, err := h.AmbientLight(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1024, ambient)
	red, err := h.RedLight(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 120, red)
	green, err := h.GreenLight(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 7, green)
	blue, err := h.BlueLight(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, blue)
}

func TestHelperProximity_Passthrough(t *testing.T) {
	tests := []byte{0x00, 0x7F, 0xFF}
	for _, expected := range tests {
		drv := &MockDriver{
			ReadProximityFunc: func(ctx context.Context) (byte, error) { return expected, nil },
		}
		h, err := NewWithDriver(drv, ModeProximity)
		assert.NoError(t, err)
		assert.NoError(t, h.Init(context.Background()))
		got, err := h.Proximity(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestHelperPoll_DeliversSingleGesture(t *testing.T) {
	var checks atomic.Int64
	drv := &MockDriver{
		GestureAvailableFunc: func(ctx context.Context) (bool, error) {
			// a single gesture shows up on the first tick only
			return checks.Add(1) == 1, nil
		},
		ReadGestureFunc: func(ctx context.Context) (Direction, error) {
			return DirectionLeft, nil
		},
	}
	h, err := NewWithDriver(drv, ModeGesture, WithPollInterval(5*time.Millisecond))
	assert.NoError(t, err)

	detected := make(chan Direction, 8)
	h.OnGesture(func(dir Direction) {
		detected <- dir
	})
	assert.NoError(t, h.Init(context.Background()))
	defer func() { _ = h.Close(context.Background()) }()

	select {
	case dir := <-detected:
		assert.Equal(t, DirectionLeft, dir)
	case <-time.After(time.Second):
		t.Fatal("gesture was not delivered")
	}
	// ticks with no available gesture stay silent
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, detected)
}

func TestHelperPoll_NoHandlerNoDriverAccess(t *testing.T) {
	var checks atomic.Int64
	drv := &MockDriver{
		GestureAvailableFunc: func(ctx context.Context) (bool, error) {
			checks.Add(1)
			return true, nil
		},
	}
	h, err := NewWithDriver(drv, ModeGesture, WithPollInterval(5*time.Millisecond))
	assert.NoError(t, err)
	assert.NoError(t, h.Init(context.Background()))
	defer func() { _ = h.Close(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, checks.Load())
}

func TestHelperPoll_GestureModeOnly(t *testing.T) {
	var checks atomic.Int64
	drv := &MockDriver{
		GestureAvailableFunc: func(ctx context.Context) (bool, error) {
			checks.Add(1)
			return false, nil
		},
	}
	h, err := NewWithDriver(drv, ModeLight, WithPollInterval(5*time.Millisecond))
	assert.NoError(t, err)
	h.OnGesture(func(Direction) {})
	assert.NoError(t, h.Init(context.Background()))
	defer func() { _ = h.Close(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, checks.Load())
}

func TestHelperClose_DisablesAllCapabilities(t *testing.T) {
	drv := &recordingDriver{}
	drv.On("Init", mock.Anything).Return(nil)
	drv.On("EnableLight", mock.Anything, false).Return(nil)
	drv.On("DisableGesture", mock.Anything).Return(nil)
	drv.On("DisableLight", mock.Anything).Return(nil)
	drv.On("DisableProximity", mock.Anything).Return(nil)
	drv.On("PowerOff", mock.Anything).Return(nil)
	drv.On("Close", mock.Anything).Return(nil)

	h, err := NewWithDriver(drv, ModeLight)
	assert.NoError(t, err)
	assert.NoError(t, h.Init(context.Background()))
	assert.NoError(t, h.Close(context.Background()))

	// every capability is disabled regardless of the constructed mode
	drv.AssertCalled(t, "DisableGesture", mock.Anything)
	drv.AssertCalled(t, "DisableLight", mock.Anything)
	drv.AssertCalled(t, "DisableProximity", mock.Anything)
	drv.AssertCalled(t, "PowerOff", mock.Anything)
	drv.AssertCalled(t, "Close", mock.Anything)
}

func TestHelperClose_Idempotent(t *testing.T) {
	var closed atomic.Int64
	drv := &MockDriver{
		CloseFunc: func(ctx context.Context) error {
			closed.Add(1)
			return nil
		},
	}
	h, err := NewWithDriver(drv, ModeLight)
	assert.NoError(t, err)
	assert.NoError(t, h.Init(context.Background()))
	assert.NoError(t, h.Close(context.Background()))
	assert.NoError(t, h.Close(context.Background()))
	assert.Equal(t, int64(1), closed.Load())
}

func TestHelperClose_StopsPoll(t *testing.T) {
	var checks atomic.Int64
	drv := &MockDriver{
		GestureAvailableFunc: func(ctx context.Context) (bool, error) {
			checks.Add(1)
			return false, nil
		},
	}
	h, err := NewWithDriver(drv, ModeGesture, WithPollInterval(time.Millisecond))
	assert.NoError(t, err)
	h.OnGesture(func(Direction) {})
	assert.NoError(t, h.Init(context.Background()))

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, h.Close(context.Background()))
	after := checks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, checks.Load())
}

func TestHelperClose_RacesWithTicks(t *testing.T) {
	// close repeatedly while ticks are firing; the poll goroutine must keep
	// working off the ticker and channels it was started with
	for i := 0; i < 100; i++ {
		drv := &MockDriver{
			GestureAvailableFunc: func(ctx context.Context) (bool, error) { return true, nil },
			ReadGestureFunc: func(ctx context.Context) (Direction, error) {
				return DirectionUp, nil
			},
		}
		h, err := NewWithDriver(drv, ModeGesture, WithPollInterval(time.Millisecond))
		assert.NoError(t, err)
		h.OnGesture(func(Direction) {})
		assert.NoError(t, h.Init(context.Background()))
		time.Sleep(time.Duration(i%3) * time.Millisecond)
		assert.NoError(t, h.Close(context.Background()))
	}
}

func TestDefaultPollInterval(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, DefaultPollInterval)
}
