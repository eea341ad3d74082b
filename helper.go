package apds9960

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is the gesture poll period.
const DefaultPollInterval = 100 * time.Millisecond

var (
	// ErrNotReady is returned by accessors before Init has completed.
	ErrNotReady = errors.New("sensor helper is not initialized")
	// ErrClosed is returned once the helper has been closed.
	ErrClosed = errors.New("sensor helper is closed")
)

type state uint8

const (
	stateNew state = iota
	stateInitializing
	stateReady
	stateClosed
)

// Connect acquires the bus connection and constructs a driver bound to it.
// It must return ErrDeviceNotFound (possibly wrapped) when enumeration
// yields no device.
type Connect func(ctx context.Context) (Driver, error)

// GestureHandler receives detected gesture directions. It is invoked
// synchronously on the poll goroutine, at most once per tick.
type GestureHandler func(Direction)

type Option func(*Helper)

// WithPollInterval overrides the gesture poll period.
func WithPollInterval(interval time.Duration) Option {
	return func(h *Helper) {
		if interval > 0 {
			h.interval = interval
		}
	}
}

// WithLogger overrides the logger used for poll-loop diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(h *Helper) {
		h.log = log
	}
}

// Helper owns a driver instance in exactly one capability mode and, in
// gesture mode, a recurring poll delivering detected directions to a
// registered handler.
//
// Usage is two-phase: New validates the mode, Init acquires the bus,
// brings the driver up and enables the selected capability. Accessors
// called before Init completes return ErrNotReady. Close is idempotent.
type Helper struct {
	connect  Connect
	mode     Mode
	interval time.Duration
	log      *slog.Logger

	mx      sync.Mutex
	st      state
	drv     Driver
	handler GestureHandler

	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}
}

// New creates a helper in the given mode. The connection is not touched
// until Init is called.
func New(connect Connect, mode Mode, opts ...Option) (*Helper, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	h := &Helper{
		connect:  connect,
		mode:     mode,
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	return h, nil
}

// NewWithDriver creates a helper over an already constructed driver.
func NewWithDriver(drv Driver, mode Mode, opts ...Option) (*Helper, error) {
	return New(func(context.Context) (Driver, error) { return drv, nil }, mode, opts...)
}

// Init acquires the bus connection, initializes the driver and enables the
// selected capability; in gesture mode it additionally starts the poll.
// On failure the helper reverts to its uninitialized state with the driver
// closed, so Init may be retried.
func (h *Helper) Init(ctx context.Context) error {
	h.mx.Lock()
	switch h.st {
	case stateClosed:
		h.mx.Unlock()
		return ErrClosed
	case stateReady, stateInitializing:
		h.mx.Unlock()
		return fmt.Errorf("sensor helper is already initialized")
	}
	h.st = stateInitializing
	h.mx.Unlock()

	drv, err := h.setup(ctx)

	h.mx.Lock()
	defer h.mx.Unlock()
	if err != nil {
		if h.st == stateInitializing {
			h.st = stateNew
		}
		return err
	}
	if h.st == stateClosed {
		// closed while initializing; release what we just acquired
		_ = drv.Close(ctx)
		return ErrClosed
	}
	h.drv = drv
	if h.mode == ModeGesture {
		h.ticker = time.NewTicker(h.interval)
		h.stop = make(chan struct{})
		h.done = make(chan struct{})
		go h.poll(h.ticker, h.stop, h.done)
	}
	h.st = stateReady
	return nil
}

func (h *Helper) setup(ctx context.Context) (Driver, error) {
	drv, err := h.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not acquire bus connection: %w", err)
	}
	err = drv.Init(ctx)
	if err != nil {
		_ = drv.Close(ctx)
		return nil, fmt.Errorf("could not initialize driver: %w", err)
	}
	switch h.mode {
	case ModeGesture:
		err = drv.EnableGesture(ctx, false)
	case ModeLight:
		err = drv.EnableLight(ctx, false)
	case ModeProximity:
		err = drv.EnableProximity(ctx, false)
	default:
		// unreachable, New validates the mode
		err = fmt.Errorf("%w: %d", ErrInvalidMode, h.mode)
	}
	if err != nil {
		_ = drv.Close(ctx)
		return nil, fmt.Errorf("could not enable %s capability: %w", h.mode, err)
	}
	return drv, nil
}

// Ready reports whether initialization has completed and the helper has not
// been closed.
func (h *Helper) Ready() bool {
	h.mx.Lock()
	defer h.mx.Unlock()
	return h.st == stateReady
}

// Mode returns the capability the helper was constructed for.
func (h *Helper) Mode() Mode {
	return h.mode
}

// OnGesture registers the gesture handler. Passing nil unregisters it.
// Ticks that fire with no handler registered do not touch the driver.
func (h *Helper) OnGesture(handler GestureHandler) {
	h.mx.Lock()
	h.handler = handler
	h.mx.Unlock()
}

// Proximity reads the proximity channel. Meaningful in proximity mode.
func (h *Helper) Proximity(ctx context.Context) (byte, error) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if err := h.ready(); err != nil {
		return 0, err
	}
	return h.drv.ReadProximity(ctx)
}

// AmbientLight reads the clear channel. Meaningful in light mode.
func (h *Helper) AmbientLight(ctx context.Context) (int, error) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if err := h.ready(); err != nil {
		return 0, err
	}
	return h.drv.ReadAmbientLight(ctx)
}

func (h *Helper) RedLight(ctx context.Context) (int, error) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if err := h.ready(); err != nil {
		return 0, err
	}
	return h.drv.ReadRedLight(ctx)
}

func (h *Helper) GreenLight(ctx context.Context) (int, error) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if err := h.ready(); err != nil {
		return 0, err
	}
	return h.drv.ReadGreenLight(ctx)
}

func (h *Helper) BlueLight(ctx context.Context) (int, error) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if err := h.ready(); err != nil {
		return 0, err
	}
	return h.drv.ReadBlueLight(ctx)
}

func (h *Helper) ready() error {
	switch h.st {
	case stateClosed:
		return ErrClosed
	case stateReady:
		return nil
	default:
		return ErrNotReady
	}
}

// poll owns the ticker and channels it was started with; Close clears the
// struct fields concurrently, so they must not be re-read here.
func (h *Helper) poll(ticker *time.Ticker, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *Helper) tick() {
	ctx := context.Background()
	h.mx.Lock()
	if h.st != stateReady || h.handler == nil {
		h.mx.Unlock()
		return
	}
	available, err := h.drv.GestureAvailable(ctx)
	if err != nil {
		h.mx.Unlock()
		h.log.Warn("gesture availability check failed", "error", err)
		return
	}
	if !available {
		h.mx.Unlock()
		return
	}
	dir, err := h.drv.ReadGesture(ctx)
	handler := h.handler
	h.mx.Unlock()
	if err != nil {
		h.log.Warn("gesture read failed", "error", err)
		return
	}
	// deliver outside the lock so the handler may call accessors
	handler(dir)
}

// Close stops the poll, disables every capability unconditionally, powers
// the sensor down and releases the driver together with its bus connection.
// Calling Close more than once is a no-op.
func (h *Helper) Close(ctx context.Context) error {
	h.mx.Lock()
	if h.st == stateClosed {
		h.mx.Unlock()
		return nil
	}
	prev := h.st
	h.st = stateClosed
	drv := h.drv
	h.drv = nil
	h.handler = nil
	ticker, stop, done := h.ticker, h.stop, h.done
	h.ticker, h.stop, h.done = nil, nil, nil
	h.mx.Unlock()

	if prev != stateReady || drv == nil {
		// never fully initialized, nothing to release
		return nil
	}
	if ticker != nil {
		ticker.Stop()
		close(stop)
		<-done
	}
	var errs []error
	if err := drv.DisableGesture(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not disable gesture capability: %w", err))
	}
	if err := drv.DisableLight(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not disable light capability: %w", err))
	}
	if err := drv.DisableProximity(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not disable proximity capability: %w", err))
	}
	if err := drv.PowerOff(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not power off sensor: %w", err))
	}
	if err := drv.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("could not release driver: %w", err))
	}
	return errors.Join(errs...)
}
