// Package gpio drives a button from a GPIO input pin.
//
// The pin is configured for both-edge detection and polled with
// WaitForEdge. Every level change is fed into the embedded button.Base as
// a state change, which then raises the derived pressed, released and hold
// notifications. Edges are not debounced.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/dshills/buttonkit/internal/button"
	"github.com/dshills/buttonkit/internal/component"
)

// DefaultPollTimeout bounds each WaitForEdge call so Run notices
// cancellation.
const DefaultPollTimeout = 250 * time.Millisecond

// Errors returned by the GPIO driver.
var (
	ErrPinNotFound    = errors.New("gpio pin not found")
	ErrAlreadyRunning = errors.New("gpio button is already running")
)

// Options configures a GPIO button.
type Options struct {
	// ActiveLow treats a low level as pressed. This is the usual wiring
	// for a switch to ground with a pull-up.
	ActiveLow bool
	// Pull is the input resistor configuration.
	Pull gpio.Pull
	// PollTimeout bounds each wait for an edge.
	PollTimeout time.Duration
	// Button holds options for the embedded button.Base.
	Button []button.Option
}

// DefaultOptions returns active-low with the internal pull-up enabled.
func DefaultOptions() Options {
	return Options{
		ActiveLow:   true,
		Pull:        gpio.PullUp,
		PollTimeout: DefaultPollTimeout,
	}
}

// Button is a button whose state follows a GPIO pin.
type Button struct {
	*button.Base

	pin  gpio.PinIn
	opts Options

	mu        sync.Mutex
	running   bool
	ready     chan struct{}
	readyOnce sync.Once
}

// Open resolves pinName through the periph registry and wraps it.
// host.Init must have been called before.
func Open(pinName string, opts Options) (*Button, error) {
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, pinName)
	}
	return New(p, opts), nil
}

// New wraps an already resolved pin.
func New(pin gpio.PinIn, opts Options) *Button {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	b := &Button{
		Base: button.NewBase(opts.Button...),
		pin:   pin,
		opts:  opts,
		ready: make(chan struct{}),
	}
	b.BindHooks(b)
	b.SetProperty("pin", pin.String())
	return b
}

// Pin returns the underlying pin.
func (b *Button) Pin() gpio.PinIn {
	return b.pin
}

// Ready is closed once the first Run has configured the pin.
func (b *Button) Ready() <-chan struct{} {
	return b.ready
}

// Run configures the pin and feeds level changes into the button until
// ctx is cancelled or the button is disposed.
func (b *Button) Run(ctx context.Context) error {
	if b.IsDisposed() {
		return component.NewDisposedError(b.Name())
	}

	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return ErrAlreadyRunning
	}
	b.running = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	if err := b.pin.In(b.opts.Pull, gpio.BothEdges); err != nil {
		return fmt.Errorf("configuring %s: %w", b.pin, err)
	}
	b.readyOnce.Do(func() { close(b.ready) })

	log := b.Logger().WithField("pin", b.pin.String())
	log.Info("watching pin (pull %s, active-low %t)", b.opts.Pull, b.opts.ActiveLow)

	// A button held down at startup is announced as a press.
	if s := b.levelState(b.pin.Read()); s != b.State() {
		if err := b.change(s); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if b.IsDisposed() {
			return nil
		}

		if !b.pin.WaitForEdge(b.opts.PollTimeout) {
			continue
		}
		s := b.levelState(b.pin.Read())
		if s == b.State() {
			continue
		}
		if err := b.change(s); err != nil {
			if b.IsDisposed() {
				return nil
			}
			log.WithError(err).Warn("state change failed")
		}
	}
}

func (b *Button) change(s button.State) error {
	if err := b.SetState(s); err != nil {
		return err
	}
	return b.Self().OnStateChanged(button.NewEvent(b.Self()))
}

func (b *Button) levelState(l gpio.Level) button.State {
	pressed := l == gpio.Low
	if !b.opts.ActiveLow {
		pressed = !pressed
	}
	if pressed {
		return button.Pressed
	}
	return button.Released
}

// Close disposes the button and halts the pin.
func (b *Button) Close() error {
	b.Dispose()
	return b.pin.Halt()
}

// ParsePull converts a config value to a gpio.Pull.
func ParsePull(s string) (gpio.Pull, error) {
	switch strings.ToLower(s) {
	case "up", "pullup":
		return gpio.PullUp, nil
	case "down", "pulldown":
		return gpio.PullDown, nil
	case "none", "float", "":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, fmt.Errorf("unknown pull %q", s)
	}
}
