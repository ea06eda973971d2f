package button

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/buttonkit/internal/component"
	"github.com/dshills/buttonkit/internal/event"
	"github.com/dshills/buttonkit/internal/event/dispatch"
	"github.com/dshills/buttonkit/internal/logging"
)

// Base is the button state machine and notification dispatcher.
//
// Notifications raised by the hooks are delivered on a dedicated worker, in
// the order they were scheduled, after the hook has returned. Listeners for
// one Base therefore never run concurrently with each other.
//
// State mutation (SetState and the hooks) is expected to come from a single
// driver goroutine. The hold timer runs on its own goroutine and only reads
// state.
type Base struct {
	comp     *component.Component
	state    atomic.Int32
	disposed atomic.Bool

	emitter *event.Emitter[Event]
	queue   *dispatch.Queue
	logger  *logging.Logger

	// hooks receives the derived calls so that types embedding *Base can
	// override them.
	hooks Button

	disposeMu sync.Mutex

	timerMu      sync.Mutex
	holdInterval time.Duration
	hold         *holdTimer
	holdGen      uint64
}

var _ Button = (*Base)(nil)

// NewBase creates a released button with no listeners and no active timer.
func NewBase(opts ...Option) *Base {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}

	b := &Base{
		comp:         component.New(o.name),
		emitter:      event.NewEmitter[Event](),
		holdInterval: o.holdInterval,
	}
	b.comp.SetTag(o.tag)
	b.logger = o.logger.WithComponent(o.name).WithField("id", b.comp.ID())
	b.hooks = b
	b.state.Store(int32(Released))

	b.queue = dispatch.NewQueue(
		dispatch.WithLimit(o.queueLimit),
		dispatch.WithPanicHandler(b.listenerPanic),
	)
	// A fresh queue cannot already be running.
	_ = b.queue.Start()

	return b
}

// BindHooks routes derived hook calls and hold ticks through self.
// Types that embed *Base and override hooks call this from their constructor.
func (b *Base) BindHooks(self Button) {
	if self == nil {
		self = b
	}
	b.hooks = self
}

// Self returns the button the hooks are bound to.
func (b *Base) Self() Button {
	return b.hooks
}

// State returns the current state.
func (b *Base) State() State {
	return State(b.state.Load())
}

// IsPressed reports whether the current state is Pressed.
func (b *Base) IsPressed() bool {
	return b.State() == Pressed
}

// IsReleased reports whether the current state is Released.
func (b *Base) IsReleased() bool {
	return b.State() == Released
}

// IsState reports whether the current state is s.
func (b *Base) IsState(s State) bool {
	return b.State() == s
}

// SetState stores s as the current state without notifying anyone.
// Drivers follow it with OnStateChanged(NewEvent(button)).
func (b *Base) SetState(s State) error {
	if b.IsDisposed() {
		return b.disposedError()
	}
	prev := State(b.state.Swap(int32(s)))
	if prev != s {
		b.logger.Debug("state %s -> %s", prev, s)
	}
	return nil
}

// On registers listener for the named notification.
func (b *Base) On(name event.Name, listener Listener) error {
	if b.IsDisposed() {
		return b.disposedError()
	}
	b.emitter.On(name, listener)
	return nil
}

// Emit calls the listeners for name synchronously on the caller's goroutine.
func (b *Base) Emit(name event.Name, evt Event) error {
	if b.IsDisposed() {
		return b.disposedError()
	}
	b.emitter.Emit(name, evt)
	return nil
}

// ListenerCount returns the number of listeners registered for name.
func (b *Base) ListenerCount(name event.Name) int {
	return b.emitter.Count(name)
}

// OnStateChanged schedules a stateChanged notification, then runs the
// pressed or released hook according to evt.
func (b *Base) OnStateChanged(evt Event) error {
	if err := b.schedule(StateChanged, evt); err != nil {
		return err
	}

	switch {
	case evt.IsPressed():
		return b.hooks.OnButtonPressed(evt)
	case evt.IsReleased():
		return b.hooks.OnButtonReleased(evt)
	}
	return nil
}

// OnButtonPressed schedules a buttonPressed notification and restarts the
// hold timer.
func (b *Base) OnButtonPressed(evt Event) error {
	if err := b.schedule(ButtonPressed, evt); err != nil {
		return err
	}
	b.startHoldTimer()
	return nil
}

// OnButtonReleased schedules a buttonReleased notification and stops the
// hold timer.
func (b *Base) OnButtonReleased(evt Event) error {
	if err := b.schedule(ButtonReleased, evt); err != nil {
		return err
	}
	b.stopHoldTimer()
	return nil
}

// OnButtonHold schedules a buttonHold notification.
func (b *Base) OnButtonHold(evt Event) error {
	return b.schedule(ButtonHold, evt)
}

// schedule queues delivery of name to the current listeners.
func (b *Base) schedule(name event.Name, evt Event) error {
	if b.IsDisposed() {
		return b.disposedError()
	}

	err := b.queue.EnqueueLabeled(name, func() {
		b.emitter.Emit(name, evt)
	})
	switch {
	case err == nil:
		return nil
	case err == dispatch.ErrNotRunning:
		// Lost a race with Dispose.
		return b.disposedError()
	default:
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
}

// Flush blocks until every notification scheduled so far has been
// delivered, or until ctx is done. It must not be called from a listener.
func (b *Base) Flush(ctx context.Context) error {
	if b.IsDisposed() {
		return b.disposedError()
	}
	if err := b.queue.Drain(ctx); err != nil {
		if err == dispatch.ErrNotRunning {
			return b.disposedError()
		}
		return err
	}
	return nil
}

// Stats returns notification delivery statistics.
func (b *Base) Stats() dispatch.Stats {
	return b.queue.Stats()
}

// Dispose removes all listeners, stops the hold timer, stops notification
// delivery and releases the component. Only the first call has an effect.
func (b *Base) Dispose() {
	b.disposeMu.Lock()
	defer b.disposeMu.Unlock()

	if b.disposed.Load() {
		return
	}
	b.disposed.Store(true)

	b.emitter.RemoveAll()
	b.stopHoldTimer()
	_ = b.queue.Close()
	b.comp.Dispose()

	b.logger.Debug("disposed")
}

// IsDisposed returns true once Dispose has been called.
func (b *Base) IsDisposed() bool {
	return b.disposed.Load()
}

// Logger returns the button's logger, scoped with its name and ID.
func (b *Base) Logger() *logging.Logger {
	return b.logger
}

func (b *Base) disposedError() error {
	return component.NewDisposedError(b.comp.Name())
}

func (b *Base) listenerPanic(label any, v any, stack []byte) {
	b.logger.WithField("event", label).Error("listener panic: %v\n%s", v, stack)
}

// ID returns the component ID.
func (b *Base) ID() string {
	return b.comp.ID()
}

// Name returns the component name.
func (b *Base) Name() string {
	return b.comp.Name()
}

// SetName sets the component name.
func (b *Base) SetName(name string) {
	b.comp.SetName(name)
}

// Tag returns the component tag.
func (b *Base) Tag() string {
	return b.comp.Tag()
}

// SetTag sets the component tag.
func (b *Base) SetTag(tag string) {
	b.comp.SetTag(tag)
}

// Properties returns the component's property bag in insertion order.
func (b *Base) Properties() []component.Property {
	return b.comp.Properties()
}

// HasProperty reports whether key is set.
func (b *Base) HasProperty(key string) bool {
	return b.comp.HasProperty(key)
}

// Property returns the value stored under key.
func (b *Base) Property(key string) (string, bool) {
	return b.comp.Property(key)
}

// SetProperty stores value under key.
func (b *Base) SetProperty(key, value string) error {
	return b.comp.SetProperty(key, value)
}
