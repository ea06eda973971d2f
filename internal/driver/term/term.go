// Package term drives a button from the keyboard of a terminal.
//
// Terminals report key presses but not key releases, so the space bar
// toggles between pressed and released. While toggled down the hold timer
// runs as it would for a physical switch. A status line shows the current
// state and how many notifications of each kind were delivered.
package term

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buttonkit/internal/button"
	"github.com/dshills/buttonkit/internal/component"
	"github.com/dshills/buttonkit/internal/event"
)

// ErrAlreadyRunning is returned when Run is called while another Run is active.
var ErrAlreadyRunning = errors.New("terminal button is already running")

// Button is a button toggled with the space bar.
type Button struct {
	*button.Base

	screen tcell.Screen

	mu      sync.Mutex
	counts  map[event.Name]int
	running bool

	ready     chan struct{}
	readyOnce sync.Once
}

// Open creates a button on the process terminal.
func Open(opts ...button.Option) (*Button, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}
	return New(screen, opts...), nil
}

// New creates a button drawing on screen. Run initializes the screen.
func New(screen tcell.Screen, opts ...button.Option) *Button {
	b := &Button{
		Base:   button.NewBase(opts...),
		screen: screen,
		counts: make(map[event.Name]int),
		ready:  make(chan struct{}),
	}
	b.BindHooks(b)
	for _, name := range button.Names() {
		name := name
		b.On(name, func(button.Event) { b.count(name) })
	}
	return b
}

// Ready is closed once Run has initialized the screen.
func (b *Button) Ready() <-chan struct{} {
	return b.ready
}

// Count returns how many notifications named name were delivered.
func (b *Button) Count(name event.Name) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[name]
}

func (b *Button) count(name event.Name) {
	b.mu.Lock()
	b.counts[name]++
	b.mu.Unlock()
	// Redraw on the Run goroutine.
	_ = b.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Run initializes the screen and handles keys until q, Esc or Ctrl-C is
// pressed, ctx is cancelled or the button is disposed. The screen is
// restored on return.
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

	if err := b.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer b.screen.Fini()
	b.readyOnce.Do(func() { close(b.ready) })

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = b.screen.PostEvent(tcell.NewEventInterrupt(ctx))
		case <-stop:
		}
	}()

	b.draw()
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch e := ev.(type) {
		case *tcell.EventKey:
			if quitKey(e) {
				return nil
			}
			if e.Key() == tcell.KeyRune && e.Rune() == ' ' {
				if err := b.toggle(); err != nil {
					if b.IsDisposed() {
						return nil
					}
					b.Logger().WithError(err).Warn("toggle failed")
				}
			}
		case *tcell.EventResize:
			b.screen.Sync()
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		if b.IsDisposed() {
			return nil
		}
		b.draw()
	}
}

func quitKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return e.Rune() == 'q' || e.Rune() == 'Q'
	}
	return false
}

func (b *Button) toggle() error {
	next := button.Pressed
	if b.IsPressed() {
		next = button.Released
	}
	if err := b.SetState(next); err != nil {
		return err
	}
	return b.Self().OnStateChanged(button.NewEvent(b.Self()))
}

// StatusLine returns the text shown on the first row.
func (b *Button) StatusLine() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("%s [%s]  changed:%d pressed:%d released:%d hold:%d  (space toggles, q quits)",
		b.Name(), b.State(),
		b.counts[button.StateChanged], b.counts[button.ButtonPressed],
		b.counts[button.ButtonReleased], b.counts[button.ButtonHold])
}

func (b *Button) draw() {
	style := tcell.StyleDefault
	if b.IsPressed() {
		style = style.Reverse(true)
	}

	b.screen.Clear()
	width, _ := b.screen.Size()
	x := 0
	for _, r := range b.StatusLine() {
		if x >= width {
			break
		}
		b.screen.SetContent(x, 0, r, nil, style)
		x++
	}
	b.screen.Show()
}

// Close disposes the button and wakes Run so it can restore the terminal.
func (b *Button) Close() {
	b.Dispose()
	_ = b.screen.PostEvent(tcell.NewEventInterrupt(nil))
}
