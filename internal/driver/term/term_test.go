package term

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/buttonkit/internal/button"
	"github.com/dshills/buttonkit/internal/component"
	"github.com/dshills/buttonkit/internal/logging"
)

func newTestButton(t *testing.T, opts ...button.Option) (*Button, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	opts = append([]button.Option{
		button.WithName("kbd"),
		button.WithHoldInterval(time.Hour),
		button.WithLogger(logging.Null()),
	}, opts...)
	return New(screen, opts...), screen
}

func startRun(t *testing.T, b *Button, ctx context.Context) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()
	select {
	case <-b.Ready():
	case err := <-errc:
		t.Fatalf("Run() returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not initialize the screen")
	}
	return errc
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func firstRow(screen tcell.SimulationScreen) string {
	width, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := screen.GetContent(x, 0) //nolint:staticcheck // GetContent is the correct API
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestButton_SpaceToggles(t *testing.T) {
	b, screen := newTestButton(t)
	defer b.Close()

	pressed := make(chan button.Event, 4)
	released := make(chan button.Event, 4)
	b.On(button.ButtonPressed, func(e button.Event) { pressed <- e })
	b.On(button.ButtonReleased, func(e button.Event) { released <- e })

	errc := startRun(t, b, context.Background())

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	select {
	case evt := <-pressed:
		if evt.Button() != button.Button(b) {
			t.Errorf("event references %T, want the terminal button", evt.Button())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no pressed notification")
	}
	if !b.IsPressed() {
		t.Error("button should be pressed after the first space")
	}

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("no released notification")
	}

	eventually(t, "counts", func() bool {
		return b.Count(button.StateChanged) == 2 &&
			b.Count(button.ButtonPressed) == 1 &&
			b.Count(button.ButtonReleased) == 1
	})

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	if err := waitRun(t, errc); err != nil {
		t.Errorf("Run() = %v, want nil after q", err)
	}
}

func TestButton_StatusLineDrawn(t *testing.T) {
	b, screen := newTestButton(t)
	defer b.Close()

	errc := startRun(t, b, context.Background())

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	eventually(t, "status line", func() bool {
		return strings.HasPrefix(firstRow(screen), "kbd [Pressed]  changed:1 pressed:1")
	})

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	waitRun(t, errc)
}

func TestButton_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"Q", tcell.KeyRune, 'Q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, screen := newTestButton(t)
			defer b.Close()

			errc := startRun(t, b, context.Background())
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			if err := waitRun(t, errc); err != nil {
				t.Errorf("Run() = %v, want nil", err)
			}
		})
	}
}

func TestButton_OtherKeysIgnored(t *testing.T) {
	b, screen := newTestButton(t)
	defer b.Close()

	errc := startRun(t, b, context.Background())
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitRun(t, errc)

	if !b.IsReleased() {
		t.Error("non-space keys should not change state")
	}
}

func TestButton_HoldWhileToggledDown(t *testing.T) {
	b, screen := newTestButton(t, button.WithHoldInterval(10*time.Millisecond))
	defer b.Close()

	errc := startRun(t, b, context.Background())
	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)

	eventually(t, "hold notifications", func() bool {
		return b.Count(button.ButtonHold) >= 2
	})

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitRun(t, errc)
}

func TestButton_ContextCancel(t *testing.T) {
	b, _ := newTestButton(t)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := startRun(t, b, ctx)
	cancel()

	if err := waitRun(t, errc); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestButton_CloseEndsRun(t *testing.T) {
	b, _ := newTestButton(t)

	errc := startRun(t, b, context.Background())
	b.Close()

	if err := waitRun(t, errc); err != nil {
		t.Errorf("Run() = %v, want nil after Close", err)
	}
	if err := b.Run(context.Background()); !errors.Is(err, component.ErrDisposed) {
		t.Errorf("Run() after Close = %v, want ErrDisposed", err)
	}
}
