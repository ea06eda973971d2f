package button

import (
	"sync/atomic"
	"testing"
	"time"
)

// countingButton overrides the press and hold hooks of an embedded Base.
type countingButton struct {
	*Base
	presses atomic.Int32
	holds   atomic.Int32
}

func newCountingButton(opts ...Option) *countingButton {
	c := &countingButton{Base: NewBase(opts...)}
	c.BindHooks(c)
	return c
}

func (c *countingButton) OnButtonPressed(evt Event) error {
	c.presses.Add(1)
	return c.Base.OnButtonPressed(evt)
}

func (c *countingButton) OnButtonHold(evt Event) error {
	c.holds.Add(1)
	return c.Base.OnButtonHold(evt)
}

func TestBindHooks_CascadeReachesOverride(t *testing.T) {
	c := newCountingButton(WithHoldInterval(10*time.Millisecond), WithLogger(nullLogger()))
	defer c.Dispose()

	c.SetState(Pressed)
	if err := c.OnStateChanged(NewEvent(c)); err != nil {
		t.Fatalf("OnStateChanged failed: %v", err)
	}
	if got := c.presses.Load(); got != 1 {
		t.Errorf("override called %d times, want 1", got)
	}
	if !c.HoldTimerActive() {
		t.Error("base behaviour must still run through the override")
	}
}

func TestBindHooks_HoldTimerReachesOverride(t *testing.T) {
	c := newCountingButton(WithHoldInterval(10*time.Millisecond), WithLogger(nullLogger()))
	defer c.Dispose()

	holds := make(chan Event, 16)
	c.On(ButtonHold, func(evt Event) { holds <- evt })

	c.SetState(Pressed)
	c.OnStateChanged(NewEvent(c))

	select {
	case evt := <-holds:
		if _, ok := evt.Button().(*countingButton); !ok {
			t.Errorf("hold event references %T, want *countingButton", evt.Button())
		}
	case <-time.After(time.Second):
		t.Fatal("no hold notification")
	}
	if c.holds.Load() == 0 {
		t.Error("hold override was not called")
	}
}

func TestBindHooks_Nil(t *testing.T) {
	b := NewBase(WithLogger(nullLogger()))
	defer b.Dispose()

	b.BindHooks(nil)
	if b.Self() != Button(b) {
		t.Error("BindHooks(nil) should bind the base itself")
	}
}

func TestUnimplemented(t *testing.T) {
	var b Button = Unimplemented{}

	if b.IsPressed() || b.IsReleased() {
		t.Error("stub should be neither pressed nor released")
	}
	if b.State() != Unknown || !b.IsState(Unknown) {
		t.Error("stub should report Unknown")
	}
	evt := NewEvent(b)
	for name, hook := range map[string]func(Event) error{
		"OnStateChanged":   b.OnStateChanged,
		"OnButtonPressed":  b.OnButtonPressed,
		"OnButtonReleased": b.OnButtonReleased,
		"OnButtonHold":     b.OnButtonHold,
	} {
		if err := hook(evt); err != nil {
			t.Errorf("%s() = %v, want nil", name, err)
		}
	}
}
