// Package button models a physical push button as a state machine that
// raises press, release and hold notifications.
//
// # States
//
// A button is Unknown, Pressed or Released. A new Base starts Released.
//
// # Notifications
//
// Four notifications are emitted, identified by stable names:
//
//	stateChanged    - every processed transition
//	buttonPressed   - a transition to Pressed
//	buttonReleased  - a transition to Released
//	buttonHold      - once per hold interval while pressed
//
// A driver that sees the device change calls SetState followed by
// OnStateChanged(NewEvent(button)). OnStateChanged schedules stateChanged and
// then calls OnButtonPressed or OnButtonReleased, which schedule their own
// notification and start or stop the hold timer.
//
// Notifications are delivered after the hook returns, on a worker owned by
// the button, in scheduling order:
//
//	b := button.NewBase(button.WithName("doorbell"))
//	defer b.Dispose()
//
//	b.On(button.ButtonPressed, func(evt button.Event) {
//	    fmt.Println("ding")
//	})
//
//	b.SetState(button.Pressed)
//	b.OnStateChanged(button.NewEvent(b))
//
// # Hold Timer
//
// Every processed press restarts a periodic timer (DefaultHoldInterval
// unless configured). On each tick the timer checks the button's current
// state and raises OnButtonHold only while it is still pressed, so a release
// between two ticks silences the timer even before it is stopped. Releases
// and Dispose stop the timer.
//
// # Embedding
//
// Concrete buttons embed *Base and may override hooks. They must call
// BindHooks with themselves so the cascade from OnStateChanged and the hold
// timer reach the overrides.
//
// # Disposal
//
// Dispose is idempotent. Afterwards the state queries keep answering with
// the last state, while SetState, On, Emit and every hook fail with an error
// matching component.ErrDisposed.
package button
