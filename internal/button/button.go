package button

import (
	"github.com/dshills/buttonkit/internal/event"
)

// Names of the notifications every button emits.
const (
	// StateChanged is emitted for every processed state transition.
	StateChanged event.Name = "stateChanged"

	// ButtonPressed is emitted when a transition to Pressed is processed.
	ButtonPressed event.Name = "buttonPressed"

	// ButtonReleased is emitted when a transition to Released is processed.
	ButtonReleased event.Name = "buttonReleased"

	// ButtonHold is emitted once per hold interval while the button stays pressed.
	ButtonHold event.Name = "buttonHold"
)

// Names returns the notification names in a fixed order.
func Names() []event.Name {
	return []event.Name{StateChanged, ButtonPressed, ButtonReleased, ButtonHold}
}

// Listener receives button notifications.
type Listener = event.Listener[Event]

// Button is the contract every concrete button satisfies.
//
// The On* hooks are called by drivers that observe the physical device.
// Each hook schedules delivery of the matching notification and performs
// the bookkeeping attached to it. A hook fails only when the button has
// been disposed.
type Button interface {
	IsPressed() bool
	IsReleased() bool
	State() State
	IsState(s State) bool

	OnStateChanged(evt Event) error
	OnButtonPressed(evt Event) error
	OnButtonReleased(evt Event) error
	OnButtonHold(evt Event) error
}

// Unimplemented is a Button that reports Unknown and ignores every hook.
// Embed it to build stubs that only override what they need.
type Unimplemented struct{}

func (Unimplemented) IsPressed() bool                  { return false }
func (Unimplemented) IsReleased() bool                 { return false }
func (Unimplemented) State() State                     { return Unknown }
func (Unimplemented) IsState(s State) bool             { return s == Unknown }
func (Unimplemented) OnStateChanged(evt Event) error   { return nil }
func (Unimplemented) OnButtonPressed(evt Event) error  { return nil }
func (Unimplemented) OnButtonReleased(evt Event) error { return nil }
func (Unimplemented) OnButtonHold(evt Event) error     { return nil }

var _ Button = Unimplemented{}
