package button

import (
	"time"

	"github.com/google/uuid"
)

// Event correlates a notification with the button that raised it.
//
// Queries are answered from the button's current state, not from a
// snapshot. An Event without a button answers false to every query.
// Events are values and are never modified after creation.
type Event struct {
	button    Button
	id        string
	timestamp time.Time
	source    string
}

// named is implemented by buttons that carry a component name.
type named interface {
	Name() string
}

// NewEvent creates an event for b. b may be nil.
func NewEvent(b Button) Event {
	evt := Event{
		button:    b,
		id:        uuid.New().String(),
		timestamp: time.Now(),
	}
	if n, ok := b.(named); ok {
		evt.source = n.Name()
	}
	return evt
}

// Button returns the button that raised the event.
func (e Event) Button() Button {
	return e.button
}

// ID returns the unique identifier of this event instance.
func (e Event) ID() string {
	return e.id
}

// Timestamp returns when the event was created.
func (e Event) Timestamp() time.Time {
	return e.timestamp
}

// Source returns the name of the raising button, if it has one.
func (e Event) Source() string {
	return e.source
}

// IsPressed reports whether the button is currently pressed.
func (e Event) IsPressed() bool {
	if e.button == nil {
		return false
	}
	return e.button.IsPressed()
}

// IsReleased reports whether the button is currently released.
func (e Event) IsReleased() bool {
	if e.button == nil {
		return false
	}
	return e.button.IsReleased()
}

// IsState reports whether the button is currently in state s.
func (e Event) IsState(s State) bool {
	if e.button == nil {
		return false
	}
	return e.button.IsState(s)
}
