package button

import (
	"fmt"
	"strings"
)

// State is the logical state of a button.
type State int32

const (
	// Unknown means the state has not been determined.
	Unknown State = iota
	// Pressed means the button is held down.
	Pressed
	// Released means the button is up.
	Released
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Pressed:
		return "Pressed"
	case Released:
		return "Released"
	default:
		return "**INVALID**"
	}
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s == Unknown || s == Pressed || s == Released
}

// MarshalText encodes the state as its lower-case name.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid button state %d", int32(s))
	}
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText decodes a state name. Matching is case-insensitive.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseState parses a state name. Matching is case-insensitive.
func ParseState(name string) (State, error) {
	switch strings.ToLower(name) {
	case "unknown":
		return Unknown, nil
	case "pressed":
		return Pressed, nil
	case "released":
		return Released, nil
	}
	return Unknown, fmt.Errorf("unknown button state %q", name)
}
