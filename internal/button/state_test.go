package button

import (
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{Unknown, "Unknown"},
		{Pressed, "Pressed"},
		{Released, "Released"},
		{State(42), "**INVALID**"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, expected %q", tt.state, got, tt.expected)
		}
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		input   string
		want    State
		wantErr bool
	}{
		{"pressed", Pressed, false},
		{"Released", Released, false},
		{"UNKNOWN", Unknown, false},
		{"held", Unknown, true},
		{"", Unknown, true},
	}

	for _, tt := range tests {
		got, err := ParseState(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseState(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseState(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, s := range []State{Unknown, Pressed, Released} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) failed: %v", s, err)
		}
		var back State
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
		}
		if back != s {
			t.Errorf("round trip of %v gave %v", s, back)
		}
	}

	if _, err := State(9).MarshalText(); err == nil {
		t.Error("expected an error marshaling an invalid state")
	}
}

func TestState_Valid(t *testing.T) {
	if !Pressed.Valid() || !Released.Valid() || !Unknown.Valid() {
		t.Error("defined states must be valid")
	}
	if State(-1).Valid() || State(3).Valid() {
		t.Error("undefined states must not be valid")
	}
}
