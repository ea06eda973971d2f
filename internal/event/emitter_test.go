package event

import (
	"testing"
)

func TestEmitter_EmitCallsListenersInOrder(t *testing.T) {
	e := NewEmitter[int]()

	var calls []string
	e.On("tick", func(v int) { calls = append(calls, "first") })
	e.On("tick", func(v int) { calls = append(calls, "second") })
	e.On("other", func(v int) { calls = append(calls, "other") })

	if n := e.Emit("tick", 1); n != 2 {
		t.Errorf("Emit returned %d, want 2", n)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("unexpected call order: %v", calls)
	}
}

func TestEmitter_PayloadDelivered(t *testing.T) {
	e := NewEmitter[string]()
	var got string
	e.On("msg", func(v string) { got = v })
	e.Emit("msg", "hello")
	if got != "hello" {
		t.Errorf("payload = %q, want hello", got)
	}
}

func TestEmitter_UnknownNames(t *testing.T) {
	e := NewEmitter[int]()
	e.On("nobodyEmitsThis", func(int) { t.Error("listener must not be called") })

	if n := e.Emit("nobodyListens", 1); n != 0 {
		t.Errorf("Emit with no listeners returned %d", n)
	}
	if e.Count("nobodyEmitsThis") != 1 {
		t.Error("listener for an unknown name should still be registered")
	}
}

func TestEmitter_NilListenerIgnored(t *testing.T) {
	e := NewEmitter[int]()
	e.On("x", nil)
	if e.Count("x") != 0 {
		t.Error("nil listener must not be registered")
	}
}

func TestEmitter_RemoveAll(t *testing.T) {
	e := NewEmitter[int]()
	e.On("a", func(int) {})
	e.On("b", func(int) {})
	if e.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", e.Total())
	}

	e.RemoveAll()
	if e.Total() != 0 {
		t.Errorf("Total() after RemoveAll = %d", e.Total())
	}
	if n := e.Emit("a", 0); n != 0 {
		t.Errorf("Emit after RemoveAll called %d listeners", n)
	}
}

func TestEmitter_RegisterDuringEmit(t *testing.T) {
	e := NewEmitter[int]()
	e.On("x", func(int) {
		e.On("x", func(int) {})
	})

	// Must not deadlock; the listener added during emission runs next time.
	if n := e.Emit("x", 0); n != 1 {
		t.Errorf("first Emit called %d listeners, want 1", n)
	}
	if n := e.Emit("x", 0); n != 2 {
		t.Errorf("second Emit called %d listeners, want 2", n)
	}
}
