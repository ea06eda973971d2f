// Package event provides the notification primitives used by buttonkit.
//
// An Emitter keeps listeners keyed by Name and invokes them in registration
// order. It does not choose a goroutine: callers decide where Emit runs. The
// button package emits from a per-button dispatch.Queue so that listeners
// never run on the goroutine that changed the state.
//
//	em := event.NewEmitter[string]()
//	em.On("greeting", func(s string) { fmt.Println(s) })
//	em.Emit("greeting", "hello")
//
// # Subpackages
//
//   - dispatch: single-worker FIFO task queue with panic recovery
package event
