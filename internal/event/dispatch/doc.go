// Package dispatch provides the deferred task queue used to deliver device
// notifications off the caller's stack.
//
// # Queue
//
// A Queue runs tasks on a single worker goroutine in the order they were
// enqueued. Enqueue never blocks: the caller schedules work and returns, and
// the worker picks it up once it is free. This gives "next tick" semantics
// with FIFO ordering per queue.
//
// A listener that runs long delays every task scheduled after it on the same
// queue. That is the price of strict ordering.
//
// # Panic Recovery
//
// Tasks execute through an Executor, which recovers panics so that a
// misbehaving listener cannot take down the worker. Panics are reported via a
// configurable PanicHandler callback.
//
// # Usage
//
//	q := dispatch.NewQueue(
//	    dispatch.WithPanicHandler(func(task any, v any, stack []byte) {
//	        log.Printf("panic in listener: %v\n%s", v, stack)
//	    }),
//	)
//	if err := q.Start(); err != nil {
//	    return err
//	}
//	defer q.Stop(context.Background())
//
//	_ = q.Enqueue(func() { fmt.Println("later") })
//
// # Result Handling
//
// The Result type captures the outcome of a task execution including
// duration and panic information if applicable.
package dispatch
