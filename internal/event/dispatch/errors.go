package dispatch

import "errors"

// Sentinel errors for the dispatch package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running queue.
	ErrAlreadyRunning = errors.New("dispatch queue is already running")

	// ErrNotRunning is returned when operations are attempted on a stopped queue.
	ErrNotRunning = errors.New("dispatch queue is not running")

	// ErrQueueFull is returned when the queue is at its limit and cannot accept more tasks.
	ErrQueueFull = errors.New("task queue is full")
)
