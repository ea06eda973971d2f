package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Queue executes tasks on a single worker goroutine in FIFO order.
// Enqueue never blocks the caller.
type Queue struct {
	// Configuration
	limit        int
	panicHandler PanicHandler

	// State
	mu       sync.Mutex
	pending  []queuedTask
	running  bool
	draining bool
	wake     chan struct{}
	quit     chan struct{}
	done     chan struct{}

	// Stats
	enqueued    atomic.Uint64
	processed   atomic.Uint64
	succeeded   atomic.Uint64
	panicked    atomic.Uint64
	dropped     atomic.Uint64
	discarded   atomic.Uint64
	totalTimeNs atomic.Int64
}

type queuedTask struct {
	label any
	task  Task
}

// Option configures a Queue.
type Option func(*Queue)

// WithLimit caps the number of pending tasks. Zero means unbounded.
func WithLimit(limit int) Option {
	return func(q *Queue) {
		if limit >= 0 {
			q.limit = limit
		}
	}
}

// WithPanicHandler sets the panic handler for task execution.
func WithPanicHandler(h PanicHandler) Option {
	return func(q *Queue) {
		if h != nil {
			q.panicHandler = h
		}
	}
}

// NewQueue creates a new, stopped queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start starts the worker.
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrAlreadyRunning
	}

	q.pending = nil
	q.draining = false
	q.wake = make(chan struct{}, 1)
	q.quit = make(chan struct{})
	q.done = make(chan struct{})
	q.running = true

	go q.worker(q.wake, q.quit, q.done)
	return nil
}

// Stop stops accepting tasks and waits for the already queued ones to run
// or until the context is cancelled.
// Stop must not be called from inside a task of the same queue.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return ErrNotRunning
	}
	q.running = false
	q.draining = true
	done := q.done
	q.signal()
	q.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the queue without waiting. Pending tasks are discarded; a task
// that is already executing runs to completion.
// Close is safe to call from inside a task.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running && !q.draining {
		return ErrNotRunning
	}
	q.running = false
	q.draining = false
	q.discarded.Add(uint64(len(q.pending)))
	q.pending = nil
	select {
	case <-q.quit:
	default:
		close(q.quit)
	}
	return nil
}

// Enqueue schedules task for execution.
func (q *Queue) Enqueue(task Task) error {
	return q.EnqueueLabeled(nil, task)
}

// EnqueueLabeled schedules task with a label that identifies it to the
// panic handler.
func (q *Queue) EnqueueLabeled(label any, task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return ErrNotRunning
	}
	if q.limit > 0 && len(q.pending) >= q.limit {
		q.dropped.Add(1)
		return ErrQueueFull
	}

	q.pending = append(q.pending, queuedTask{label: label, task: task})
	q.enqueued.Add(1)
	q.signal()
	return nil
}

// Drain blocks until every task enqueued before the call has run, or until
// the context is cancelled.
// Drain must not be called from inside a task of the same queue.
func (q *Queue) Drain(ctx context.Context) error {
	reached := make(chan struct{})
	if err := q.Enqueue(func() { close(reached) }); err != nil {
		return err
	}

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signal wakes the worker. Callers hold q.mu.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// worker processes tasks until the queue is closed, or until it is stopped
// and empty.
func (q *Queue) worker(wake <-chan struct{}, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	executor := NewExecutor(WithExecutorPanicHandler(q.panicHandler))

	for {
		select {
		case <-quit:
			return
		default:
		}

		q.mu.Lock()
		if len(q.pending) == 0 {
			if !q.running {
				q.draining = false
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()

			select {
			case <-wake:
			case <-quit:
				return
			}
			continue
		}
		next := q.pending[0]
		q.pending[0] = queuedTask{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.execute(executor, next)
	}
}

func (q *Queue) execute(executor *Executor, t queuedTask) {
	q.processed.Add(1)
	result := executor.Execute(t.label, t.task)
	q.totalTimeNs.Add(result.Duration.Nanoseconds())

	if result.Panicked {
		q.panicked.Add(1)
		return
	}
	q.succeeded.Add(1)
}

// IsRunning returns true if the queue accepts tasks.
func (q *Queue) IsRunning() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Depth returns the number of tasks waiting to run.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns queue statistics.
func (q *Queue) Stats() Stats {
	processed := q.processed.Load()
	totalNs := q.totalTimeNs.Load()

	var avgNs int64
	if processed > 0 {
		avgNs = totalNs / int64(processed)
	}

	return Stats{
		Enqueued:      q.enqueued.Load(),
		Processed:     processed,
		Succeeded:     q.succeeded.Load(),
		Panicked:      q.panicked.Load(),
		Dropped:       q.dropped.Load(),
		Discarded:     q.discarded.Load(),
		Depth:         q.Depth(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// Stats contains statistics for a queue.
type Stats struct {
	// Enqueued is the total number of tasks accepted.
	Enqueued uint64

	// Processed is the number of tasks that have been executed.
	Processed uint64

	// Succeeded is the number of tasks that completed normally.
	Succeeded uint64

	// Panicked is the number of tasks that panicked.
	Panicked uint64

	// Dropped is the number of tasks rejected because the queue was at its limit.
	Dropped uint64

	// Discarded is the number of pending tasks thrown away by Close.
	Discarded uint64

	// Depth is the current number of tasks waiting.
	Depth int

	// TotalDuration is the cumulative time spent executing tasks.
	TotalDuration time.Duration

	// AvgDuration is the average task execution time.
	AvgDuration time.Duration
}
