package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrClosed is returned by Push once Close has been called.
var ErrClosed = errors.New("queue closed")

// Task is one unit of work: fetch a ticket, then pause for Delay.
type Task struct {
	TicketID string
	Delay    time.Duration
}

// Worker processes a single task. Its error is reported to the task callback
// and never stops the queue.
type Worker func(ctx context.Context, task Task) error

// Callback is invoked after a task and its delay have completed.
type Callback func(err error)

type item struct {
	task Task
	cb   Callback
}

// Queue runs tasks strictly one at a time in FIFO order.
type Queue struct {
	worker Worker
	logger *zap.Logger

	mu      sync.Mutex
	pending []item
	closed  bool
	started bool
	wake    chan struct{}

	drained chan struct{}
}

// New creates a queue that hands each task to worker.
func New(worker Worker, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		worker:  worker,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
}

// Push appends a task. cb may be nil.
func (q *Queue) Push(task Task, cb Callback) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.pending = append(q.pending, item{task: task, cb: cb})
	q.signal()
	return nil
}

// Close marks the end of input. The queue drains once every task pushed
// before Close has completed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.signal()
}

// Len reports the number of tasks not yet started.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drained is closed exactly once, after the last task callback has returned.
func (q *Queue) Drained() <-chan struct{} {
	return q.drained
}

// Start launches the single consumer. Calling it more than once has no effect.
// When ctx ends, tasks that have not started are completed with the context
// error and the queue still drains.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go q.run(ctx)
}

// Wait blocks until the queue drains or ctx ends.
func (q *Queue) Wait(ctx context.Context) error {
	select {
	case <-q.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.drained)

	for {
		it, ok, done := q.next()
		if done {
			return
		}
		if !ok {
			<-q.wake
			continue
		}
		q.process(ctx, it)
	}
}

// next pops the head of the queue. done is true once the queue is closed and empty.
func (q *Queue) next() (it item, ok bool, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return item{}, false, q.closed
	}
	it = q.pending[0]
	q.pending[0] = item{}
	q.pending = q.pending[1:]
	return it, true, false
}

func (q *Queue) process(ctx context.Context, it item) {
	var err error
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else {
		err = q.safeWork(ctx, it.task)
		if sleepErr := Sleep(ctx, it.task.Delay); sleepErr != nil && err == nil {
			err = sleepErr
		}
	}

	if it.cb != nil {
		it.cb(err)
	}
}

func (q *Queue) safeWork(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", zap.String("ticket_id", task.TicketID), zap.Any("panic", r))
			err = errors.New("task panicked")
		}
	}()
	return q.worker(ctx, task)
}

// signal wakes the consumer without blocking. Callers hold q.mu.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
