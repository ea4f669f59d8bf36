// Package dispatch provides the serialized context every state mutation runs
// on. Adapter callbacks, probe results and user actions are posted as funcs
// and executed one at a time, in submission order, by a single consumer.
package dispatch

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Do when the queue closes before fn runs.
var ErrClosed = errors.New("dispatch: queue closed")

// Dispatcher runs fn on the serialized context.
type Dispatcher interface {
	Dispatch(fn func())
}

// Inline runs every func immediately on the caller's goroutine. Callers are
// responsible for serializing their own calls.
type Inline struct{}

// Dispatch runs fn now.
func (Inline) Dispatch(fn func()) { fn() }

// DefaultQueueSize is used when NewQueue is given a non-positive size.
const DefaultQueueSize = 64

// Queue is a single-consumer FIFO of funcs. Dispatch is safe for concurrent
// use; Run must be called by exactly one goroutine.
type Queue struct {
	ch   chan func()
	done chan struct{}
	once sync.Once
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		ch:   make(chan func(), size),
		done: make(chan struct{}),
	}
}

// Dispatch enqueues fn. It blocks while the buffer is full and drops fn once
// the queue is closed.
func (q *Queue) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.ch <- fn:
	case <-q.done:
	}
}

// Run executes queued funcs until ctx is canceled or Close is called.
// Funcs still buffered at that point are discarded.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return nil
		case fn := <-q.ch:
			fn()
		}
	}
}

// Close stops Run and makes further Dispatch calls no-ops. Safe to call more
// than once.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

// Do dispatches fn and waits until it has run, ctx is canceled or the queue
// is closed. It must not be called from inside a queued func.
func Do(ctx context.Context, d Dispatcher, fn func()) error {
	ran := make(chan struct{})
	d.Dispatch(func() {
		fn()
		close(ran)
	})
	var closed <-chan struct{}
	if q, ok := d.(*Queue); ok {
		closed = q.done
	}
	select {
	case <-ran:
		return nil
	case <-closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
