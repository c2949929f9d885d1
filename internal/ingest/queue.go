package ingest

import (
	"sync"
	"sync/atomic"

	"github.com/ber2minsin/intime/internal/logging"
	"github.com/ber2minsin/intime/pkg/window"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the notification buffer size used when callers pass
// a non-positive capacity.
const DefaultCapacity = 1024

// Queue carries focus notifications from adapter goroutines into the
// processing loop. The producer side never blocks and never panics:
// once the consumer is detached, or when the buffer is full, publishes
// are dropped and counted. Buffered notifications keep FIFO order.
type Queue struct {
	ch      chan window.Notification
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
	log     zerolog.Logger
}

// New creates a queue with the given buffer capacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		ch:   make(chan window.Notification, capacity),
		done: make(chan struct{}),
		log:  *logging.WithComponent("ingest"),
	}
}

// Publish hands a notification to the consumer. Safe to call from any
// goroutine, including after Close.
func (q *Queue) Publish(n window.Notification) {
	select {
	case <-q.done:
		return
	default:
	}

	select {
	case q.ch <- n:
	default:
		q.dropped.Add(1)
		q.log.Warn().
			Str("kind", n.Kind.String()).
			Str("app", n.AppName).
			Msg("notification buffer full, dropping")
	}
}

// Events exposes the consumer end of the queue.
func (q *Queue) Events() <-chan window.Notification {
	return q.ch
}

// Close detaches the consumer. Later publishes are silently dropped; the
// underlying channel is never closed so in-flight producers cannot panic.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
	})
}

// Dropped reports how many notifications were discarded because the
// buffer was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
