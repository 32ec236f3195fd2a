package event

import "sync/atomic"

// Queue is a bounded multi-producer, single-consumer buffer. Producers never
// block: when the buffer is full the event is dropped and counted. The sole
// consumer drains it once per frame.
type Queue[T any] struct {
	ch      chan T
	dropped atomic.Uint64
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push enqueues ev and reports whether it was accepted.
func (q *Queue[T]) Push(ev T) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain calls fn for everything queued at the time of the call, in FIFO
// order, and returns how many items it consumed.
func (q *Queue[T]) Drain(fn func(T)) int {
	n := len(q.ch)
	for i := 0; i < n; i++ {
		select {
		case ev := <-q.ch:
			fn(ev)
		default:
			return i
		}
	}
	return n
}

// Len is the number of queued items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap is the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }

// Dropped is the number of events rejected because the queue was full.
func (q *Queue[T]) Dropped() uint64 { return q.dropped.Load() }
