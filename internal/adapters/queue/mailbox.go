package queue

import (
	"sync"

	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// Mailbox is an in-memory FIFO between one producer and one consumer. With
// capacity 0 it is unbounded; otherwise Push rejects once it is full.
type Mailbox[T any] struct {
	mu    sync.Mutex
	data  []T
	cap   int
	ready chan struct{}
}

func NewMailbox[T any](capacity int) *Mailbox[T] {
	return &Mailbox[T]{
		cap:   capacity,
		ready: make(chan struct{}, 1),
	}
}

func (q *Mailbox[T]) Push(v T) bool {
	q.mu.Lock()
	if q.cap > 0 && len(q.data) >= q.cap {
		q.mu.Unlock()
		return false
	}
	q.data = append(q.data, v)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// DrainAll removes and returns everything queued, oldest first. It never
// blocks and returns nil when empty. The Ready signal for the drained items
// is consumed with them.
func (q *Mailbox[T]) DrainAll() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clearReady()
	if len(q.data) == 0 {
		return nil
	}
	out := q.data
	q.data = nil
	return out
}

func (q *Mailbox[T]) clearReady() {
	select {
	case <-q.ready:
	default:
	}
}

// TryPop removes the oldest item.
func (q *Mailbox[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.data) == 0 {
		return zero, false
	}
	v := q.data[0]
	q.data[0] = zero
	q.data = q.data[1:]
	if len(q.data) == 0 {
		q.clearReady()
	}
	return v, true
}

func (q *Mailbox[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

// Ready receives a value after one or more Pushes. A receive does not imply
// the mailbox is still non-empty.
func (q *Mailbox[T]) Ready() <-chan struct{} {
	return q.ready
}

var _ ports.Mailbox[int] = (*Mailbox[int])(nil)
