package ports

// Mailbox is a single-producer single-consumer FIFO that never blocks the
// producer. Ready is signalled after every Push.
type Mailbox[T any] interface {
	Push(v T) bool
	DrainAll() []T
	Len() int
	Ready() <-chan struct{}
}
