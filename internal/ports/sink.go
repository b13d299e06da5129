package ports

import "github.com/aeroteameindhoven/kestrel/internal/domain"

// Sink receives batches of packets drained from a worker.
type Sink interface {
	WriteBatch(packets []domain.Packet) error
	Name() string
}
