package kestrel

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("kestrel: channel sink closed")

// PacketBatchSink is invoked with ordered batches drained from the worker.
type PacketBatchSink func([]Packet) error

// NewCallbackSink adapts a PacketBatchSink into a Sink so callers can plug
// plain functions into Runtime.Stream.
func NewCallbackSink(name string, fn PacketBatchSink) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes batches via a channel; it returns the sink, the read-only channel,
// and a close function that the caller should invoke during shutdown. The
// channel itself is never closed; writes after close fail instead.
func NewChannelSink(name string, buffer int) (Sink, <-chan []Packet, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []Packet, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   PacketBatchSink
}

func (s *callbackSink) WriteBatch(packets []Packet) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(packets) == 0 {
		return nil
	}
	return s.fn(slices.Clone(packets))
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan []Packet
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) WriteBatch(packets []Packet) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	if len(packets) == 0 {
		return nil
	}

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- slices.Clone(packets):
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
	})
}
