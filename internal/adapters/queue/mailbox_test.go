package queue

import (
	"sync"
	"testing"
	"time"
)

func TestMailboxDrainOrder(t *testing.T) {
	q := NewMailbox[string](0)

	if !q.Push("s1") || !q.Push("s2") {
		t.Fatalf("expected successful push")
	}

	batch := q.DrainAll()
	if len(batch) != 2 || batch[0] != "s1" || batch[1] != "s2" {
		t.Fatalf("unexpected batch: %+v", batch)
	}

	if rest := q.DrainAll(); rest != nil {
		t.Fatalf("second drain should be empty, got %+v", rest)
	}

	q.Push("s3")
	if again := q.DrainAll(); len(again) != 1 || again[0] != "s3" {
		t.Fatalf("drain should be restartable, got %+v", again)
	}
}

func TestMailboxCapacity(t *testing.T) {
	q := NewMailbox[int](2)

	if !q.Push(1) || !q.Push(2) {
		t.Fatalf("expected push within capacity")
	}
	if q.Push(3) {
		t.Fatalf("push should fail when capacity exceeded")
	}

	if v, ok := q.TryPop(); !ok || v != 1 {
		t.Fatalf("expected to pop 1, got %d %v", v, ok)
	}
	if !q.Push(4) {
		t.Fatalf("expected push to succeed after pop")
	}
	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}
}

func TestMailboxReadySignal(t *testing.T) {
	q := NewMailbox[int](0)

	select {
	case <-q.Ready():
		t.Fatalf("ready must not fire before a push")
	default:
	}

	q.Push(1)
	q.Push(2)
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatalf("expected ready signal")
	}
	select {
	case <-q.Ready():
		t.Fatalf("coalesced pushes should signal once")
	default:
	}
}

func TestMailboxConcurrentProducer(t *testing.T) {
	q := NewMailbox[int](0)
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(i)
		}
	}()

	var got []int
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case <-q.Ready():
			got = append(got, q.DrainAll()...)
		case <-deadline:
			t.Fatalf("timed out with %d items", len(got))
		}
	}
	wg.Wait()

	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: %d", i, v)
		}
	}
}

func TestMailboxDrainConsumesReady(t *testing.T) {
	q := NewMailbox[int](0)

	q.Push(1)
	q.Push(2)
	if batch := q.DrainAll(); len(batch) != 2 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	select {
	case <-q.Ready():
		t.Fatalf("ready should not fire for drained items")
	default:
	}

	q.Push(3)
	if _, ok := q.TryPop(); !ok {
		t.Fatalf("expected pop")
	}
	select {
	case <-q.Ready():
		t.Fatalf("ready should not fire once popped empty")
	default:
	}

	q.Push(4)
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatalf("expected ready after a new push")
	}
}
