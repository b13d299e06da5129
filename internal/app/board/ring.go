package board

// ring keeps the last cap items pushed, oldest first.
type ring[T any] struct {
	buf   []T
	start int
	n     int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	if len(r.buf) == 0 {
		return
	}
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring[T]) len() int { return r.n }

func (r *ring[T]) at(i int) T { return r.buf[(r.start+i)%len(r.buf)] }

// filter keeps only the items for which keep returns true.
func (r *ring[T]) filter(keep func(T) bool) {
	var zero T
	kept := 0
	for i := 0; i < r.n; i++ {
		v := r.at(i)
		if keep(v) {
			r.buf[(r.start+kept)%len(r.buf)] = v
			kept++
		}
	}
	for i := kept; i < r.n; i++ {
		r.buf[(r.start+i)%len(r.buf)] = zero
	}
	r.n = kept
}

func (r *ring[T]) clear() {
	r.filter(func(T) bool { return false })
	r.start = 0
}
