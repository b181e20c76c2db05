package olist

import (
	"context"
	"fmt"
	"iter"
	"runtime"
)

// Capacity of New, and the capacity growth starts from when empty.
const DefaultCapacity = 4

// List is a growable sequence holding exactly one rented Buffer at a time.
// Growth rents a buffer of double the capacity, copies the live elements and
// returns the old buffer cleared.
//
// Not safe for concurrent use. Release must be called once done, usually
// with defer. Using a released List panics with an error wrapping ErrReleased,
// except Len, Cap and Release.
type List[T any] struct {
	pool Pooler[T]
	buf  *Buffer[T] // nil once released
	n    int
}

// Empty List with DefaultCapacity. Pool can be nil to use Shared.
func New[T any](pool Pooler[T]) *List[T] {
	l, _ := NewSized(pool, DefaultCapacity)
	return l
}

// Empty List with a capacity of at least capacity, which can be 0.
// Pool can be nil to use Shared.
func NewSized[T any](pool Pooler[T], capacity int) (*List[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidArgument)
	}
	if pool == nil {
		pool = Shared[T]()
	}
	return &List[T]{
		pool: pool,
		buf:  pool.Rent(capacity),
	}, nil
}

func (l *List[T]) Len() int {
	return l.n
}

// Size of the held buffer. Zero once released.
func (l *List[T]) Cap() int {
	if l.buf == nil {
		return 0
	}
	return len(l.buf.S)
}

func (l *List[T]) Add(v T) {
	l.mustHold("Add")
	if l.n == len(l.buf.S) {
		l.EnsureCapacity(l.n + 1)
	}
	l.buf.S[l.n] = v
	l.n++
}

// Appends vs in order with at most one growth.
func (l *List[T]) AddRange(vs ...T) {
	l.mustHold("AddRange")
	if len(vs) == 0 {
		return
	}
	l.EnsureCapacity(l.n + len(vs))
	l.n += copy(l.buf.S[l.n:], vs)
}

// Appends the elements of o in order with at most one growth. O can be l.
func (l *List[T]) AddList(o *List[T]) {
	l.mustHold("AddList")
	o.mustHold("AddList")
	k := o.n
	if k == 0 {
		return
	}
	l.EnsureCapacity(l.n + k)
	l.n += copy(l.buf.S[l.n:], o.buf.S[:k])
}

// Appends each element of seq. The count isn't known up front, so
// this can grow several times; prefer AddRange when it is.
// Seq must not enumerate l.
func (l *List[T]) AddSeq(seq iter.Seq[T]) {
	l.mustHold("AddSeq")
	for v := range seq {
		l.Add(v)
	}
}

// Ensures Cap() >= min, keeping elements in place.
// Min can be <= 0.
func (l *List[T]) EnsureCapacity(min int) {
	l.mustHold("EnsureCapacity")

	c := len(l.buf.S)
	if min <= c {
		return
	}

	next := c * 2
	if c == 0 {
		next = DefaultCapacity
	}
	next = max(next, min)

	b := l.pool.Rent(next)
	copy(b.S, l.buf.S[:l.n])
	l.pool.Return(l.buf, true)
	l.buf = b
}

// Element at i, 0 <= i < Len().
func (l *List[T]) At(i int) (T, error) {
	l.mustHold("At")
	if i < 0 || i >= l.n {
		var zero T
		return zero, fmt.Errorf("index %d with length %d: %w", i, l.n, ErrIndexOutOfRange)
	}
	return l.buf.S[i], nil
}

// Not yet supported: no compaction design exists, so nothing is removed.
// Always returns nil.
func (l *List[T]) Remove(v T) error {
	l.mustHold("Remove")
	return nil
}

// Not yet supported, see Remove. Always returns nil.
func (l *List[T]) RemoveRange(vs ...T) error {
	l.mustHold("RemoveRange")
	return nil
}

// Sets length to 0, clearing the elements but keeping the buffer.
func (l *List[T]) Reset() {
	l.mustHold("Reset")
	clear(l.buf.S[:l.n])
	l.n = 0
}

// Elements in index order. Each range starts over from index 0 and sees
// the elements present when it started.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		l.mustHold("All")
		n := l.n
		for i := 0; i < n; i++ {
			if !yield(l.buf.S[i]) {
				return
			}
		}
	}
}

// Like All, but ctx is checked before each element and the goroutine yields
// the processor after each one. Once ctx is done a zero T is produced with an
// error wrapping ErrCanceled and ctx.Err(), and enumeration stops.
func (l *List[T]) AllContext(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		l.mustHold("AllContext")
		n := l.n
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				var zero T
				yield(zero, fmt.Errorf("%w at %d of %d: %w", ErrCanceled, i, n, err))
				return
			}
			if !yield(l.buf.S[i], nil) {
				return
			}
			runtime.Gosched()
		}
	}
}

// Returns the buffer to the pool cleared. Can be called more than once
// and on a nil List.
func (l *List[T]) Release() {
	if l == nil || l.buf == nil {
		return
	}
	l.pool.Return(l.buf, true)
	l.buf = nil
	l.n = 0
}

func (l *List[T]) mustHold(op string) {
	if l.buf == nil {
		panic(fmt.Errorf("%s: %w", op, ErrReleased))
	}
}
