package olist

// using *Buffer vs []T or *[]T, as the list swaps the pointed slice
// on growth and gives the original pointer back to the pool to avoid
// an extra allocation per rent.

// Buffer is a pooled block of element slots. Capacity is len(S).
type Buffer[T any] struct {
	S []T
}

// Pooler lends and reclaims buffers. Implementations are safe for
// concurrent Rent/Return.
type Pooler[T any] interface {
	// Buffer with len(S) >= min. Contents are unspecified, do not
	// assume zeroed. Min can be <= 0.
	Rent(min int) *Buffer[T]

	// Can be nil. Do not use the Buffer after Return, and return it only once.
	// Clear zeroes every slot so the pool does not retain references.
	Return(b *Buffer[T], clear bool)
}

func makeBuffer[T any](size int) *Buffer[T] {
	return &Buffer[T]{
		S: make([]T, max(size, 0)),
	}
}

func resetBuffer[T any](b *Buffer[T], doClear bool) {
	b.S = b.S[:cap(b.S)]
	if doClear {
		clear(b.S)
	}
}
