package olist

import (
	"sync"

	"github.com/graxinc/olist/internal"
)

type syncPool[T any] struct {
	p sync.Pool
}

// Suitable for similar sized Buffers otherwise pooled
// Buffers can trend to the largest, wasting memory.
// Direct sync.Pool implementation.
func NewSync[T any]() Pooler[T] {
	return new(syncPool[T])
}

func (p *syncPool[T]) Rent(min int) *Buffer[T] {
	b, _ := p.p.Get().(*Buffer[T])
	if b == nil {
		return makeBuffer[T](min)
	}
	b.S = internal.Filled(b.S, min)
	return b
}

func (p *syncPool[T]) Return(b *Buffer[T], clear bool) {
	if b == nil {
		return
	}
	resetBuffer(b, clear)
	p.p.Put(b)
}
