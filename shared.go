package olist

import (
	"reflect"
	"sync"
)

// Largest size class of the Shared pools, in elements.
const SharedMaxSize = 1 << 20

var shared sync.Map // reflect.Type to *BucketPool[T]

// The process wide pool for element type T, created on first use.
// Lists constructed with a nil Pooler use it.
func Shared[T any]() *BucketPool[T] {
	key := reflect.TypeFor[T]()
	if p, ok := shared.Load(key); ok {
		return p.(*BucketPool[T])
	}
	p, _ := shared.LoadOrStore(key, NewBucketFull[T](Pow2Sizes(DefaultCapacity, SharedMaxSize), BucketPoolOptions{}))
	return p.(*BucketPool[T])
}
