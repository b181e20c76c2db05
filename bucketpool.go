package olist

// originally from https://github.com/vitessio/vitess/blob/main/go/bucketpool/bucketpool.go

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/graxinc/olist/internal"
)

type sizedPool[T any] struct {
	size int
	pool sync.Pool

	puts   atomic.Uint64
	hits   atomic.Uint64
	misses atomic.Uint64
}

func newSizedPool[T any](size int) *sizedPool[T] {
	return &sizedPool[T]{
		size: size,
	}
}

func (p *sizedPool[T]) get() *Buffer[T] {
	b, _ := p.pool.Get().(*Buffer[T])
	if b == nil {
		p.misses.Add(1)
		return makeBuffer[T](p.size)
	}
	p.hits.Add(1)
	b.S = internal.GrowMinMax(b.S, p.size, p.size)[:p.size]
	return b
}

// b cannot be nil. len(b.S) can't be under p.size.
func (p *sizedPool[T]) put(b *Buffer[T]) {
	if len(b.S) < p.size {
		panic("unexpected len")
	}
	b.S = b.S[:p.size:p.size]
	p.puts.Add(1)
	p.pool.Put(b)
}

type BucketPool[T any] struct {
	pools []*sizedPool[T]
	log   zerolog.Logger
	overs atomic.Uint64

	statLock atomic.Bool
	getOvers []int
	putOvers []int
}

var _ Pooler[int] = (*BucketPool[int])(nil)

// sizes that increase with the power of two.
// minSize must be >= 1 and maxSize > minSize.
func Pow2Sizes(minSize, maxSize int) []int {
	if minSize < 1 {
		panic("minSize < 1")
	}
	if maxSize <= minSize {
		panic("maxSize <= minSize")
	}

	var sizes []int

	const multiplier = 2
	for s := minSize; s < maxSize; s *= multiplier {
		sizes = append(sizes, s)
	}
	sizes = append(sizes, maxSize)
	return sizes
}

// Distributes sizes linearly over numBuckets.
// minSize must be >= 1, maxSize > minSize, and numBuckets >= 2.
func LinearSizes(minSize, maxSize, numBuckets int) []int {
	if minSize < 1 {
		panic("minSize < 1")
	}
	if maxSize <= minSize {
		panic("maxSize <= minSize")
	}
	if numBuckets < 2 {
		panic("numBuckets < 2")
	}

	var sizes []int

	inc := float64(maxSize-minSize) / float64(numBuckets-1)

	for i := range numBuckets {
		v := float64(minSize) + float64(i)*inc
		sizes = append(sizes, int(math.RoundToEven(v)))
	}
	sizes = slices.Compact(sizes)
	return sizes
}

// Distributes sizes exponentially over numBuckets.
// minSize must be >= 1, maxSize > minSize, and numBuckets >= 2.
func ExpoSizes(minSize, maxSize, numBuckets int) []int {
	if minSize < 1 {
		panic("minSize < 1")
	}
	if maxSize <= minSize {
		panic("maxSize <= minSize")
	}
	if numBuckets < 2 {
		panic("numBuckets < 2")
	}

	var sizes []int

	// size at i = min * (max/min)^(1/(N-1))
	r := math.Pow(float64(maxSize)/float64(minSize), 1/float64(numBuckets-1))

	for i := range numBuckets {
		v := float64(minSize) * math.Pow(r, float64(i))
		sizes = append(sizes, int(math.RoundToEven(v)))
	}
	sizes = slices.Compact(sizes)
	return sizes
}

type BucketPoolOptions struct {
	Logger *zerolog.Logger // over sized rents and returns at debug. Defaults to no logging.
}

// Buckets of sizes that increase with the power of two.
// maxSize can't be less than minSize.
func NewBucket[T any](minSize, maxSize int) *BucketPool[T] {
	if maxSize < minSize {
		panic("maxSize can't be less than minSize")
	}
	if maxSize == minSize {
		return NewBucketFull[T]([]int{minSize}, BucketPoolOptions{})
	}
	return NewBucketFull[T](Pow2Sizes(minSize, maxSize), BucketPoolOptions{})
}

// Suitable for variable sized Buffers if max bounds can be chosen.
// Rents over max size will be allocated directly and not pooled on Return.
// sizes must not be empty and each must be >= 1. Repeats will be removed.
func NewBucketFull[T any](sizes []int, o BucketPoolOptions) *BucketPool[T] {
	if len(sizes) == 0 {
		panic("empty sizes")
	}
	for _, s := range sizes {
		if s < 1 {
			panic("size < 1")
		}
	}

	sizes = slices.Clone(sizes)
	slices.Sort(sizes)
	sizes = slices.Compact(sizes)

	var pools []*sizedPool[T]
	for _, s := range sizes {
		pools = append(pools, newSizedPool[T](s))
	}

	log := zerolog.Nop()
	if o.Logger != nil {
		log = *o.Logger
	}

	return &BucketPool[T]{
		pools: pools,
		log:   log,
	}
}

func (p *BucketPool[T]) Rent(min int) *Buffer[T] {
	sp := p.findRentPool(min)
	if sp == nil {
		p.over(min, false)
		return makeBuffer[T](min)
	}
	return sp.get()
}

func (p *BucketPool[T]) Return(b *Buffer[T], doClear bool) {
	if b == nil {
		return
	}
	n := cap(b.S)
	if n > p.pools[len(p.pools)-1].size {
		p.over(n, true)
		return
	}
	sp := p.findReturnPool(n)
	if sp == nil {
		return // under smallest, dropped.
	}
	b.S = b.S[:n]
	if doClear {
		clear(b.S)
	}
	sp.put(b)
}

type BucketStats struct {
	Size   int
	Puts   uint64
	Hits   uint64
	Misses uint64
}

type BucketPoolStats struct {
	Buckets  []BucketStats // only those with positive Puts/Hits/Misses
	MinSize  int
	MaxSize  int
	Sizes    int
	Puts     uint64
	Hits     uint64
	Misses   uint64
	Overs    uint64
	GetOvers []int // recent, up to 11.
	PutOvers []int // recent, up to 11.
}

func (p *BucketPool[T]) Stats() BucketPoolStats {
	for p.statLock.Swap(true) { // busy loop until not locked
	}
	defer p.statLock.Store(false)

	ps := BucketPoolStats{
		MinSize:  p.pools[0].size,
		MaxSize:  p.pools[len(p.pools)-1].size,
		Sizes:    len(p.pools),
		Overs:    p.overs.Load(),
		GetOvers: slices.Clone(p.getOvers),
		PutOvers: slices.Clone(p.putOvers),
	}
	for _, sp := range p.pools {
		s := BucketStats{
			Size:   sp.size,
			Puts:   sp.puts.Load(),
			Hits:   sp.hits.Load(),
			Misses: sp.misses.Load(),
		}
		if s.Puts <= 0 && s.Hits <= 0 && s.Misses <= 0 {
			continue
		}
		ps.Puts += s.Puts
		ps.Hits += s.Hits
		ps.Misses += s.Misses
		ps.Buckets = append(ps.Buckets, s)
	}
	return ps
}

// smallest pool with size >= n.
func (p *BucketPool[T]) findRentPool(n int) *sizedPool[T] {
	i, _ := slices.BinarySearchFunc(p.pools, n, func(sp *sizedPool[T], n int) int {
		return sp.size - n
	})
	if i == len(p.pools) {
		return nil
	}
	return p.pools[i]
}

// largest pool with size <= n.
func (p *BucketPool[T]) findReturnPool(n int) *sizedPool[T] {
	i, found := slices.BinarySearchFunc(p.pools, n, func(sp *sizedPool[T], n int) int {
		return sp.size - n
	})
	if found {
		return p.pools[i]
	}
	if i == 0 {
		return nil
	}
	return p.pools[i-1]
}

func (p *BucketPool[T]) over(over int, isReturn bool) {
	p.overs.Add(1)

	p.log.Debug().
		Int("size", over).
		Bool("return", isReturn).
		Int("maxSize", p.pools[len(p.pools)-1].size).
		Msg("olist: buffer over max bucket size")

	if p.statLock.Swap(true) { //  already locked, skip to reduce contention
		return
	}
	defer p.statLock.Store(false)

	add := func(s []int, v int) []int {
		if len(s) > 10 {
			s = s[1:]
		}
		s = append(s, v)
		return s
	}
	if isReturn {
		p.putOvers = add(p.putOvers, over)
	} else {
		p.getOvers = add(p.getOvers, over)
	}
}
