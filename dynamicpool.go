package olist

// originally from https://github.com/valyala/bytebufferpool/blob/master/pool.go

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/graxinc/olist/internal"
)

const (
	minBitSize = 2 // 2**2=4 is DefaultCapacity
	steps      = 20

	minSize = 1 << minBitSize

	calibrateCallsThreshold = 42000
	maxPercentile           = 0.95
)

type dynamicPool[T any] struct {
	calls       [steps]uint64
	calibrating uint64

	defaultSize uint64
	maxSize     uint64

	pool sync.Pool
	log  zerolog.Logger

	callSizes callSizes // buffered for use in calibrate
}

type DynamicPoolOptions struct {
	Logger *zerolog.Logger // calibration results at debug. Defaults to no logging.
}

// Continually tunes the Rent allocation size and max Return size. Suitable for variable
// sized Buffers, but at a cost.
func NewDynamic[T any](o DynamicPoolOptions) Pooler[T] {
	p := &dynamicPool[T]{log: zerolog.Nop()}
	if o.Logger != nil {
		p.log = *o.Logger
	}
	return p
}

func (p *dynamicPool[T]) Rent(min int) *Buffer[T] {
	b, _ := p.pool.Get().(*Buffer[T])
	if b == nil {
		def := int(atomic.LoadUint64(&p.defaultSize))
		return makeBuffer[T](max(def, min))
	}
	b.S = internal.Filled(b.S, min)
	return b
}

func (p *dynamicPool[T]) Return(b *Buffer[T], clear bool) {
	if b == nil {
		return
	}

	idx := index(cap(b.S))

	if atomic.AddUint64(&p.calls[idx], 1) > calibrateCallsThreshold {
		p.calibrate()
	}

	maxSize := int(atomic.LoadUint64(&p.maxSize))
	if maxSize == 0 || cap(b.S) <= maxSize {
		resetBuffer(b, clear)
		p.pool.Put(b)
	}
}

func (p *dynamicPool[T]) calibrate() {
	if !atomic.CompareAndSwapUint64(&p.calibrating, 0, 1) {
		return
	}

	p.callSizes = p.callSizes[:0]
	var callsSum uint64
	for i := 0; i < steps; i++ {
		calls := atomic.SwapUint64(&p.calls[i], 0)
		callsSum += calls
		p.callSizes = append(p.callSizes, callSize{
			calls: calls,
			size:  minSize << i,
		})
	}
	sort.Sort(p.callSizes)

	defaultSize := p.callSizes[0].size
	maxSize := defaultSize

	maxSum := uint64(float64(callsSum) * maxPercentile)
	callsSum = 0
	for i := 0; i < steps; i++ {
		if callsSum > maxSum {
			break
		}
		callsSum += p.callSizes[i].calls
		size := p.callSizes[i].size
		if size > maxSize {
			maxSize = size
		}
	}

	atomic.StoreUint64(&p.defaultSize, defaultSize)
	atomic.StoreUint64(&p.maxSize, maxSize)

	p.log.Debug().
		Uint64("defaultSize", defaultSize).
		Uint64("maxSize", maxSize).
		Msg("olist: dynamic pool calibrated")

	atomic.StoreUint64(&p.calibrating, 0)
}

type callSize struct {
	calls uint64
	size  uint64
}

type callSizes []callSize

func (ci callSizes) Len() int {
	return len(ci)
}

func (ci callSizes) Less(i, j int) bool {
	return ci[i].calls > ci[j].calls
}

func (ci callSizes) Swap(i, j int) {
	ci[i], ci[j] = ci[j], ci[i]
}

func index(n int) int {
	n--
	n >>= minBitSize
	idx := 0
	for n > 0 {
		n >>= 1
		idx++
	}
	if idx >= steps {
		idx = steps - 1
	}
	return idx
}
