package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/graxinc/olist"
)

var (
	poolName    = flag.String("pool", "bucket", "Pool type (bucket,sync,dynamic,shared)")
	cancelAfter = flag.Int("cancel-after", 3, "Cancel the context enumeration after this many elements, 0 to not cancel")
	extra       = flag.Int("n", 0, "Random elements to add after the fixed ones")
	maxBucket   = flag.Int("max-bucket", 1024, "Largest bucket size for -pool=bucket")
	seed        = flag.Uint64("seed", 12345, "Random seed")
	verbose     = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("demo failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	var bucket *olist.BucketPool[int]
	var pool olist.Pooler[int]
	switch *poolName {
	case "bucket":
		if *maxBucket <= olist.DefaultCapacity {
			return fmt.Errorf("max-bucket %d must be over %d", *maxBucket, olist.DefaultCapacity)
		}
		bucket = olist.NewBucketFull[int](olist.Pow2Sizes(olist.DefaultCapacity, *maxBucket), olist.BucketPoolOptions{Logger: &log})
		pool = bucket
	case "sync":
		pool = olist.NewSync[int]()
	case "dynamic":
		pool = olist.NewDynamic[int](olist.DynamicPoolOptions{Logger: &log})
	case "shared":
		bucket = olist.Shared[int]()
	default:
		return fmt.Errorf("unknown pool %q", *poolName)
	}

	l := olist.New(pool)
	defer l.Release()

	l.Add(10)
	l.Add(12)
	l.Add(14)
	l.Add(16)
	l.Add(18)
	l.AddRange(30, 40, 50)

	rando := rand.New(rand.NewPCG(*seed, 0))
	for range *extra {
		l.Add(rando.IntN(1000))
	}

	log.Info().Int("len", l.Len()).Int("cap", l.Cap()).Str("pool", *poolName).Msg("built list")

	var all []int
	for v := range l.All() {
		all = append(all, v)
	}
	log.Info().Ints("values", all).Msg("enumerated")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n int
	for v, err := range l.AllContext(ctx) {
		if err != nil {
			log.Warn().Err(err).Int("yielded", n).Msg("enumeration stopped")
			break
		}
		n++
		log.Debug().Int("i", n-1).Int("value", v).Msg("yielded")
		if n == *cancelAfter {
			cancel()
		}
	}

	l.Release()

	if bucket != nil {
		s := bucket.Stats()
		log.Info().
			Int("sizes", s.Sizes).
			Uint64("puts", s.Puts).
			Uint64("hits", s.Hits).
			Uint64("misses", s.Misses).
			Uint64("overs", s.Overs).
			Msg("pool stats")
	}
	return nil
}
