package olist_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/graxinc/olist"
)

func poolers[T any]() map[string]func() olist.Pooler[T] {
	return map[string]func() olist.Pooler[T]{
		"sync":    olist.NewSync[T],
		"dynamic": func() olist.Pooler[T] { return olist.NewDynamic[T](olist.DynamicPoolOptions{}) },
		"bucket":  func() olist.Pooler[T] { return olist.NewBucket[T](1, 20) },
	}
}

func TestPooler_concurrentMutation(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, pool olist.Pooler[int]) {
		runGo := func() {
			rando := rand.New(rand.NewPCG(0, 0))
			for range 1000 {
				c1 := 1 + rando.IntN(10)
				c2 := rando.IntN(c1)

				b := pool.Rent(c1)
				b.S[c2] = rando.IntN(255)

				s1 := slices.Clone(b.S)
				time.Sleep(time.Millisecond) // time for concurrent mutation
				s2 := slices.Clone(b.S)

				if !slices.Equal(s1, s2) {
					t.Error("concurrent modification")
				}

				pool.Return(b, rando.IntN(2) == 0)
			}
		}

		var wait sync.WaitGroup
		for range 10 {
			wait.Add(1)
			go func() {
				defer wait.Done()
				runGo()
			}()
		}
		wait.Wait()
	}
	for name, newPool := range poolers[int]() {
		t.Run(name, func(t *testing.T) {
			run(t, newPool())
		})
	}
}

func TestPooler_lenAndCap(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, pool olist.Pooler[int]) {
		rando := rand.New(rand.NewPCG(0, 0))
		for range 4000 {
			c := rando.IntN(11)

			b := pool.Rent(c)

			if len(b.S) < c {
				t.Fatal(len(b.S), c)
			}
			if len(b.S) != cap(b.S) {
				t.Fatal(len(b.S), cap(b.S))
			}
			if c < 8 && len(b.S) > max(c, 1)*32 {
				t.Fatal(len(b.S), c)
			}
			if c > 8 && len(b.S) > c*4 {
				t.Fatal(len(b.S), c)
			}

			if rando.IntN(5) == 0 {
				b.S = make([]int, rando.IntN(10))
			} else {
				b.S = b.S[:c/2]
			}

			pool.Return(b, false)
		}
	}
	for name, newPool := range poolers[int]() {
		t.Run(name, func(t *testing.T) {
			run(t, newPool())
		})
	}
}

func TestPooler_returnClear(t *testing.T) {
	t.Parallel()

	for name, newPool := range poolers[*int]() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, doClear := range []bool{false, true} {
				t.Run(fmt.Sprintf("clear=%v", doClear), func(t *testing.T) {
					pool := newPool()

					b := pool.Rent(4)
					s := b.S[:cap(b.S)]
					for i := range s {
						s[i] = new(int)
					}

					pool.Return(b, doClear)

					var nils int
					for _, v := range s {
						if v == nil {
							nils++
						}
					}
					want := 0
					if doClear {
						want = len(s)
					}
					diffFatal(t, want, nils)
				})
			}
		})
	}
}

func TestPooler_nilReturn(t *testing.T) {
	t.Parallel()

	for name, newPool := range poolers[int]() {
		t.Run(name, func(t *testing.T) {
			newPool().Return(nil, true)
		})
	}
}

func TestPooler_rentNonPositive(t *testing.T) {
	t.Parallel()

	for name, newPool := range poolers[int]() {
		t.Run(name, func(t *testing.T) {
			pool := newPool()
			for _, n := range []int{-1, 0} {
				b := pool.Rent(n)
				if b == nil {
					t.Fatal(n)
				}
				pool.Return(b, true)
			}
		})
	}
}

func BenchmarkPooler(b *testing.B) {
	for name, newPool := range poolers[int]() {
		b.Run(name, func(b *testing.B) {
			pool := newPool()
			b.RunParallel(func(p *testing.PB) {
				rando := rand.New(rand.NewPCG(0, 0))
				for p.Next() {
					c := 2 + rando.IntN(2)
					buf := pool.Rent(c)
					buf.S[1] = 5
					pool.Return(buf, true)
				}
			})
		})
	}
}

func diffFatal(t testing.TB, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Fatalf("(-want +got):\n%v", d)
	}
}
