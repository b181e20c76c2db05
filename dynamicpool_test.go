package olist_test

// originally from https://github.com/valyala/bytebufferpool/blob/master/pool_test.go

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/graxinc/olist"
	"github.com/rs/zerolog"
)

func TestDynamicCalibrate(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	log := zerolog.New(&out).Level(zerolog.DebugLevel)

	p := olist.NewDynamic[int](olist.DynamicPoolOptions{Logger: &log})
	for i := 0; i < 20*42000; i++ { // steps and calibrateCallsThreshold
		n := 1004
		if i%15 == 0 {
			n = rand.Intn(15234) //nolint:gosec
		}
		testRentReturn(t, p, n)
	}

	if !strings.Contains(out.String(), "dynamic pool calibrated") {
		t.Fatal(out.String())
	}
}

func TestDynamicVariousSizesSerial(t *testing.T) {
	t.Parallel()

	testDynamicVariousSizes(t)
}

func TestDynamicVariousSizesConcurrent(t *testing.T) {
	t.Parallel()

	concurrency := 5
	ch := make(chan struct{})
	for i := 0; i < concurrency; i++ {
		go func() {
			testDynamicVariousSizes(t)
			ch <- struct{}{}
		}()
	}
	for i := 0; i < concurrency; i++ {
		select {
		case <-ch:
		case <-time.After(3 * time.Second):
			t.Fatalf("timeout")
		}
	}
}

func testDynamicVariousSizes(t *testing.T) {
	p := olist.NewDynamic[int](olist.DynamicPoolOptions{})
	for i := 0; i < 20+1; i++ { // steps
		n := (1 << uint32(i))

		testRentReturn(t, p, n)
		testRentReturn(t, p, n+1)
		testRentReturn(t, p, n-1)

		for j := 0; j < 10; j++ {
			testRentReturn(t, p, j+n)
		}
	}
}

func testRentReturn(t *testing.T, p olist.Pooler[int], n int) {
	b := p.Rent(n)
	if len(b.S) < n {
		t.Error(len(b.S), n)
		return
	}
	p.Return(b, false)
}
