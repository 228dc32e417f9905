// Package parallel runs index-range work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Chunks splits [0, items) into at most workers contiguous ranges of
// near-equal size. Earlier ranges take the remainder.
func Chunks(items, workers int) [][2]int {
	if items <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items
	}

	out := make([][2]int, 0, workers)
	size, extra := items/workers, items%workers
	start := 0
	for w := 0; w < workers; w++ {
		end := start + size
		if w < extra {
			end++
		}
		out = append(out, [2]int{start, end})
		start = end
	}
	return out
}

// ParallelizeN calls fn on each range from Chunks(items, workers), one
// goroutine per range, and waits for all of them.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	chunks := Chunks(items, workers)
	if len(chunks) == 1 {
		fn(chunks[0][0], chunks[0][1])
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for _, c := range chunks {
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// Parallelize is ParallelizeN with GOMAXPROCS workers.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.GOMAXPROCS(0), fn)
}

// ParallelizeWithThreshold runs fn(0, items) on the calling goroutine when
// items <= threshold and falls back to Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
