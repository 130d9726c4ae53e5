package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// For splits [0, n) into contiguous chunks and runs fn on them concurrently,
// at most GOMAXPROCS at a time.
func For(n int, fn func(start, end int)) {
	_ = ForErr(n, func(start, end int) error {
		fn(start, end)
		return nil
	})
}

// ForErr is For for chunk functions that can fail. It waits for every chunk and
// returns the first error.
func ForErr(n int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers := min(runtime.GOMAXPROCS(0), n)
	if workers <= 1 {
		return fn(0, n)
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
