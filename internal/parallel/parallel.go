// Package parallel splits the outer loops of the reconstruction and gradient
// kernels across goroutines.
//
// Every work item writes to its own disjoint slice of the output, so results
// are bit-identical to a sequential run regardless of scheduling.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers  int // Worker goroutines; 0 or 1 runs sequentially.
	MinItems int // Below this many work items the loop runs sequentially.
}

// DefaultConfig uses one worker per CPU. Work items are whole samples or
// atoms, so a handful of them is already worth a goroutine each.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinItems: 2,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{Workers: 1}
}

// WithWorkers returns DefaultConfig with the worker count overridden.
// workers <= 0 keeps the CPU count.
func WithWorkers(workers int) Config {
	cfg := DefaultConfig()
	if workers > 0 {
		cfg.Workers = workers
	}
	return cfg
}

// For executes f(i) for i in [0, n), splitting the range into contiguous
// chunks, one per worker.
func For(n int, f func(i int), cfg Config) {
	if cfg.Workers <= 1 || n < max(cfg.MinItems, 2) {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + cfg.Workers - 1) / cfg.Workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch iterates the outer x inner grid, e.g. samples x channels of a
// reconstruction, as a single flattened parallel loop.
func ForBatch(outer, inner int, f func(o, i int), cfg Config) {
	For(outer*inner, func(k int) {
		f(k/inner, k%inner)
	}, cfg)
}
