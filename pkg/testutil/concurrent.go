// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"sync"

	dErrors "votegate/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	mu        sync.Mutex
	Successes int
	// Codes counts failures by domain code; errors without one land under CodeInternal.
	Codes map[dErrors.Code]int
}

// Total returns the number of operations executed.
func (r *ConcurrentResult) Total() int {
	total := r.Successes
	for _, n := range r.Codes {
		total += n
	}
	return total
}

// Failed returns how many operations failed with code.
func (r *ConcurrentResult) Failed(code dErrors.Code) int {
	return r.Codes[code]
}

func (r *ConcurrentResult) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		r.Successes++
		return
	}
	r.Codes[dErrors.CodeOf(err)]++
}

// RunConcurrent executes fn in parallel goroutines and buckets the results
// by domain error code.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	res := &ConcurrentResult{Codes: make(map[dErrors.Code]int)}
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			res.record(fn(idx))
		}(i)
	}
	close(start)
	wg.Wait()
	return res
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
