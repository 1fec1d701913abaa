package engine

import (
	"runtime"
	"sync"

	"github.com/inodb/vibe-region/internal/genome"
	"github.com/inodb/vibe-region/internal/region"
	"github.com/inodb/vibe-region/internal/trim"
)

// WorkItem holds a region with its reads attached, ready for trimming.
type WorkItem struct {
	Seq      int
	Region   *region.Region
	Variants []genome.Locatable
}

// WorkResult holds the trimming output for a single region.
type WorkResult struct {
	Seq    int
	Region *region.Region
	Result trim.Result
	Err    error
}

// ParallelTrim trims work items using a pool of workers. Each region is
// handled by exactly one worker.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func ParallelTrim(t *trim.Trimmer, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := t.Trim(item.Region, item.Variants)
				results <- WorkResult{
					Seq:    item.Seq,
					Region: item.Region,
					Result: res,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
