package pipeline

import (
	"runtime"
	"sync"
)

// WorkItem carries one unit of per-transcript work with a sequence number
// used to restore input order on collection.
type WorkItem[T any] struct {
	Seq   int
	Value T
}

// WorkResult holds the outcome for one work item.
type WorkResult[R any] struct {
	Seq   int
	Value R
	Err   error
}

// ParallelMap processes items using a pool of workers and sends results to
// the returned channel in arrival order (not sequence order). Use
// OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func ParallelMap[T, R any](items <-chan WorkItem[T], workers int, fn func(T) (R, error)) <-chan WorkResult[R] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult[R], 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				value, err := fn(item.Value)
				results <- WorkResult[R]{Seq: item.Seq, Value: value, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order results until the next expected sequence number
// arrives. Blocks until the results channel is closed.
func OrderedCollect[R any](results <-chan WorkResult[R], fn func(WorkResult[R]) error) error {
	pending := make(map[int]WorkResult[R])
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

// feed turns a slice into a channel of numbered work items.
func feed[T any](values []T) <-chan WorkItem[T] {
	items := make(chan WorkItem[T], len(values))
	for i, v := range values {
		items <- WorkItem[T]{Seq: i, Value: v}
	}
	close(items)
	return items
}
