package plan

import (
	"runtime"
	"sync"
)

// runKeyed fans independent tasks out to a bounded worker pool and collects
// the results keyed by input identity. It blocks until every task has
// returned, so callers merge a complete result set and wall-clock
// completion order never leaks into the outcome. Tasks must not share
// mutable state; each receives only its own key.
func runKeyed[K comparable, R any](keys []K, workers int, task func(K) R) map[K]R {
	results := make(map[K]R, len(keys))
	if len(keys) == 0 {
		return results
	}
	workers = min(workers, len(keys))
	if workers < 1 {
		workers = 1
	}

	type keyed struct {
		key    K
		result R
	}
	pending := make(chan K)
	done := make(chan keyed)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range pending {
				done <- keyed{key: key, result: task(key)}
			}
		}()
	}
	go func() {
		for _, key := range keys {
			pending <- key
		}
		close(pending)
	}()
	go func() {
		wg.Wait()
		close(done)
	}()

	for kr := range done {
		results[kr.key] = kr.result
	}
	return results
}

// poolSize bounds worker counts to the available parallelism, capped by the
// configured maximum.
func poolSize(maxWorkers int) int {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return min(maxWorkers, runtime.NumCPU())
}
