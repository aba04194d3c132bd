// Package parallel runs independent jobs, such as inspecting one image each, on a fixed number of workers.
package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
)

// Pool hands jobs to its workers through Do. Wait(true) stops accepting jobs and blocks until all have run.
type Pool struct {
	wg     sync.WaitGroup
	cancel func()
	Do     WorkerFunc
	Wait   WaitFunc
}

// Start returns a pool of numWorkers workers, or GOMAXPROCS workers if numWorkers < 1.
// A pool of one runs every job inline on the caller's goroutine.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.cancel()
			}
			pool.wg.Wait()
		}
		pool.cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}
