package gopool

import (
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

var minNumberPerTask = 5

// Pool runs tasks on a bounded number of goroutines and lets the caller wait
// for all submitted tasks to finish.
type Pool struct {
	pool *ants.Pool
	wg   sync.WaitGroup
}

// New creates a pool of the given size. A non-positive size uses one
// goroutine per CPU.
func New(size int) (*Pool, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	pool, err := ants.NewPool(size, ants.WithExpiryDuration(10*time.Second))
	if err != nil {
		return nil, err
	}
	return &Pool{pool: pool}, nil
}

// Submit schedules task, blocking while all workers are busy.
func (p *Pool) Submit(task func()) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		task()
	})
	if err != nil {
		p.wg.Done()
	}
	return err
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Cap returns the capacity of this pool.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Release closes the pool. Wait should be called first.
func (p *Pool) Release() {
	p.pool.Release()
}

// Threads returns how many goroutines are worth spawning for the given
// number of tasks.
func Threads(tasks int) int {
	threads := tasks / minNumberPerTask
	if threads > runtime.NumCPU() {
		threads = runtime.NumCPU()
	} else if threads == 0 {
		threads = 1
	}
	return threads
}
