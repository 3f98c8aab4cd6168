package batch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// span is a half-open range of particle indices handed to one worker.
type span struct {
	start, end int
}

// pool is a fixed set of persistent workers. run dispatches one step's
// spans and blocks until every span has finished.
type pool struct {
	workers int
	body    func(start, end int)

	workChan chan span
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool
}

// newPool starts workers goroutines that call body for each span. A
// non-positive count uses GOMAXPROCS.
func newPool(workers int, body func(start, end int)) *pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &pool{
		workers:  workers,
		body:     body,
		workChan: make(chan span, workers),
		doneChan: make(chan struct{}, workers),
		stopChan: make(chan struct{}),
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case s := <-p.workChan:
			p.body(s.start, s.end)
			p.doneChan <- struct{}{}
		}
	}
}

// run splits [0,n) into at most one span per worker and waits for all of
// them. It returns the number of spans dispatched.
func (p *pool) run(n int) int {
	if n <= 0 {
		return 0
	}
	chunk := (n + p.workers - 1) / p.workers
	dispatched := 0
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		p.workChan <- span{start: start, end: end}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	return dispatched
}

// stop signals every worker to exit and waits for them.
func (p *pool) stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
}
