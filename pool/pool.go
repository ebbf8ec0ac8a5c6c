// Package pool provides the process-wide worker pool used to parallelise
// the constraint solver's iterate passes. A pool owns N-1 background
// goroutines; the calling goroutine participates as worker N.
//
// Grounded on the worker-distribution idiom in the teacher's ray tracer
// example (channel of work items drained by a fixed goroutine count,
// joined with a WaitGroup), extended with the gate/drain-counter contract
// the solver needs: a single producer stages tasks, Execute publishes them
// and blocks until they drain, and the gate can run in Persistent (workers
// spin) or Regular (workers park) mode.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ThreadModel selects how background workers wait for work.
type ThreadModel int

const (
	// Regular workers block on a channel when the queue is empty.
	Regular ThreadModel = iota
	// Persistent workers spin-poll the queue, trading CPU occupancy for
	// lower wake latency between steps.
	Persistent
)

// Task is a unit of work submitted to a Pool.
type Task func()

const queueCapacity = 4096

// Pool is a process-wide worker pool with an explicit lifecycle:
// ChangeThreadCount sizes it, AddTask stages work from the single
// producer, and Execute publishes the staged tasks and blocks until
// every one of them has run.
type Pool struct {
	mode ThreadModel

	queue     chan Task
	tasksLeft atomic.Int64

	mu    sync.Mutex
	quit  chan struct{}
	wake  chan struct{} // closed to release workers parked in Regular mode.
	wg    sync.WaitGroup
	count int // background worker count (N-1).

	staging []Task // per-producer staging list; single-producer, unsynchronised by contract.
}

// New creates a pool with n participants (n-1 background workers plus the
// calling goroutine) running the given thread model.
func New(n int, mode ThreadModel) *Pool {
	p := &Pool{
		mode:  mode,
		queue: make(chan Task, queueCapacity),
		wake:  make(chan struct{}),
	}
	close(p.wake) // gate starts open.
	p.ChangeThreadCount(n)
	return p
}

var (
	defaultPool *Pool
	defaultOnce sync.Once
)

// Default returns the process-wide pool, created lazily on first use with
// one worker per logical CPU in Persistent mode.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(runtime.NumCPU(), Persistent)
	})
	return defaultPool
}

// ChangeThreadCount joins all current workers, then resizes and restarts
// the background worker set to n-1 threads. Each new worker signals
// readiness through a one-shot handshake before being considered live.
// Must not be called concurrently with Execute; the caller is responsible
// for coordinating the two, per the pool's contract.
func (p *Pool) ChangeThreadCount(n int) {
	p.mu.Lock()
	oldQuit := p.quit
	p.mu.Unlock()
	if oldQuit != nil {
		close(oldQuit)
	}
	p.wg.Wait()

	count := n - 1
	if count < 0 {
		count = 0
	}

	p.mu.Lock()
	p.count = count
	p.quit = make(chan struct{})
	quit := p.quit
	p.mu.Unlock()

	ready := make(chan struct{})
	for i := 0; i < count; i++ {
		p.wg.Add(1)
		go p.runWorker(quit, ready)
	}
	for i := 0; i < count; i++ {
		<-ready
	}
}

// AddTask appends fn to the producer's staging list. Not safe for
// concurrent producers: the pool is single-producer by contract.
func (p *Pool) AddTask(fn Task) {
	p.staging = append(p.staging, fn)
}

// Execute atomically publishes the staged tasks to the shared queue, then
// participates as a worker until every task has completed. It returns
// only once tasksLeft has drained to zero.
func (p *Pool) Execute() {
	n := len(p.staging)
	if n == 0 {
		return
	}
	p.tasksLeft.Store(int64(n))
	for _, t := range p.staging {
		p.queue <- t
	}
	p.staging = p.staging[:0]
	p.SignalWait() // make sure parked Regular workers see the new work.

	for p.tasksLeft.Load() > 0 {
		select {
		case t := <-p.queue:
			t()
			p.tasksLeft.Add(-1)
		default:
			runtime.Gosched() // SpinWait style micro-backoff, not a blocking wait.
		}
	}

	// Regular workers park between steps; Persistent workers keep
	// spinning on the gate, so only Regular mode closes it here.
	if p.mode == Regular {
		p.SignalReset()
	}
}

// SignalWait opens the gate, releasing any workers parked in Regular mode.
func (p *Pool) SignalWait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.wake:
		// already open.
	default:
		close(p.wake)
	}
}

// SignalReset closes the gate; subsequent Regular-mode workers park until
// the next SignalWait.
func (p *Pool) SignalReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wake = make(chan struct{})
}

func (p *Pool) runWorker(quit chan struct{}, ready chan struct{}) {
	defer p.wg.Done()
	ready <- struct{}{} // one-shot handshake before this worker counts as live.

	for {
		select {
		case <-quit:
			return
		case t := <-p.queue:
			t()
			p.tasksLeft.Add(-1)
			continue
		default:
		}

		if p.mode == Persistent {
			runtime.Gosched()
			continue
		}

		p.mu.Lock()
		wake := p.wake
		p.mu.Unlock()
		select {
		case <-quit:
			return
		case t := <-p.queue:
			t()
			p.tasksLeft.Add(-1)
		case <-wake:
		}
	}
}
