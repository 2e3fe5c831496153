// Package async implements a future/continuation scheduler with two lanes:
// a bounded pool of worker goroutines, and a single-threaded main queue
// drained explicitly by the embedder.
//
// The worker pool runs a fixed number of persistent goroutines against an
// unbounded job backlog; SpawnWorker never rejects a submission, unlike a
// bounded admission queue that sheds load past a fixed depth.
package async

import (
	"context"
	"runtime"
	"sync"
)

// Runtime owns the worker pool and the main task queue. The zero value is
// not usable; construct with NewRuntime.
type Runtime struct {
	jobQueue  *taskQueue
	mainQueue *taskQueue

	workerWG      sync.WaitGroup
	workerThreads int

	closeOnce sync.Once
	closed    chan struct{}
}

// RuntimeOption configures a Runtime at construction.
type RuntimeOption func(*runtimeConfig)

type runtimeConfig struct {
	workerThreads int
}

// WithWorkerThreads sets the fixed worker-pool size. Default is
// runtime.NumCPU().
func WithWorkerThreads(n int) RuntimeOption {
	return func(c *runtimeConfig) { c.workerThreads = n }
}

// NewRuntime starts a Runtime with a fixed worker pool. Workers run until
// Close is called.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	cfg := runtimeConfig{workerThreads: runtime.NumCPU()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.workerThreads <= 0 {
		cfg.workerThreads = 1
	}

	rt := &Runtime{
		jobQueue:      newTaskQueue(),
		mainQueue:     newTaskQueue(),
		workerThreads: cfg.workerThreads,
		closed:        make(chan struct{}),
	}
	for i := 0; i < cfg.workerThreads; i++ {
		rt.workerWG.Add(1)
		go rt.workerLoop()
	}
	return rt
}

func (rt *Runtime) workerLoop() {
	defer rt.workerWG.Done()
	for {
		job, ok := rt.jobQueue.pop(rt.closed)
		if !ok {
			return
		}
		job()
	}
}

// spawnWorker enqueues a job on the worker pool. Never blocks the caller.
func (rt *Runtime) spawnWorker(job func()) {
	rt.jobQueue.push(job)
}

// spawnMain enqueues a job on the main queue. It runs only when the
// embedder calls DrainMain.
func (rt *Runtime) spawnMain(job func()) {
	rt.mainQueue.push(job)
}

// DrainMain runs every job enqueued on the main queue up to the moment of
// the call, in FIFO order, on the calling goroutine. Jobs enqueued by a
// continuation while DrainMain is running are deferred to the next call:
// the main queue is drained only by the embedder's own DrainMain.
func (rt *Runtime) DrainMain() {
	for _, job := range rt.mainQueue.drain() {
		job()
	}
}

// Close stops accepting new worker jobs once the current backlog finishes
// and waits for all in-flight worker jobs to complete, so no writer is ever
// interrupted mid-entry during shutdown.
func (rt *Runtime) Close() {
	rt.closeOnce.Do(func() {
		close(rt.closed)
		rt.jobQueue.broadcast()
	})
	rt.workerWG.Wait()
}

// taskQueue is an unbounded FIFO of jobs guarded by a mutex and condition
// variable, the same shape as the bounded admission channel in the reverse
// proxy reference but without a capacity limit: spawn_worker and spawn_main
// never reject.
type taskQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	tasks []func()
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *taskQueue) push(job func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, job)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until a job is available or closed fires, returning ok=false
// in the latter case once the backlog has drained.
func (q *taskQueue) pop(closed <-chan struct{}) (func(), bool) {
	q.mu.Lock()
	for len(q.tasks) == 0 {
		select {
		case <-closed:
			q.mu.Unlock()
			return nil, false
		default:
		}
		q.cond.Wait()
	}
	job := q.tasks[0]
	q.tasks = q.tasks[1:]
	q.mu.Unlock()
	return job, true
}

// drain atomically removes and returns every queued job.
func (q *taskQueue) drain() []func() {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	return tasks
}

// broadcast wakes every goroutine parked in pop once Close fires. sync.Cond
// has no native context/channel wait, so Close closes the shared channel
// first and then broadcasts; pop re-checks the channel on each wake.
func (q *taskQueue) broadcast() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// contextDone is a small helper so callers can select on a context alongside
// a Future's completion without importing context in future.go's hot path.
func contextDone(ctx context.Context) <-chan struct{} {
	if ctx == nil {
		return nil
	}
	return ctx.Done()
}
