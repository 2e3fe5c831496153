package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrDoubleAwait is the loud failure mode for consuming a Future twice:
// awaiting it a second time, or passing an already-consumed Future into a
// Then*/Catch* continuation. Futures are move-only: a plain one-shot value
// with an atomic consumed flag rather than a second owning reference.
var ErrDoubleAwait = errors.New("async: future consumed more than once")

type futureState int32

const (
	statePending futureState = iota
	stateResolved
	stateRejected
)

// Future is a one-shot container for a value that becomes available some
// time after construction, possibly on another goroutine. It has no
// cancellation: once spawned, the producing job always runs to completion,
// so a Store write begun by a worker job is never torn.
type Future[T any] struct {
	mu        sync.Mutex
	state     futureState
	value     T
	err       error
	done      chan struct{}
	callbacks []func()
	consumed  atomic.Bool
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a Future already in the resolved state.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.resolve(v, nil)
	return f
}

// Rejected returns a Future already in the rejected state.
func Rejected[T any](err error) *Future[T] {
	var zero T
	f := newFuture[T]()
	f.resolve(zero, err)
	return f
}

// SpawnWorker runs fn on the Runtime's worker pool and returns a Future that
// resolves with its result.
func SpawnWorker[T any](rt *Runtime, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	rt.spawnWorker(func() {
		v, err := fn()
		f.resolve(v, err)
	})
	return f
}

// SpawnMain runs fn on the Runtime's main queue (drained by DrainMain) and
// returns a Future that resolves with its result.
func SpawnMain[T any](rt *Runtime, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	rt.spawnMain(func() {
		v, err := fn()
		f.resolve(v, err)
	})
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	if f.state != statePending {
		f.mu.Unlock()
		return
	}
	f.value, f.err = v, err
	if err != nil {
		f.state = stateRejected
	} else {
		f.state = stateResolved
	}
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// onComplete registers cb to run once the Future reaches a terminal state,
// immediately if it already has. It does not mark the Future consumed —
// that is the caller's job (markConsumed), since a Future may be inspected
// internally (e.g. by Then*) without being the terminal "await" the embedder
// performs.
func (f *Future[T]) onComplete(cb func()) {
	f.mu.Lock()
	if f.state != statePending {
		f.mu.Unlock()
		cb()
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// markConsumed enforces the move-only contract: the first consumption of a
// Future succeeds, every subsequent one panics with ErrDoubleAwait.
func (f *Future[T]) markConsumed() {
	if !f.consumed.CompareAndSwap(false, true) {
		panic(ErrDoubleAwait)
	}
}

// Await blocks the calling goroutine until the Future reaches a terminal
// state, or ctx is done first. It consumes the Future: calling Await twice,
// or calling Await after the Future was passed to a Then*/Catch*
// continuation (or vice versa), panics with ErrDoubleAwait.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	f.markConsumed()
	select {
	case <-f.done:
		return f.value, f.err
	case <-contextDone(ctx):
		var zero T
		return zero, ctx.Err()
	}
}

// peek returns the terminal value/error without marking the Future consumed;
// used internally by the Then*/Catch* family, which perform their own
// single markConsumed call on the upstream Future.
func (f *Future[T]) peek() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// ThenWorker schedules g on the worker pool once f resolves successfully,
// returning a new Future for g's result. If f rejects, the returned Future
// rejects with the same error without running g.
func ThenWorker[T, U any](rt *Runtime, f *Future[T], g func(T) (U, error)) *Future[U] {
	f.markConsumed()
	out := newFuture[U]()
	f.onComplete(func() {
		v, err := f.peek()
		if err != nil {
			out.resolve(*new(U), err)
			return
		}
		rt.spawnWorker(func() {
			u, uerr := g(v)
			out.resolve(u, uerr)
		})
	})
	return out
}

// ThenWorkerFuture is the flattening variant of ThenWorker: g itself returns
// a Future, and the outer Future adopts its eventual result instead of
// resolving with a Future-of-a-Future.
func ThenWorkerFuture[T, U any](rt *Runtime, f *Future[T], g func(T) *Future[U]) *Future[U] {
	f.markConsumed()
	out := newFuture[U]()
	f.onComplete(func() {
		v, err := f.peek()
		if err != nil {
			out.resolve(*new(U), err)
			return
		}
		rt.spawnWorker(func() {
			inner := g(v)
			inner.onComplete(func() {
				u, uerr := inner.peek()
				out.resolve(u, uerr)
			})
		})
	})
	return out
}

// ThenMain schedules g on the main queue once f resolves successfully.
func ThenMain[T, U any](rt *Runtime, f *Future[T], g func(T) (U, error)) *Future[U] {
	f.markConsumed()
	out := newFuture[U]()
	f.onComplete(func() {
		v, err := f.peek()
		if err != nil {
			out.resolve(*new(U), err)
			return
		}
		rt.spawnMain(func() {
			u, uerr := g(v)
			out.resolve(u, uerr)
		})
	})
	return out
}

// ThenMainFuture is ThenMain's flattening variant, symmetric with
// ThenWorkerFuture.
func ThenMainFuture[T, U any](rt *Runtime, f *Future[T], g func(T) *Future[U]) *Future[U] {
	f.markConsumed()
	out := newFuture[U]()
	f.onComplete(func() {
		v, err := f.peek()
		if err != nil {
			out.resolve(*new(U), err)
			return
		}
		rt.spawnMain(func() {
			inner := g(v)
			inner.onComplete(func() {
				u, uerr := inner.peek()
				out.resolve(u, uerr)
			})
		})
	})
	return out
}

// CatchMain schedules h on the main queue once f rejects, letting it recover
// into a resolved value. If f resolves, the returned Future passes the value
// through unchanged without running h.
func CatchMain[T any](rt *Runtime, f *Future[T], h func(error) (T, error)) *Future[T] {
	f.markConsumed()
	out := newFuture[T]()
	f.onComplete(func() {
		v, err := f.peek()
		if err == nil {
			out.resolve(v, nil)
			return
		}
		rt.spawnMain(func() {
			rv, rerr := h(err)
			out.resolve(rv, rerr)
		})
	})
	return out
}
