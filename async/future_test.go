package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnWorkerResolves(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(2))
	defer rt.Close()

	f := SpawnWorker(rt, func() (int, error) { return 42, nil })
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSpawnWorkerRejects(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	boom := errors.New("boom")
	f := SpawnWorker(rt, func() (int, error) { return 0, boom })
	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestThenWorkerChainsOnSuccess(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(2))
	defer rt.Close()

	f := SpawnWorker(rt, func() (int, error) { return 2, nil })
	g := ThenWorker(rt, f, func(v int) (int, error) { return v * 21, nil })
	v, err := g.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestThenWorkerPassesThroughRejection(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	boom := errors.New("boom")
	f := SpawnWorker(rt, func() (int, error) { return 0, boom })
	ran := false
	g := ThenWorker(rt, f, func(v int) (int, error) {
		ran = true
		return v, nil
	})
	_, err := g.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran, "continuation must not run when upstream rejected")
}

func TestThenWorkerFutureFlattens(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(2))
	defer rt.Close()

	f := SpawnWorker(rt, func() (int, error) { return 1, nil })
	g := ThenWorkerFuture(rt, f, func(v int) *Future[string] {
		return SpawnWorker(rt, func() (string, error) { return "flattened", nil })
	})
	v, err := g.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "flattened", v)
}

func TestCatchMainRecoversRejection(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	boom := errors.New("boom")
	f := SpawnWorker(rt, func() (int, error) { return 0, boom })
	recovered := CatchMain(rt, f, func(err error) (int, error) {
		return -1, nil
	})

	// the continuation sits on the main queue until drained
	time.Sleep(10 * time.Millisecond)
	rt.DrainMain()

	v, err := recovered.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -1, v)
}

func TestCatchMainPassesThroughSuccess(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	f := SpawnWorker(rt, func() (int, error) { return 7, nil })
	passed := CatchMain(rt, f, func(err error) (int, error) {
		t.Fatal("handler must not run when upstream resolved")
		return 0, nil
	})
	v, err := passed.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestDoubleAwaitPanics(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	f := SpawnWorker(rt, func() (int, error) { return 1, nil })
	_, _ = f.Await(context.Background())

	assert.PanicsWithValue(t, ErrDoubleAwait, func() {
		_, _ = f.Await(context.Background())
	})
}

func TestConsumingFutureTwiceAcrossThenAndAwaitPanics(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	f := SpawnWorker(rt, func() (int, error) { return 1, nil })
	_ = ThenWorker(rt, f, func(v int) (int, error) { return v, nil })

	assert.PanicsWithValue(t, ErrDoubleAwait, func() {
		_, _ = f.Await(context.Background())
	})
}

func TestDrainMainRunsOnCallingGoroutine(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(1))
	defer rt.Close()

	var order []int
	f1 := SpawnMain(rt, func() (int, error) { order = append(order, 1); return 1, nil })
	f2 := SpawnMain(rt, func() (int, error) { order = append(order, 2); return 2, nil })

	rt.DrainMain()

	_, _ = f1.Await(context.Background())
	_, _ = f2.Await(context.Background())
	assert.Equal(t, []int{1, 2}, order)
}

func TestAwaitRespectsContextCancellation(t *testing.T) {
	rt := NewRuntime(WithWorkerThreads(0))
	defer rt.Close()

	// worker pool has at least one thread (NewRuntime floors to 1); the job
	// runs but blocks on block, so the future is still pending at cancel.
	block := make(chan struct{})
	f := SpawnWorker(rt, func() (int, error) {
		<-block
		return 0, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}
